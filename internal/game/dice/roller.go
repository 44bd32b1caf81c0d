package dice

// MaxExplosions bounds the number of extra dice a single pool may add.
const MaxExplosions = 100

// Evaluate rolls spec using src.
//
// Precondition: spec.Validate() == nil; src must be non-nil.
// Postcondition: len(result.Dice) >= spec.PoolSize; every die showing
// ExplodeOn or more (when exploding) is followed by one more die, up to
// MaxExplosions extra dice; result.Successes counts dice >= SuccessThreshold.
func Evaluate(spec FormulaSpec, src Source) (PoolResult, error) {
	if err := spec.Validate(); err != nil {
		return PoolResult{}, err
	}

	rolled := make([]int, 0, spec.PoolSize)
	pending := spec.PoolSize
	extra := 0
	for pending > 0 {
		pending--
		face := src.Intn(spec.Sides) + 1
		rolled = append(rolled, face)
		if spec.Exploding() && face >= spec.ExplodeOn && extra < MaxExplosions {
			extra++
			pending++
		}
	}

	successes := 0
	if spec.Counting() {
		for _, d := range rolled {
			if d >= spec.SuccessThreshold {
				successes++
			}
		}
	}

	return PoolResult{
		Spec:      spec,
		Dice:      rolled,
		Successes: successes,
	}, nil
}
