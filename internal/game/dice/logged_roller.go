package dice

import (
	"context"

	"go.uber.org/zap"
)

// Evaluator realizes a FormulaSpec into dice.
type Evaluator interface {
	Evaluate(ctx context.Context, spec FormulaSpec, label string) (PoolResult, error)
}

// Roller wraps a Source and logger to provide logged pool evaluation.
// All rolls are logged at debug level with label, formula, dice and successes.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Evaluate rolls spec and logs the result at debug level.
//
// Postcondition: result logged; returns PoolResult or error.
func (r *Roller) Evaluate(_ context.Context, spec FormulaSpec, label string) (PoolResult, error) {
	result, err := Evaluate(spec, r.src)
	if err != nil {
		return PoolResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("label", label),
		zap.String("formula", spec.String()),
		zap.Ints("dice", result.Dice),
		zap.Int("successes", result.Successes),
		zap.Int("total", result.Total()),
	)
	return result, nil
}
