package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses pool notation into a FormulaSpec.
// Supported forms: "4d6", "d6", "4d6x6", "4d6cs>3", "4d6cs>=4", "0d6x6cs>3".
// "cs>N" counts dice strictly greater than N; "cs>=N" counts dice of at least N.
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns a valid FormulaSpec or a descriptive error.
func Parse(expr string) (FormulaSpec, error) {
	if strings.TrimSpace(expr) == "" {
		return FormulaSpec{}, fmt.Errorf("dice: empty expression")
	}
	raw := expr
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return FormulaSpec{}, fmt.Errorf("dice: missing 'd' in expression %q", raw)
	}

	// Pool size defaults to 1 when omitted; zero is a legal (empty) pool.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil {
			return FormulaSpec{}, fmt.Errorf("dice: invalid pool size in %q: %w", raw, err)
		}
		if count < 0 {
			return FormulaSpec{}, fmt.Errorf("dice: invalid pool size in %q: must be >= 0", raw)
		}
	}
	rest := s[dIdx+1:]

	threshold := 0
	if csIdx := strings.Index(rest, "cs"); csIdx >= 0 {
		csPart := rest[csIdx+2:]
		rest = rest[:csIdx]
		var err error
		switch {
		case strings.HasPrefix(csPart, ">="):
			threshold, err = strconv.Atoi(csPart[2:])
		case strings.HasPrefix(csPart, ">"):
			threshold, err = strconv.Atoi(csPart[1:])
			threshold++
		default:
			return FormulaSpec{}, fmt.Errorf("dice: success suffix in %q must be cs>N or cs>=N", raw)
		}
		if err != nil {
			return FormulaSpec{}, fmt.Errorf("dice: invalid success threshold in %q: %w", raw, err)
		}
		if threshold < 1 {
			return FormulaSpec{}, fmt.Errorf("dice: success threshold in %q must count at least 1", raw)
		}
	}

	explode := 0
	if xIdx := strings.Index(rest, "x"); xIdx >= 0 {
		xPart := rest[xIdx+1:]
		rest = rest[:xIdx]
		var err error
		explode, err = strconv.Atoi(xPart)
		if err != nil {
			return FormulaSpec{}, fmt.Errorf("dice: invalid explode value in %q: %w", raw, err)
		}
	}

	sides, err := strconv.Atoi(rest)
	if err != nil {
		return FormulaSpec{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}

	spec := FormulaSpec{
		PoolSize:         count,
		Sides:            sides,
		ExplodeOn:        explode,
		SuccessThreshold: threshold,
	}
	if err := spec.Validate(); err != nil {
		return FormulaSpec{}, err
	}
	return spec, nil
}
