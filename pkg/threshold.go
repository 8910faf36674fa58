package pkg

import (
	"fmt"
	"math"
)

// thresholdCoefficients is the affine fit of the BGF flipping threshold for one block length:
// T(|s|) = max(floor, floor(slope*|s| + intercept)).
type thresholdCoefficients struct {
	slope     float64
	intercept float64
	floor     int
}

var thresholds = map[int]thresholdCoefficients{
	12323: {slope: 0.0069722, intercept: 13.530, floor: 36},
	24659: {slope: 0.005265, intercept: 15.2588, floor: 52},
	40973: {slope: 0.00402312, intercept: 17.8785, floor: 69},
}

func thresholdFor(r int) (thresholdCoefficients, error) {
	c, ok := thresholds[r]
	if !ok {
		return thresholdCoefficients{}, fmt.Errorf("%w: no decoder threshold for r=%d", ErrUnsupportedParameter, r)
	}
	return c, nil
}

func (c thresholdCoefficients) at(syndromeWeight int) int {
	t := int(math.Floor(c.slope*float64(syndromeWeight) + c.intercept))
	if t < c.floor {
		return c.floor
	}
	return t
}

// Threshold returns the BGF flipping threshold for a syndrome of the given weight in the ring of degree r.
func Threshold(syndromeWeight, r int) (int, error) {
	c, err := thresholdFor(r)
	if err != nil {
		return 0, err
	}
	return c.at(syndromeWeight), nil
}
