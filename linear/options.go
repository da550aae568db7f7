package linear

import "github.com/YuminosukeSato/clfeval/pkg/errors"

// DefaultThreshold is the positive-class probability cut-off.
const DefaultThreshold = 0.5

// Option is a function that configures LogisticClassifier
type Option func(*LogisticClassifier)

// WithThreshold sets the probability at or above which a row is labelled 1
func WithThreshold(threshold float64) Option {
	return func(lc *LogisticClassifier) {
		lc.Threshold = threshold
	}
}

// WithFeatureNames records the column names the weights were trained on
func WithFeatureNames(names ...string) Option {
	return func(lc *LogisticClassifier) {
		lc.featureNames = append([]string(nil), names...)
	}
}

func validateThreshold(t float64) error {
	if !(t > 0 && t < 1) {
		return errors.NewValidationError("threshold", "must be in (0, 1)", t)
	}
	return nil
}
