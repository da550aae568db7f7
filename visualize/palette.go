package visualize

import (
	"image/color"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/YuminosukeSato/clfeval/pkg/errors"
)

// bluesClasses is the largest ColorBrewer "Blues" scheme.
const bluesClasses = 9

// bluesControls returns the ColorBrewer Blues scheme, light to dark.
func bluesControls() ([]color.Color, error) {
	p, err := brewer.GetPalette(brewer.TypeSequential, "Blues", bluesClasses)
	if err != nil {
		return nil, errors.Wrap(err, "brewer Blues palette")
	}
	return p.Colors(), nil
}

// Blues returns a continuous colour map over [min, max] running from the
// lightest to the darkest ColorBrewer Blues colour.
func Blues(min, max float64) (palette.ColorMap, error) {
	if !(max > min) {
		return nil, errors.NewValueError("Blues", "max must be greater than min")
	}
	controls, err := bluesControls()
	if err != nil {
		return nil, err
	}

	// moreland wants luminance increasing, i.e. dark to light
	darkToLight := make([]color.Color, len(controls))
	for i, c := range controls {
		darkToLight[len(controls)-1-i] = c
	}
	cm, err := moreland.NewLuminance(darkToLight)
	if err != nil {
		return nil, errors.Wrap(err, "blues colour map")
	}
	cm.SetMin(min)
	cm.SetMax(max)
	return palette.Reverse(cm), nil
}
