// Package visualize renders evaluation figures with gonum/plot.
package visualize

import (
	"image/color"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/YuminosukeSato/clfeval/metrics"
	"github.com/YuminosukeSato/clfeval/pkg/errors"
)

// Options controls the confusion-matrix figure.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	// TickLabels names the classes in confusion-matrix order, on both axes.
	// Empty means the numeric labels are used.
	TickLabels []string

	// HideColorBar drops the colour scale drawn to the right of the cells.
	HideColorBar bool

	Width  vg.Length
	Height vg.Length
	DPI    int
}

// paletteColors is the number of steps used to fill the heatmap cells.
const paletteColors = 256

// DefaultOptions returns a 6in x 4in figure at 300 DPI.
func DefaultOptions() Options {
	return Options{
		Title:  "Confusion Matrix",
		XLabel: "Predicted",
		YLabel: "Actual",
		Width:  6 * vg.Inch,
		Height: 4 * vg.Inch,
		DPI:    300,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.DPI <= 0 {
		o.DPI = def.DPI
	}
	return o
}

// RenderConfusionMatrix draws cm as an annotated heatmap with a colour bar
// and writes it to path as a PNG, replacing any existing file.
func RenderConfusionMatrix(cm *metrics.ConfusionMatrix, opts Options, path string) error {
	if cm == nil || len(cm.Labels) == 0 {
		return errors.NewValueError("RenderConfusionMatrix", "empty confusion matrix")
	}
	opts = opts.withDefaults()
	if len(opts.TickLabels) != 0 && len(opts.TickLabels) != len(cm.Labels) {
		return errors.NewDimensionError("RenderConfusionMatrix", len(cm.Labels), len(opts.TickLabels), 1)
	}

	return errors.SafeExecute("RenderConfusionMatrix", func() error {
		heat, cmap, err := confusionPlot(cm, opts)
		if err != nil {
			return err
		}
		var bar *plot.Plot
		if !opts.HideColorBar {
			bar = colorBarPlot(cmap)
		}

		rc := openRenderContext(opts.Width, opts.Height, opts.DPI)
		defer rc.Close()

		rc.draw(heat, bar)
		return rc.savePNG(path)
	})
}

// confusionPlot builds the heatmap plot without drawing it, and returns the
// colour map its cells were filled from.
func confusionPlot(cm *metrics.ConfusionMatrix, opts Options) (*plot.Plot, palette.ColorMap, error) {
	grid := newConfusionGrid(cm)

	max := float64(cm.Max())
	if max == 0 {
		max = 1
	}
	cmap, err := Blues(0, max)
	if err != nil {
		return nil, nil, err
	}

	hm := plotter.NewHeatMap(grid, cmap.Palette(paletteColors))
	hm.Min = 0
	hm.Max = max

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Add(hm)

	labels, err := annotations(grid, max)
	if err != nil {
		return nil, nil, err
	}
	p.Add(labels)

	names := opts.TickLabels
	if len(names) == 0 {
		names = make([]string, len(cm.Labels))
		for i, l := range cm.Labels {
			names[i] = strconv.Itoa(l)
		}
	}
	k := len(names)
	xTicks := make([]plot.Tick, k)
	yTicks := make([]plot.Tick, k)
	for i, name := range names {
		xTicks[i] = plot.Tick{Value: float64(i), Label: name}
		// row 0 is drawn at the top
		yTicks[i] = plot.Tick{Value: float64(k - 1 - i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)

	p.X.Min, p.X.Max = -0.5, float64(k)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(k)-0.5
	p.X.Padding = 0
	p.Y.Padding = 0

	return p, cmap, nil
}

// colorBarPlot is the vertical colour scale for cmap.
func colorBarPlot(cmap palette.ColorMap) *plot.Plot {
	p := plot.New()
	p.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true, Colors: paletteColors})
	p.HideX()
	p.X.Padding = 0
	p.Y.Padding = 0
	return p
}

// annotations writes the integer count at the centre of every cell, in white
// on the darker half of the colour scale and black elsewhere.
func annotations(grid *confusionGrid, max float64) (*plotter.Labels, error) {
	cols, rows := grid.Dims()

	xys := make(plotter.XYs, 0, cols*rows)
	strs := make([]string, 0, cols*rows)
	dark := make([]bool, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			z := grid.Z(c, r)
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			strs = append(strs, strconv.Itoa(int(z)))
			dark = append(dark, z/max > 0.5)
		}
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: strs})
	if err != nil {
		return nil, errors.Wrap(err, "heatmap annotations")
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
		labels.TextStyle[i].Font.Size = vg.Points(12)
		if dark[i] {
			labels.TextStyle[i].Color = color.White
		} else {
			labels.TextStyle[i].Color = color.Black
		}
	}
	return labels, nil
}

// confusionGrid adapts a confusion matrix to plotter.GridXYZ.
// Grid row r is confusion-matrix row k-1-r so that the first true class
// appears at the top of the figure.
type confusionGrid struct {
	counts *mat.Dense
}

func newConfusionGrid(cm *metrics.ConfusionMatrix) *confusionGrid {
	return &confusionGrid{counts: cm.Dense()}
}

func (g *confusionGrid) Dims() (c, r int) {
	k, _ := g.counts.Dims()
	return k, k
}

func (g *confusionGrid) Z(c, r int) float64 {
	k, _ := g.counts.Dims()
	return g.counts.At(k-1-r, c)
}

func (g *confusionGrid) X(c int) float64 { return float64(c) }
func (g *confusionGrid) Y(r int) float64 { return float64(r) }

// renderContext owns the raster canvas for a single render-and-save.
// It is created per call and released with Close.
type renderContext struct {
	canvas *vgimg.Canvas
}

func newRenderContext(w, h vg.Length, dpi int) *renderContext {
	return &renderContext{
		canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi)),
	}
}

// openRenderContext is replaced in tests to observe the context lifecycle.
var openRenderContext = newRenderContext

// draw fills the canvas with the heatmap and, when bar is non-nil, a colour
// bar in a strip along the right edge.
func (rc *renderContext) draw(heat, bar *plot.Plot) {
	dc := draw.New(rc.canvas)
	if bar == nil {
		heat.Draw(dc)
		return
	}

	w := dc.Max.X - dc.Min.X
	h := dc.Max.Y - dc.Min.Y
	barWidth := w * 0.15
	pad := h * 0.1

	heat.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
	bar.Draw(draw.Crop(dc, w-barWidth, 0, pad, -pad))
}

func (rc *renderContext) savePNG(path string) (err error) {
	if rc.canvas == nil {
		return errors.New("render context already closed")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()

	if _, err := (vgimg.PngCanvas{Canvas: rc.canvas}).WriteTo(f); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// Close drops the canvas. It is safe to call more than once.
func (rc *renderContext) Close() {
	rc.canvas = nil
}
