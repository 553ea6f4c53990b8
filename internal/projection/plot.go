package projection

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Plotter renders 2-D points coloured by class to an image file.
type Plotter interface {
	Plot(points *mat.Dense, labels []int, names map[int]string, path string) error
}

// ScatterPlotter writes PNG scatter plots with one series per class.
type ScatterPlotter struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

// NewScatterPlotter returns a plotter producing square images of the given
// size in inches.
func NewScatterPlotter(title string, inches float64) *ScatterPlotter {
	if inches <= 0 {
		inches = 6
	}
	size := vg.Length(inches) * vg.Inch
	return &ScatterPlotter{Title: title, Width: size, Height: size}
}

func (s *ScatterPlotter) Plot(points *mat.Dense, labels []int, names map[int]string, path string) error {
	if points == nil || points.IsEmpty() || len(labels) == 0 {
		return ErrEmptyInput
	}
	n, cols := points.Dims()
	if n != len(labels) || cols < 2 {
		return fmt.Errorf("%w: %dx%d points for %d labels", ErrProjection, n, cols, len(labels))
	}

	groups := make(map[int]plotter.XYs)
	for i, y := range labels {
		groups[y] = append(groups[y], plotter.XY{X: points.At(i, 0), Y: points.At(i, 1)})
	}

	classes := make([]int, 0, len(groups))
	for c := range groups {
		classes = append(classes, c)
	}
	slices.Sort(classes)

	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = "component 1"
	p.Y.Label.Text = "component 2"

	for i, c := range classes {
		sc, err := plotter.NewScatter(groups[c])
		if err != nil {
			return fmt.Errorf("scatter for class %d: %w", c, err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)

		name, ok := names[c]
		if !ok {
			name = strconv.Itoa(c)
		}
		p.Legend.Add(name, sc)
	}

	canvas := vgimg.New(s.Width, s.Height)
	p.Draw(draw.New(canvas))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(f); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return f.Close()
}
