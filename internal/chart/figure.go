package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"salesreport/internal/models"
)

var lineColor = color.RGBA{B: 255, A: 255}

// writeFigure draws the revenue line panel and the product bar panel side
// by side and encodes the result as png or svg.
func writeFigure(w io.Writer, format Format, in Input, opts Options) error {
	left, err := revenuePanel(in.Daily)
	if err != nil {
		return fmt.Errorf("revenue panel: %w", err)
	}
	right, err := productsPanel(in.Products)
	if err != nil {
		return fmt.Errorf("products panel: %w", err)
	}

	width := vg.Length(opts.Width) * vg.Inch
	height := vg.Length(opts.Height) * vg.Inch

	canvas, err := draw.NewFormattedCanvas(width, height, string(format))
	if err != nil {
		return fmt.Errorf("create %s canvas: %w", format, err)
	}

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      2,
		PadX:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 3,
		PadBottom: vg.Millimeter * 3,
		PadLeft:   vg.Millimeter * 3,
		PadRight:  vg.Millimeter * 3,
	}
	plots := [][]*plot.Plot{{left, right}}
	canvases := plot.Align(plots, tiles, draw.New(canvas))
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])

	if _, err := canvas.WriteTo(w); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

func revenuePanel(daily []models.DailyRevenue) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = revenueTitle
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Revenue"
	p.Add(plotter.NewGrid())

	if len(daily) == 0 {
		return p, nil
	}

	xys := make(plotter.XYs, len(daily))
	labels := make([]string, len(daily))
	for i, d := range daily {
		xys[i].X = float64(i)
		xys[i].Y = d.Revenue.InexactFloat64()
		labels[i] = d.Day()
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.Color = lineColor
	points.Shape = draw.CircleGlyph{}
	points.Color = lineColor
	p.Add(line, points)

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return p, nil
}

// productsPanel draws one bar per product, each in its own palette color.
// The bars are categorical, so no legend is added.
func productsPanel(products []models.ProductQuantity) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = productsTitle
	p.X.Label.Text = "Product ID"
	p.Y.Label.Text = "Units sold"

	if len(products) == 0 {
		return p, nil
	}

	colors := viridis(len(products))
	labels := make([]string, len(products))
	for i, prod := range products {
		bar, err := plotter.NewBarChart(plotter.Values{float64(prod.Quantity)}, vg.Points(24))
		if err != nil {
			return nil, err
		}
		bar.XMin = float64(i)
		bar.Color = colors[i]
		bar.LineStyle.Width = 0
		p.Add(bar)

		labels[i] = strconv.FormatInt(prod.ProductID, 10)
	}
	p.NominalX(labels...)

	return p, nil
}
