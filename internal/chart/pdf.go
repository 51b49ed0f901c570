package chart

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	bold "codeberg.org/go-fonts/liberation/liberationsansbold"
	italic "codeberg.org/go-fonts/liberation/liberationsansitalic"
	regular "codeberg.org/go-fonts/liberation/liberationsansregular"
	"github.com/jung-kurt/gofpdf"

	"salesreport/internal/report"
)

const (
	figureImage = "figure"
	// Embedded UTF-8 font; the core PDF fonts only cover cp1252.
	reportFont = "LiberationSans"
)

func registerFonts(pdf *gofpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(reportFont, "", regular.TTF)
	pdf.AddUTF8FontFromBytes(reportFont, "B", bold.TTF)
	pdf.AddUTF8FontFromBytes(reportFont, "I", italic.TTF)
}

// writePDFReport lays out a landscape A4 report: title, totals, the png
// figure scaled to the page width, then the two tables on a second page.
func writePDFReport(w io.Writer, in Input, opts Options) error {
	var img bytes.Buffer
	if err := writeFigure(&img, FormatPNG, in, opts); err != nil {
		return err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Sales report", true)
	registerFonts(pdf)
	pdf.AddPage()

	pdf.SetFont(reportFont, "B", 16)
	pdf.Cell(0, 10, "Sales report")
	pdf.Ln(10)

	pdf.SetFont(reportFont, "I", 8)
	if in.Source != "" {
		pdf.Cell(0, 5, "Source: "+in.Source)
		pdf.Ln(7)
	}

	if m := in.Metrics; m != nil {
		pdf.SetFont(reportFont, "", 10)
		lines := []string{
			fmt.Sprintf("Total units sold: %d", m.TotalQuantity),
			fmt.Sprintf("Total revenue: %s", m.TotalRevenue.StringFixed(2)),
			fmt.Sprintf("Average daily revenue: %s", report.FormatAverage(m.AverageDailyRevenue)),
		}
		for _, line := range lines {
			pdf.Cell(0, 5, line)
			pdf.Ln(5)
		}
		pdf.Ln(3)
	}

	pageWidth, _ := pdf.GetPageSize()
	leftMargin, _, rightMargin, _ := pdf.GetMargins()
	usableWidth := pageWidth - leftMargin - rightMargin
	imgHeight := usableWidth * opts.Height / opts.Width

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(figureImage, imgOpts, &img)
	pdf.ImageOptions(figureImage, leftMargin, pdf.GetY(), usableWidth, imgHeight, true, imgOpts, 0, "")

	pdf.AddPage()
	dailyRows := make([][]string, len(in.Daily))
	for i, d := range in.Daily {
		dailyRows[i] = []string{d.Day(), d.Revenue.StringFixed(2)}
	}
	drawTable(pdf, revenueTitle, []string{"Date", "Revenue"}, dailyRows)

	pdf.Ln(6)
	productRows := make([][]string, len(in.Products))
	for i, p := range in.Products {
		productRows[i] = []string{strconv.FormatInt(p.ProductID, 10), strconv.FormatInt(p.Quantity, 10)}
	}
	drawTable(pdf, productsTitle, []string{"Product ID", "Units sold"}, productRows)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func drawTable(pdf *gofpdf.Fpdf, title string, headers []string, rows [][]string) {
	const colWidth, rowHeight = 45.0, 6.0
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottomMargin := pdf.GetMargins()

	drawHeader := func() {
		pdf.SetFont(reportFont, "B", 10)
		pdf.SetFillColor(68, 1, 84)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range headers {
			pdf.CellFormat(colWidth, rowHeight+1, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(reportFont, "", 10)
	}

	pdf.SetFont(reportFont, "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	drawHeader()

	for _, row := range rows {
		if pdf.GetY()+rowHeight > pageHeight-bottomMargin {
			pdf.AddPage()
			drawHeader()
		}
		for i, v := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(colWidth, rowHeight, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}
