package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/mmynk/assetsplitter/internal/calculator"
	"github.com/mmynk/assetsplitter/internal/models"
)

const summaryTitle = "Asset Division Summary"

// SummaryPDF writes a one-table overview of the division: parties, every
// asset with its value and allocation, and both totals.
func SummaryPDF(w io.Writer, state models.StoredState, opts ...Option) error {
	o := buildOptions(opts)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(o.compress)
	pdf.SetTitle(summaryTitle, true)
	pdf.SetMargins(20, 20, 20)
	pdf.AliasNbPages("{nb}")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	generated := o.now.Format("1/2/2006")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Generated on %s - Page %d of {nb}", generated, pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 20)
	pdf.CellFormat(0, 10, summaryTitle, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	nameA := state.DisplayName(models.PartyA)
	nameB := state.DisplayName(models.PartyB)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 10, tr("Party A: "+nameA), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 10, tr("Party B: "+nameB), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{80, 45, 45}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(66, 66, 66)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range []string{"Asset Name", "Value", "Allocation"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, a := range state.Assets {
		row := []string{a.Name, FormatUSD(a.Value), AllocationLabel(state, a)}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 8, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	totals := calculator.CalculateTotals(state.Assets)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 10, "Total Allocations:", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 10, tr(nameA+": "+FormatUSD(totals.PartyA)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 10, tr(nameB+": "+FormatUSD(totals.PartyB)), "", 1, "L", false, 0, "")

	return output(pdf, w)
}
