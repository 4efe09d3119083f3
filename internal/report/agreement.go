package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/mmynk/assetsplitter/internal/calculator"
	"github.com/mmynk/assetsplitter/internal/models"
)

const agreementTitle = "Community Property Division Agreement"

const (
	voluntaryText = "Both parties acknowledge that this Agreement is entered into voluntarily and without coercion or undue " +
		"influence. Each party has had the opportunity to seek independent legal advice prior to signing this Agreement."
	governingLawText = "This Agreement shall be governed by and construed in accordance with the laws of the State of [State Name]."
	entireText       = "This Agreement constitutes the entire understanding between the parties regarding the division of their " +
		"community property and supersedes all prior agreements, whether written or oral."
)

// agreementDoc wraps the PDF with the paragraph styles of the agreement.
type agreementDoc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (d agreementDoc) title(s string) {
	d.pdf.SetFont("Times", "", 20)
	d.pdf.CellFormat(0, 24, s, "", 1, "C", false, 0, "")
	d.pdf.Ln(20)
}

func (d agreementDoc) heading(s string) {
	d.pdf.SetFont("Times", "", 16)
	d.pdf.CellFormat(0, 20, s, "", 1, "L", false, 0, "")
	d.pdf.Ln(4)
}

func (d agreementDoc) para(lines ...string) {
	d.pdf.SetFont("Times", "", 12)
	for _, l := range lines {
		d.pdf.MultiCell(0, 15, d.tr(l), "", "L", false)
	}
	d.pdf.Ln(10)
}

func (d agreementDoc) bold(s string) {
	d.pdf.SetFont("Times", "B", 12)
	d.pdf.MultiCell(0, 15, d.tr(s), "", "L", false)
}

func (d agreementDoc) line(s string) {
	d.pdf.SetFont("Times", "", 12)
	d.pdf.MultiCell(0, 15, d.tr(s), "", "L", false)
}

// AgreementPDF writes a Letter-size property division agreement with an
// asset schedule, each party's itemized allocation and signature blocks.
func AgreementPDF(w io.Writer, state models.StoredState, opts ...Option) error {
	o := buildOptions(opts)

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(o.compress)
	pdf.SetTitle(agreementTitle, true)
	pdf.SetMargins(30, 30, 30)
	pdf.SetAutoPageBreak(true, 30)
	d := agreementDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	nameA := state.DisplayName(models.PartyA)
	nameB := state.DisplayName(models.PartyB)

	pdf.AddPage()
	d.title(agreementTitle)
	d.para(fmt.Sprintf(`This Community Property Division Agreement (the "Agreement") is made and entered into on this %d day of %s, %d, by and between:`,
		o.now.Day(), o.now.Month(), o.now.Year()))
	d.para(
		nameA+`, residing at [Party A Address] ("Party A"), and`,
		nameB+`, residing at [Party B Address] ("Party B").`,
	)
	d.para(
		"WHEREAS, Party A and Party B are married and are seeking an uncontested divorce;",
		"WHEREAS, Party A and Party B have agreed to divide their community property as set forth in this Agreement;",
		"NOW, THEREFORE, in consideration of the mutual promises and agreements contained herein, the parties agree as follows:",
	)

	d.heading("1. Identification of Community Property")
	d.para("The parties agree that the following assets constitute their community property and are subject to division under this Agreement:")
	colW, _ := pdf.GetPageSize()
	colW = (colW - 60) / 2
	pdf.SetFont("Times", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(colW, 24, "Asset Name", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colW, 24, "Value", "1", 1, "L", true, 0, "")
	pdf.SetFont("Times", "", 12)
	for _, a := range state.Assets {
		pdf.CellFormat(colW, 24, d.tr(a.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW, 24, FormatUSD(a.Value), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(20)

	totals := calculator.CalculateTotals(state.Assets)
	d.heading("2. Division of Community Property")
	d.para("The parties agree to divide the community property as follows:")
	d.allocation(nameA, calculator.Itemize(models.PartyA, state.Assets), totals.PartyA)
	d.allocation(nameB, calculator.Itemize(models.PartyB, state.Assets), totals.PartyB)

	d.heading("3. Acknowledgment of Voluntary Agreement")
	d.para(voluntaryText)
	d.heading("4. Governing Law")
	d.para(governingLawText)
	d.heading("5. Entire Agreement")
	d.para(entireText)

	d.heading("6. Signatures")
	d.para("IN WITNESS WHEREOF, the parties have executed this Agreement as of the date first above written.")
	d.signature(nameA)
	d.signature(nameB)

	return output(pdf, w)
}

func (d agreementDoc) allocation(name string, lines []calculator.Line, total float64) {
	d.bold(name + " shall receive the following assets:")
	for _, l := range lines {
		pct := formatPercent(l.Percentage)
		if l.WholeTake {
			pct = "100%"
		}
		d.line(fmt.Sprintf("• %s: %s (%s)", l.Name, pct, FormatUSD(l.Amount)))
	}
	d.bold(fmt.Sprintf("Total value allocated to %s: %s", name, FormatUSD(total)))
	d.pdf.Ln(10)
}

func (d agreementDoc) signature(name string) {
	d.pdf.Ln(20)
	d.bold(name + ":")
	d.line("Signature: _______________________________")
	d.line("Printed Name: " + name)
	d.line("Date: _______________________________")
}
