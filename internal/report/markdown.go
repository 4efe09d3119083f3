package report

import (
	"fmt"
	"strings"

	"github.com/mmynk/assetsplitter/internal/calculator"
	"github.com/mmynk/assetsplitter/internal/models"
)

// Markdown renders the summary as a Markdown document.
func Markdown(state models.StoredState) string {
	nameA := state.DisplayName(models.PartyA)
	nameB := state.DisplayName(models.PartyB)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", summaryTitle)
	fmt.Fprintf(&b, "**Party A:** %s  \n**Party B:** %s\n\n", escape(nameA), escape(nameB))

	if len(state.Assets) == 0 {
		b.WriteString("_No assets yet._\n\n")
	} else {
		b.WriteString("| ID | Asset Name | Value | Allocation |\n|---|---|---:|---|\n")
		for _, a := range state.Assets {
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n",
				a.ID, escape(a.Name), FormatUSD(a.Value), escape(AllocationLabel(state, a)))
		}
		b.WriteString("\n")
	}

	totals := calculator.CalculateTotals(state.Assets)
	b.WriteString("## Total Allocations\n\n")
	fmt.Fprintf(&b, "- %s: %s\n", escape(nameA), FormatUSD(totals.PartyA))
	fmt.Fprintf(&b, "- %s: %s\n", escape(nameB), FormatUSD(totals.PartyB))
	return b.String()
}

var mdEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`")

func escape(s string) string { return mdEscaper.Replace(s) }
