package calculator

import "github.com/mmynk/assetsplitter/internal/models"

// Totals holds each party's aggregate entitlement.
type Totals struct {
	PartyA float64
	PartyB float64
}

// Line represents one asset's share for one party.
type Line struct {
	AssetID    string
	Name       string
	Percentage float64 // Share of the asset, as entered
	Amount     float64 // Value × Percentage / 100
	WholeTake  bool    // Asset is allocated entirely to this party
}

// TotalFor computes a party's entitlement across all assets.
// Based on the formula: total = Σ value × percentage / 100
//
// Values and percentages are used exactly as stored. Negative values and
// percentages that do not sum to 100 are not errors; they simply flow
// through the arithmetic.
func TotalFor(party models.Party, assets []models.Asset) float64 {
	total := 0.0
	for _, a := range assets {
		total += a.Value * a.Share(party) / 100
	}
	return total
}

// CalculateTotals computes both parties' totals in one pass.
func CalculateTotals(assets []models.Asset) Totals {
	return Totals{
		PartyA: TotalFor(models.PartyA, assets),
		PartyB: TotalFor(models.PartyB, assets),
	}
}

// Sum returns the combined value of all assets.
func Sum(assets []models.Asset) float64 {
	total := 0.0
	for _, a := range assets {
		total += a.Value
	}
	return total
}

// Itemize lists the assets a party receives, in collection order.
// An asset is included when it is allocated wholly to the party or the
// party's percentage is positive.
func Itemize(party models.Party, assets []models.Asset) []Line {
	whole := models.AllocationPartyA
	if party == models.PartyB {
		whole = models.AllocationPartyB
	}

	var lines []Line
	for _, a := range assets {
		share := a.Share(party)
		if a.AllocationType != whole && share <= 0 {
			continue
		}
		lines = append(lines, Line{
			AssetID:    a.ID,
			Name:       a.Name,
			Percentage: share,
			Amount:     a.Value * share / 100,
			WholeTake:  a.AllocationType == whole,
		})
	}
	return lines
}
