package models

// AllocationType discriminates how an asset's percentages are interpreted.
type AllocationType string

const (
	// AllocationSplit divides the asset by PartyAPercentage/PartyBPercentage.
	AllocationSplit AllocationType = "split"
	// AllocationPartyA gives the whole asset to party A.
	AllocationPartyA AllocationType = "partyA"
	// AllocationPartyB gives the whole asset to party B.
	AllocationPartyB AllocationType = "partyB"
)

// Valid reports whether t is one of the known allocation types.
func (t AllocationType) Valid() bool {
	switch t {
	case AllocationSplit, AllocationPartyA, AllocationPartyB:
		return true
	}
	return false
}

// Percentages returns the (A, B) pair an allocation type resets to.
func (t AllocationType) Percentages() (float64, float64) {
	switch t {
	case AllocationPartyA:
		return 100, 0
	case AllocationPartyB:
		return 0, 100
	default:
		return 50, 50
	}
}

// Asset represents one shared item of value.
type Asset struct {
	// ID is the unique identifier for the asset (UUID format).
	// It never changes after creation.
	ID string `json:"id"`

	// Name is a free-text label. Names need not be unique.
	Name string `json:"name"`

	// Value is the monetary amount. Zero and negative values are accepted.
	Value float64 `json:"value"`

	// AllocationType controls how the percentages below are interpreted.
	AllocationType AllocationType `json:"allocationType"`

	// PartyAPercentage and PartyBPercentage are the shares of Value.
	// They are expected to sum to 100 but direct edits are not clamped.
	PartyAPercentage float64 `json:"partyAPercentage"`
	PartyBPercentage float64 `json:"partyBPercentage"`
}

// Share returns the percentage of the asset owned by party.
func (a Asset) Share(party Party) float64 {
	if party == PartyB {
		return a.PartyBPercentage
	}
	return a.PartyAPercentage
}
