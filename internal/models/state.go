package models

import "fmt"

// Party identifies one of the two participants.
type Party int

const (
	PartyA Party = iota
	PartyB
)

// String returns the fallback label for the party.
func (p Party) String() string {
	switch p {
	case PartyA:
		return "Party A"
	case PartyB:
		return "Party B"
	default:
		return fmt.Sprintf("Party(%d)", int(p))
	}
}

// ParseParty accepts "a", "b", "A", "B", "partyA" and "partyB".
func ParseParty(s string) (Party, error) {
	switch s {
	case "a", "A", "partyA":
		return PartyA, nil
	case "b", "B", "partyB":
		return PartyB, nil
	}
	return 0, fmt.Errorf("unknown party %q", s)
}

// StoredState is the complete persisted and exchanged document.
type StoredState struct {
	PartyAName string  `json:"partyAName"`
	PartyBName string  `json:"partyBName"`
	Assets     []Asset `json:"assets"`
}

// EmptyState returns the state used when nothing has been saved yet.
// Assets is an empty, non-nil slice so it encodes as [] rather than null.
func EmptyState() StoredState {
	return StoredState{Assets: []Asset{}}
}

// Name returns the raw name entered for party.
func (s StoredState) Name(party Party) string {
	if party == PartyB {
		return s.PartyBName
	}
	return s.PartyAName
}

// DisplayName returns the party's name, or its fallback label when empty.
func (s StoredState) DisplayName(party Party) string {
	if name := s.Name(party); name != "" {
		return name
	}
	return party.String()
}

// Clone returns a deep copy of the state.
func (s StoredState) Clone() StoredState {
	out := s
	out.Assets = make([]Asset, len(s.Assets))
	copy(out.Assets, s.Assets)
	return out
}
