package codec

import (
	"fmt"

	"github.com/mmynk/assetsplitter/internal/models"
)

// document mirrors models.StoredState with pointer fields so that missing
// keys and nulls can be told apart from zero values.
type document struct {
	PartyAName *string   `json:"partyAName"`
	PartyBName *string   `json:"partyBName"`
	Assets     *[]*asset `json:"assets"`
}

type asset struct {
	ID               *string                `json:"id"`
	Name             *string                `json:"name"`
	Value            *float64               `json:"value"`
	AllocationType   *models.AllocationType `json:"allocationType"`
	PartyAPercentage *float64               `json:"partyAPercentage"`
	PartyBPercentage *float64               `json:"partyBPercentage"`
}

func missing(field string) error {
	return &ShapeError{Field: field, Reason: "missing or null"}
}

func (d document) validate() (models.StoredState, error) {
	if d.PartyAName == nil {
		return models.StoredState{}, missing("partyAName")
	}
	if d.PartyBName == nil {
		return models.StoredState{}, missing("partyBName")
	}
	if d.Assets == nil {
		return models.StoredState{}, missing("assets")
	}

	state := models.StoredState{
		PartyAName: *d.PartyAName,
		PartyBName: *d.PartyBName,
		Assets:     make([]models.Asset, 0, len(*d.Assets)),
	}
	seen := make(map[string]bool, len(*d.Assets))
	for i, raw := range *d.Assets {
		a, err := raw.validate(fmt.Sprintf("assets[%d]", i))
		if err != nil {
			return models.StoredState{}, err
		}
		if seen[a.ID] {
			return models.StoredState{}, &ShapeError{Field: fmt.Sprintf("assets[%d].id", i), Reason: "duplicate id " + a.ID}
		}
		seen[a.ID] = true
		state.Assets = append(state.Assets, a)
	}
	return state, nil
}

func (a *asset) validate(path string) (models.Asset, error) {
	if a == nil {
		return models.Asset{}, missing(path)
	}
	switch {
	case a.ID == nil:
		return models.Asset{}, missing(path + ".id")
	case *a.ID == "":
		return models.Asset{}, &ShapeError{Field: path + ".id", Reason: "empty"}
	case a.Name == nil:
		return models.Asset{}, missing(path + ".name")
	case a.Value == nil:
		return models.Asset{}, missing(path + ".value")
	case a.AllocationType == nil:
		return models.Asset{}, missing(path + ".allocationType")
	case !a.AllocationType.Valid():
		return models.Asset{}, &ShapeError{Field: path + ".allocationType", Reason: fmt.Sprintf("unknown type %q", *a.AllocationType)}
	case a.PartyAPercentage == nil:
		return models.Asset{}, missing(path + ".partyAPercentage")
	case a.PartyBPercentage == nil:
		return models.Asset{}, missing(path + ".partyBPercentage")
	}
	return models.Asset{
		ID:               *a.ID,
		Name:             *a.Name,
		Value:            *a.Value,
		AllocationType:   *a.AllocationType,
		PartyAPercentage: *a.PartyAPercentage,
		PartyBPercentage: *a.PartyBPercentage,
	}, nil
}

// Validate checks an in-memory state against the same rules Import applies.
func Validate(state models.StoredState) error {
	data, err := Export(state)
	if err != nil {
		return err
	}
	_, err = Import(data)
	return err
}
