// Package assets holds the asset collection and its allocation rules.
//
// A Collection is an immutable value: every operation returns a new
// Collection and leaves the receiver untouched, so callers can detect changes
// by comparing the collections they hold.
package assets

import (
	"github.com/google/uuid"

	"github.com/mmynk/assetsplitter/internal/models"
)

// Collection is an ordered list of assets with unique IDs.
type Collection struct {
	items []models.Asset
}

// New builds a collection from the given assets. The slice is copied.
// Later duplicates of an ID are dropped so the uniqueness invariant holds
// even for hand-built input.
func New(items []models.Asset) Collection {
	seen := make(map[string]bool, len(items))
	out := make([]models.Asset, 0, len(items))
	for _, a := range items {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return Collection{items: out}
}

// Assets returns a copy of the assets in order.
func (c Collection) Assets() []models.Asset {
	out := make([]models.Asset, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of assets.
func (c Collection) Len() int { return len(c.items) }

// Get returns the asset with the given ID.
func (c Collection) Get(id string) (models.Asset, bool) {
	for _, a := range c.items {
		if a.ID == id {
			return a, true
		}
	}
	return models.Asset{}, false
}

// NewAsset returns a blank asset with a fresh ID and a 50/50 split.
func NewAsset() models.Asset {
	a, b := models.AllocationSplit.Percentages()
	return models.Asset{
		ID:               uuid.New().String(),
		AllocationType:   models.AllocationSplit,
		PartyAPercentage: a,
		PartyBPercentage: b,
	}
}

// Add appends a blank asset and returns the new collection and the asset.
func (c Collection) Add() (Collection, models.Asset) {
	asset := NewAsset()
	items := make([]models.Asset, len(c.items), len(c.items)+1)
	copy(items, c.items)
	return Collection{items: append(items, asset)}, asset
}

// Delete removes the asset with the given ID. Unknown IDs are a no-op.
func (c Collection) Delete(id string) Collection {
	items := make([]models.Asset, 0, len(c.items))
	for _, a := range c.items {
		if a.ID != id {
			items = append(items, a)
		}
	}
	return Collection{items: items}
}

// Update replaces the asset whose ID matches asset.ID. It never inserts:
// if no asset matches, the collection is returned unchanged.
func (c Collection) Update(asset models.Asset) Collection {
	items := make([]models.Asset, len(c.items))
	for i, a := range c.items {
		if a.ID == asset.ID {
			items[i] = asset
		} else {
			items[i] = a
		}
	}
	return Collection{items: items}
}

// WithAllocationType returns a with its allocation type changed and the
// percentages reset to the type's defaults.
func WithAllocationType(a models.Asset, t models.AllocationType) models.Asset {
	a.AllocationType = t
	a.PartyAPercentage, a.PartyBPercentage = t.Percentages()
	return a
}

// SetAllocationType applies WithAllocationType to asset and updates it.
func (c Collection) SetAllocationType(asset models.Asset, t models.AllocationType) Collection {
	return c.Update(WithAllocationType(asset, t))
}

// edit applies fn to the asset with the given ID, if any.
func (c Collection) edit(id string, fn func(a *models.Asset)) Collection {
	a, ok := c.Get(id)
	if !ok {
		return c
	}
	fn(&a)
	return c.Update(a)
}

// SetName renames an asset. Percentages are untouched.
func (c Collection) SetName(id, name string) Collection {
	return c.edit(id, func(a *models.Asset) { a.Name = name })
}

// SetValue changes an asset's value. Percentages are untouched.
func (c Collection) SetValue(id string, value float64) Collection {
	return c.edit(id, func(a *models.Asset) { a.Value = value })
}

// SetPercentage sets party's share to p and the other party's to 100-p.
// Percentage edits always leave the asset in split mode.
func (c Collection) SetPercentage(id string, party models.Party, p float64) Collection {
	return c.edit(id, func(a *models.Asset) {
		if party == models.PartyB {
			a.PartyBPercentage = p
			a.PartyAPercentage = 100 - p
		} else {
			a.PartyAPercentage = p
			a.PartyBPercentage = 100 - p
		}
		a.AllocationType = models.AllocationSplit
	})
}
