// Package session holds the single in-memory StoredState and is the only
// place it is mutated. Readers get copies; writers go through the methods
// below, which notify observers (such as the autosaver) after each change.
package session

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmynk/assetsplitter/internal/assets"
	"github.com/mmynk/assetsplitter/internal/calculator"
	"github.com/mmynk/assetsplitter/internal/codec"
	"github.com/mmynk/assetsplitter/internal/metrics"
	"github.com/mmynk/assetsplitter/internal/models"
	"github.com/mmynk/assetsplitter/internal/notify"
)

var (
	ErrMissingPartyNames = errors.New("both party names are required")
	ErrAssetNotFound     = errors.New("asset not found")
)

// Session is the state container for one user's form.
type Session struct {
	mu         sync.Mutex
	partyAName string
	partyBName string
	assets     assets.Collection
	imports    importFlow

	observers []func()
	notifier  notify.Notifier
	metrics   *metrics.Metrics
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier sets where user-facing messages go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithMetrics records imports and exports on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// New creates a Session holding initial.
func New(initial models.StoredState, opts ...Option) *Session {
	s := &Session{
		partyAName: initial.PartyAName,
		partyBName: initial.PartyBName,
		assets:     assets.New(initial.Assets),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to run after every state change.
// Observers run outside the session lock and may call back into it.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// mutate runs fn under the lock and notifies observers if it reports a change.
func (s *Session) mutate(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, o := range observers {
		o()
	}
}

// setAssets swaps the collection and reports whether it differs.
// Callers must hold s.mu.
func (s *Session) setAssets(next assets.Collection) bool {
	changed := !slices.Equal(s.assets.Assets(), next.Assets())
	s.assets = next
	return changed
}

func (s *Session) notify(message string) {
	if s.notifier != nil {
		s.notifier.Notify(message)
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() models.StoredState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.StoredState{
		PartyAName: s.partyAName,
		PartyBName: s.partyBName,
		Assets:     s.assets.Assets(),
	}
}

// Assets returns a copy of the asset list.
func (s *Session) Assets() []models.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets.Assets()
}

// Asset looks up one asset by ID.
func (s *Session) Asset(id string) (models.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets.Get(id)
}

// Totals recomputes both parties' totals from the current assets.
func (s *Session) Totals() calculator.Totals {
	return calculator.CalculateTotals(s.Assets())
}

// SetPartyNames replaces both names.
func (s *Session) SetPartyNames(a, b string) {
	s.mutate(func() bool {
		changed := s.partyAName != a || s.partyBName != b
		s.partyAName, s.partyBName = a, b
		return changed
	})
}

// SetPartyName replaces one party's name.
func (s *Session) SetPartyName(party models.Party, name string) {
	s.mutate(func() bool {
		target := &s.partyAName
		if party == models.PartyB {
			target = &s.partyBName
		}
		changed := *target != name
		*target = name
		return changed
	})
}

// Start begins a fresh form for two named parties with no assets.
// Both names are required.
func (s *Session) Start(a, b string) error {
	if a == "" || b == "" {
		return ErrMissingPartyNames
	}
	s.Replace(models.StoredState{PartyAName: a, PartyBName: b, Assets: []models.Asset{}})
	return nil
}

// Replace adopts state wholesale. Observers run only if something differs.
func (s *Session) Replace(state models.StoredState) {
	s.replace(state, false)
}

// replace adopts state; with force set, observers run even when the new
// state equals the old one.
func (s *Session) replace(state models.StoredState, force bool) {
	s.mutate(func() bool {
		changed := s.partyAName != state.PartyAName || s.partyBName != state.PartyBName
		s.partyAName, s.partyBName = state.PartyAName, state.PartyBName
		return s.setAssets(assets.New(state.Assets)) || changed || force
	})
}

// Reset empties the form.
func (s *Session) Reset() {
	s.Replace(models.EmptyState())
}

// AddAsset appends a blank 50/50 asset and returns it.
func (s *Session) AddAsset() models.Asset {
	var added models.Asset
	s.mutate(func() bool {
		s.assets, added = s.assets.Add()
		return true
	})
	slog.Debug("Asset added", "id", added.ID)
	return added
}

// DeleteAsset removes an asset. Unknown IDs are ignored.
func (s *Session) DeleteAsset(id string) {
	s.mutate(func() bool { return s.setAssets(s.assets.Delete(id)) })
}

// UpdateAsset replaces the asset with the same ID. It never inserts.
func (s *Session) UpdateAsset(a models.Asset) {
	s.mutate(func() bool { return s.setAssets(s.assets.Update(a)) })
}

// SetAllocationType changes asset's type, resetting its percentages.
func (s *Session) SetAllocationType(asset models.Asset, t models.AllocationType) {
	s.mutate(func() bool { return s.setAssets(s.assets.SetAllocationType(asset, t)) })
}

// SetName renames an asset.
func (s *Session) SetName(id, name string) {
	s.mutate(func() bool { return s.setAssets(s.assets.SetName(id, name)) })
}

// SetValue changes an asset's value.
func (s *Session) SetValue(id string, value float64) {
	s.mutate(func() bool { return s.setAssets(s.assets.SetValue(id, value)) })
}

// SetPercentage sets one party's share of a split asset; the other party
// gets the complement.
func (s *Session) SetPercentage(id string, party models.Party, p float64) {
	s.mutate(func() bool { return s.setAssets(s.assets.SetPercentage(id, party, p)) })
}

// Export encodes the current state as the exchange document.
func (s *Session) Export() ([]byte, error) {
	data, err := codec.Export(s.Snapshot())
	if err != nil {
		return nil, err
	}
	s.metrics.RecordExport()
	return data, nil
}
