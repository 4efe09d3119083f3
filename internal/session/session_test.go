package session_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/assetsplitter/internal/codec"
	"github.com/mmynk/assetsplitter/internal/models"
	"github.com/mmynk/assetsplitter/internal/notify"
	"github.com/mmynk/assetsplitter/internal/session"
)

func seeded() models.StoredState {
	return models.StoredState{
		PartyAName: "Al",
		PartyBName: "Bo",
		Assets: []models.Asset{
			{ID: "1", Name: "House", Value: 400000, AllocationType: models.AllocationSplit, PartyAPercentage: 50, PartyBPercentage: 50},
			{ID: "2", Name: "Car", Value: 20000, AllocationType: models.AllocationPartyA, PartyAPercentage: 100},
		},
	}
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	s := session.New(seeded())

	snap := s.Snapshot()
	snap.Assets[0].Name = "Changed"

	got, ok := s.Asset("1")
	require.True(t, ok)
	assert.Equal(t, "House", got.Name)
}

func TestSession_Totals(t *testing.T) {
	s := session.New(seeded())

	totals := s.Totals()
	assert.InDelta(t, 220000, totals.PartyA, 0.001)
	assert.InDelta(t, 200000, totals.PartyB, 0.001)

	s.SetPercentage("1", models.PartyA, 25)
	totals = s.Totals()
	assert.InDelta(t, 120000, totals.PartyA, 0.001)
	assert.InDelta(t, 300000, totals.PartyB, 0.001)
}

func TestSession_ObserversRunOnlyOnChange(t *testing.T) {
	s := session.New(seeded())
	calls := 0
	s.OnChange(func() { calls++ })

	s.DeleteAsset("missing")
	s.UpdateAsset(models.Asset{ID: "missing", Name: "Ghost"})
	s.SetPartyNames("Al", "Bo")
	assert.Equal(t, 0, calls, "no-op edits should not notify")

	s.SetName("1", "Cabin")
	s.SetPartyName(models.PartyB, "Bea")
	s.AddAsset()
	assert.Equal(t, 3, calls)
}

func TestSession_ObserverCanReadState(t *testing.T) {
	s := session.New(seeded())
	var seen string
	s.OnChange(func() { seen = s.Snapshot().PartyAName })

	s.SetPartyName(models.PartyA, "Alice")
	assert.Equal(t, "Alice", seen)
}

func TestSession_AssetEdits(t *testing.T) {
	s := session.New(seeded())

	added := s.AddAsset()
	assert.Equal(t, models.AllocationSplit, added.AllocationType)
	assert.Len(t, s.Assets(), 3)

	s.SetValue(added.ID, 1500)
	got, ok := s.Asset(added.ID)
	require.True(t, ok)
	s.SetAllocationType(got, models.AllocationPartyB)
	got, _ = s.Asset(added.ID)
	assert.Equal(t, 1500.0, got.Value)
	assert.Equal(t, models.AllocationPartyB, got.AllocationType)
	assert.Equal(t, 0.0, got.PartyAPercentage)
	assert.Equal(t, 100.0, got.PartyBPercentage)

	s.SetPercentage(added.ID, models.PartyB, 30)
	got, _ = s.Asset(added.ID)
	assert.Equal(t, models.AllocationSplit, got.AllocationType)
	assert.Equal(t, 70.0, got.PartyAPercentage)
	assert.Equal(t, 30.0, got.PartyBPercentage)

	s.DeleteAsset(added.ID)
	_, ok = s.Asset(added.ID)
	assert.False(t, ok)
}

func TestSession_Start(t *testing.T) {
	s := session.New(seeded())

	err := s.Start("Alice", "")
	assert.ErrorIs(t, err, session.ErrMissingPartyNames)
	assert.Equal(t, "Al", s.Snapshot().PartyAName, "a rejected start leaves state alone")

	require.NoError(t, s.Start("Alice", "Bob"))
	snap := s.Snapshot()
	assert.Equal(t, "Alice", snap.PartyAName)
	assert.Equal(t, "Bob", snap.PartyBName)
	assert.NotNil(t, snap.Assets)
	assert.Empty(t, snap.Assets)
}

func TestSession_Reset(t *testing.T) {
	s := session.New(seeded())
	s.Reset()
	assert.Equal(t, models.EmptyState(), s.Snapshot())
}

func TestSession_ImportFlow(t *testing.T) {
	valid, err := codec.Export(models.StoredState{
		PartyAName: "Cy",
		PartyBName: "Di",
		Assets:     []models.Asset{},
	})
	require.NoError(t, err)

	t.Run("cancel outside an import is an error", func(t *testing.T) {
		s := session.New(seeded())
		assert.ErrorIs(t, s.CancelImport(), session.ErrNoImportPending)
	})

	t.Run("cancel returns to idle without touching state", func(t *testing.T) {
		s := session.New(seeded())
		s.BeginImport()
		assert.Equal(t, session.ImportAwaitingFile, s.ImportState())
		require.NoError(t, s.CancelImport())
		assert.Equal(t, session.ImportIdle, s.ImportState())
		assert.Equal(t, seeded(), s.Snapshot())
	})

	t.Run("rejected file keeps the flow open and the state unchanged", func(t *testing.T) {
		var messages []string
		s := session.New(seeded(), session.WithNotifier(notify.Func(func(m string) {
			messages = append(messages, m)
		})))
		s.BeginImport()

		err := s.ImportFile("broken.json", []byte("{not json"))
		assert.True(t, errors.Is(err, codec.ErrInvalidFormat))
		assert.Equal(t, session.ImportAwaitingFile, s.ImportState())
		assert.Equal(t, seeded(), s.Snapshot())
		assert.Empty(t, messages)

		outcome, lastErr := s.LastImport()
		assert.Equal(t, session.OutcomeRejected, outcome)
		assert.ErrorIs(t, lastErr, codec.ErrInvalidFormat)
	})

	t.Run("applied file replaces state and closes the flow", func(t *testing.T) {
		var messages []string
		changes := 0
		s := session.New(seeded(), session.WithNotifier(notify.Func(func(m string) {
			messages = append(messages, m)
		})))
		s.OnChange(func() { changes++ })
		s.BeginImport()

		require.NoError(t, s.ImportFile("backup.txt", valid))
		assert.Equal(t, session.ImportIdle, s.ImportState())
		assert.Equal(t, "Cy", s.Snapshot().PartyAName)
		assert.Empty(t, s.Assets())
		assert.Equal(t, []string{notify.MsgSaved}, messages)
		assert.Equal(t, 1, changes)

		outcome, lastErr := s.LastImport()
		assert.Equal(t, session.OutcomeApplied, outcome)
		assert.NoError(t, lastErr)
	})

	t.Run("applied file equal to the current state still notifies observers", func(t *testing.T) {
		s := session.New(models.StoredState{PartyAName: "Cy", PartyBName: "Di", Assets: []models.Asset{}})
		changes := 0
		s.OnChange(func() { changes++ })

		require.NoError(t, s.ImportFile("same.json", valid))
		assert.Equal(t, 1, changes)
	})

	t.Run("direct drop of a bad file stays idle", func(t *testing.T) {
		s := session.New(seeded())
		err := s.ImportFile("bad.json", []byte(`{"partyAName":"x"}`))
		assert.ErrorIs(t, err, codec.ErrInvalidShape)
		assert.Equal(t, session.ImportIdle, s.ImportState())
	})
}

func TestSession_Export(t *testing.T) {
	s := session.New(seeded())
	data, err := s.Export()
	require.NoError(t, err)

	back, err := codec.Import(data)
	require.NoError(t, err)
	assert.Equal(t, seeded(), back)
}
