package persistence_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mmynk/assetsplitter/internal/codec"
	"github.com/mmynk/assetsplitter/internal/models"
	"github.com/mmynk/assetsplitter/internal/notify"
	"github.com/mmynk/assetsplitter/internal/persistence"
	"github.com/mmynk/assetsplitter/internal/storage/memory"
	"github.com/mmynk/assetsplitter/internal/storage/mocks"
)

// liveState is a tiny stand-in for the session: a name that changes.
type liveState struct {
	mu   sync.Mutex
	name string
}

func (s *liveState) set(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *liveState) snapshot() models.StoredState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.StoredState{PartyAName: s.name, Assets: []models.Asset{}}
}

func TestAutosaver_BurstCollapsesToOneWriteOfFinalState(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)

	written := make(chan []byte, 10)
	backend.EXPECT().Put(gomock.Any(), "bananaData", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value []byte) error {
			written <- value
			return nil
		}).Times(1)

	var notified atomic.Int32
	live := &liveState{}
	saver := persistence.NewAutosaver(persistence.NewAdapter(backend), "bananaData", 100*time.Millisecond,
		live.snapshot, notify.Func(func(string) { notified.Add(1) }))

	for _, name := range []string{"A", "Al", "Ali", "Alic", "Alice"} {
		live.set(name)
		saver.Schedule()
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case value := <-written:
		state, err := codec.Import(value)
		require.NoError(t, err)
		assert.Equal(t, "Alice", state.PartyAName)
	case <-time.After(2 * time.Second):
		t.Fatal("autosave never fired")
	}

	// Give a stray second write the chance to show up; gomock fails on it.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), notified.Load())
	assert.False(t, saver.Pending())
}

func TestAutosaver_SnapshotTakenAtFireTime(t *testing.T) {
	store := memory.New()
	adapter := persistence.NewAdapter(store)
	live := &liveState{}
	saver := persistence.NewAutosaver(adapter, "k", 30*time.Millisecond, live.snapshot, nil)

	live.set("scheduled")
	saver.Schedule()
	live.set("changed without scheduling")

	assert.Eventually(t, func() bool {
		return adapter.Load(context.Background(), "k", models.EmptyState()).PartyAName == "changed without scheduling"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAutosaver_FlushWritesPendingImmediately(t *testing.T) {
	store := memory.New()
	adapter := persistence.NewAdapter(store)
	live := &liveState{name: "flushed"}
	saver := persistence.NewAutosaver(adapter, "k", time.Hour, live.snapshot, nil)

	require.NoError(t, saver.Flush(context.Background()), "flush with nothing pending is a no-op")
	exists, _ := adapter.Exists(context.Background(), "k")
	assert.False(t, exists)

	saver.Schedule()
	require.True(t, saver.Pending())
	require.NoError(t, saver.Flush(context.Background()))
	assert.False(t, saver.Pending())
	assert.Equal(t, "flushed", adapter.Load(context.Background(), "k", models.EmptyState()).PartyAName)
}

func TestAutosaver_StopCancelsPendingWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl) // no Put expected

	live := &liveState{}
	saver := persistence.NewAutosaver(persistence.NewAdapter(backend), "k", 20*time.Millisecond, live.snapshot, nil)
	saver.Schedule()
	saver.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.False(t, saver.Pending())
}

func TestAutosaver_FlushWaitsForWriteInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	backend.EXPECT().Put(gomock.Any(), "k", gomock.Any()).
		DoAndReturn(func(context.Context, string, []byte) error {
			close(started)
			<-release
			return nil
		}).Times(1)

	live := &liveState{name: "slow"}
	saver := persistence.NewAutosaver(persistence.NewAdapter(backend), "k", 10*time.Millisecond, live.snapshot, nil)
	saver.Schedule()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("autosave never fired")
	}
	require.False(t, saver.Pending(), "the timer has taken the write")

	flushed := make(chan error, 1)
	go func() { flushed <- saver.Flush(context.Background()) }()

	select {
	case <-flushed:
		t.Fatal("Flush returned while a write was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-flushed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Flush never returned")
	}
}

func TestAutosaver_DiscardCancelsAndDeletes(t *testing.T) {
	store := memory.New()
	adapter := persistence.NewAdapter(store)
	live := &liveState{name: "saved"}
	saver := persistence.NewAutosaver(adapter, "k", time.Hour, live.snapshot, nil)

	saver.Schedule()
	require.NoError(t, saver.Flush(context.Background()))
	exists, err := adapter.Exists(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, exists)

	saver.Schedule()
	require.NoError(t, saver.Discard(context.Background()))
	assert.False(t, saver.Pending())

	exists, err = adapter.Exists(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, exists)
}
