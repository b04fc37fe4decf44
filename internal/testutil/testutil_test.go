package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nomadpath/internal/model"
)

func TestSequenceIDs(t *testing.T) {
	gen := NewSequenceIDs("evt")
	assert.Equal(t, "evt-0001", gen.Generate())
	assert.Equal(t, "evt-0002", gen.Generate())

	assert.Equal(t, "id-0001", NewSequenceIDs("").Generate())
}

func TestSequenceIDs_ThreadSafe(t *testing.T) {
	gen := NewSequenceIDs("x")
	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1000)
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(time.Time{})
	assert.Equal(t, Epoch, c.Now())

	c.Advance(48 * time.Hour)
	assert.Equal(t, Epoch.Add(48*time.Hour), c.Now())

	at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(at)
	assert.Equal(t, at, c.Now())
}

func TestRecordingStore_SnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewRecordingStore()
	c := model.NewCharacter("c1", "Ada")

	require.NoError(t, s.SaveCharacter(ctx, c))
	c.Name = "Changed"

	assert.Equal(t, 1, s.SaveCount())
	assert.Equal(t, "Ada", s.LastSaved().Name)

	loaded, err := s.LoadCharacter(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", loaded.Name)

	missing, err := s.LoadCharacter(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecordingStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewRecordingStore()
	s.SaveErr = errors.New("disk full")
	s.EventErr = errors.New("log closed")

	assert.EqualError(t, s.SaveCharacter(ctx, model.NewCharacter("c1", "")), "disk full")
	assert.EqualError(t, s.AppendEvent(ctx, model.Event{}), "log closed")
	assert.Equal(t, 0, s.SaveCount())
	assert.Empty(t, s.Events())
	assert.Nil(t, s.LastSaved())
}
