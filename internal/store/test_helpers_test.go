package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/nomadpath/internal/levels"
	"github.com/roach88/nomadpath/internal/model"
)

// testEpoch is the wall time every test store starts from.
var testEpoch = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

// testClock is a settable wall clock for deterministic updated_at stamps.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{t: testEpoch}
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithNow(clock.now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, clock
}

// createTestCharacter creates a character with one leveled skill.
func createTestCharacter(id, name string) *model.Character {
	c := model.NewCharacter(id, name)
	c.Skills = append(c.Skills, &model.Skill{
		Name:         "Running",
		Description:  "Morning runs",
		XP:           12,
		Level:        levels.FromXP(12),
		Attributes:   []model.AttributeName{model.Agility, model.Energy},
		Emoji:        "🏃",
		LastUsed:     testEpoch,
		AwardedLevel: model.IntPtr(1),
	})
	c.Attributes[model.Agility] = model.Attribute{XP: 1, Level: 1}
	c.Level = 1
	return c
}

// createTestEvent creates an event with minimal required fields.
func createTestEvent(id, characterID string, seq int64, kind model.EventKind) model.Event {
	return model.Event{
		ID:          id,
		Seq:         seq,
		CharacterID: characterID,
		Kind:        kind,
		At:          testEpoch,
	}
}
