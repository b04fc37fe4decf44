package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/roach88/nomadpath/internal/model"
)

// RecordingStore is an in-memory persistence provider that keeps a copy of
// every saved character and every appended event.
//
// Saved characters are snapshotted through JSON, so later mutation of the
// live character does not change what was recorded.
type RecordingStore struct {
	mu     sync.Mutex
	saves  []*model.Character
	events []model.Event

	// SaveErr, when set, is returned by SaveCharacter and nothing is stored.
	SaveErr error
	// EventErr, when set, is returned by AppendEvent and nothing is stored.
	EventErr error
}

// NewRecordingStore returns an empty store.
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{}
}

// SaveCharacter records a snapshot of c.
func (s *RecordingStore) SaveCharacter(_ context.Context, c *model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	snap, err := snapshot(c)
	if err != nil {
		return err
	}
	s.saves = append(s.saves, snap)
	return nil
}

// LoadCharacter returns the latest snapshot with the given id, or nil.
func (s *RecordingStore) LoadCharacter(_ context.Context, id string) (*model.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.saves) - 1; i >= 0; i-- {
		if s.saves[i].ID == id {
			return snapshot(s.saves[i])
		}
	}
	return nil, nil
}

// AppendEvent records ev.
func (s *RecordingStore) AppendEvent(_ context.Context, ev model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EventErr != nil {
		return s.EventErr
	}
	s.events = append(s.events, ev)
	return nil
}

// SaveCount returns how many saves succeeded.
func (s *RecordingStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

// LastSaved returns the most recent snapshot, or nil.
func (s *RecordingStore) LastSaved() *model.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saves) == 0 {
		return nil
	}
	return s.saves[len(s.saves)-1]
}

// Events returns a copy of the recorded events.
func (s *RecordingStore) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Event(nil), s.events...)
}

// Reset forgets everything recorded so far.
func (s *RecordingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = nil
	s.events = nil
}

func snapshot(c *model.Character) (*model.Character, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	out, _, err := model.Decode(data, time.Time{})
	return out, err
}
