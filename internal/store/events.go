package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/nomadpath/internal/model"
)

// AppendEvent adds ev to the progression history. Seq must be unique
// across the database; a repeated seq is an error.
func (s *Store) AppendEvent(ctx context.Context, ev model.Event) error {
	levelUps := "{}"
	if len(ev.LevelUps) > 0 {
		data, err := json.Marshal(ev.LevelUps)
		if err != nil {
			return fmt.Errorf("append event %s: level ups: %w", ev.ID, err)
		}
		levelUps = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progression_events
			(id, seq, character_id, kind, skill, xp, granted, level_ups, level, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.Seq, ev.CharacterID, string(ev.Kind), ev.Skill, ev.XP, ev.Granted,
		levelUps, ev.Level, ev.At.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("append event %s: %w", ev.ID, err)
	}
	return nil
}

// ReadEvents returns the history of one character in seq order.
// Returns an empty slice (not nil) if no events exist.
func (s *Store) ReadEvents(ctx context.Context, characterID string) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, character_id, kind, skill, xp, granted, level_ups, level, at
		FROM progression_events
		WHERE character_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, characterID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var ev model.Event
		var kind, levelUps, at string
		if err := rows.Scan(&ev.ID, &ev.Seq, &ev.CharacterID, &kind, &ev.Skill,
			&ev.XP, &ev.Granted, &levelUps, &ev.Level, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = model.EventKind(kind)
		if levelUps != "{}" {
			if err := json.Unmarshal([]byte(levelUps), &ev.LevelUps); err != nil {
				return nil, fmt.Errorf("event %s: level ups: %w", ev.ID, err)
			}
		}
		ev.At, err = time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("event %s: parse at: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// LastEventSeq returns the highest stored seq, 0 for an empty history.
// The engine clock resumes from it.
func (s *Store) LastEventSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM progression_events`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last event seq: %w", err)
	}
	return seq, nil
}
