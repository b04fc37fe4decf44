package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/nomadpath/internal/model"
)

// timeLayout is fixed-width so stored stamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Summary is one row of ListCharacters.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	Revision  int64     `json:"revision"`
	StateHash string    `json:"stateHash"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveCharacter writes c as canonical JSON and bumps its revision. The
// write happens in one transaction; on error nothing changes.
func (s *Store) SaveCharacter(ctx context.Context, c *model.Character) error {
	if c == nil {
		return fmt.Errorf("save character: nil character")
	}
	if c.ID == "" {
		return fmt.Errorf("save character: empty id")
	}

	payload, err := model.MarshalCanonical(c)
	if err != nil {
		return fmt.Errorf("save character %s: %w", c.ID, err)
	}
	hash, err := model.StateHash(c)
	if err != nil {
		return fmt.Errorf("save character %s: %w", c.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save character %s: begin: %w", c.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO characters (id, name, level, payload, state_hash, revision, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			level = excluded.level,
			payload = excluded.payload,
			state_hash = excluded.state_hash,
			revision = characters.revision + 1,
			updated_at = excluded.updated_at
	`, c.ID, c.Name, c.Level, string(payload), hash, s.stamp())
	if err != nil {
		return fmt.Errorf("save character %s: %w", c.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save character %s: commit: %w", c.ID, err)
	}
	return nil
}

// LoadCharacter returns the character with the given id, or (nil, nil) when
// none is stored. Legacy documents are repaired while loading.
func (s *Store) LoadCharacter(ctx context.Context, id string) (*model.Character, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM characters WHERE id = ?`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load character %s: %w", id, err)
	}
	return s.decode(id, payload)
}

// LoadLatest returns the most recently saved character, or (nil, nil) for
// an empty database.
func (s *Store) LoadLatest(ctx context.Context) (*model.Character, error) {
	var id, payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, payload FROM characters
		ORDER BY updated_at DESC, rowid DESC
		LIMIT 1
	`).Scan(&id, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest character: %w", err)
	}
	return s.decode(id, payload)
}

// ListCharacters returns every stored character, most recent first.
// Returns an empty slice (not nil) for an empty database.
func (s *Store) ListCharacters(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, level, revision, state_hash, updated_at
		FROM characters
		ORDER BY updated_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		var updated string
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Level, &sum.Revision, &sum.StateHash, &updated); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		sum.UpdatedAt, err = time.Parse(timeLayout, updated)
		if err != nil {
			return nil, fmt.Errorf("character %s: parse updated_at: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return out, nil
}

// Revision returns how many times the character has been saved, 0 when it
// is not stored.
func (s *Store) Revision(ctx context.Context, id string) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx,
		`SELECT revision FROM characters WHERE id = ?`, id,
	).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("character revision %s: %w", id, err)
	}
	return rev, nil
}

// DeleteCharacter removes the character and its history. It reports
// whether a row existed.
func (s *Store) DeleteCharacter(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete character %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete character %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *Store) decode(id, payload string) (*model.Character, error) {
	c, notes, err := model.Decode([]byte(payload), s.now())
	if err != nil {
		return nil, fmt.Errorf("load character %s: %w", id, err)
	}
	for _, note := range notes {
		s.logger.Debug("repaired stored character", "character", id, "note", note)
	}
	return c, nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(timeLayout)
}
