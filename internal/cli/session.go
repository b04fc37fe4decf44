package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/nomadpath/internal/engine"
	"github.com/roach88/nomadpath/internal/intake"
	"github.com/roach88/nomadpath/internal/model"
	"github.com/roach88/nomadpath/internal/rules"
	"github.com/roach88/nomadpath/internal/store"
)

// session is the store, rules and engine one command works with.
type session struct {
	store  *store.Store
	engine *engine.Engine
	rules  *rules.Rules
	intake *intake.Validator
}

// openSession opens the database and builds an engine whose event clock
// continues after the last stored event.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	r, err := rules.Load(opts.Config.RulesPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load rules", err)
	}

	slog.Debug("opening database", "path", opts.Config.DBPath)
	st, err := store.Open(opts.Config.DBPath, store.WithLogger(slog.Default()))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	seq, err := st.LastEventSeq(ctx)
	if err != nil {
		_ = st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to read event log", err)
	}

	eng := engine.New(st,
		engine.WithEventLog(st),
		engine.WithRules(r),
		engine.WithClock(engine.NewClockAt(seq)),
		engine.WithDecayInterval(opts.Config.DecayInterval),
		engine.WithLogger(slog.Default()),
	)

	return &session{store: st, engine: eng, rules: r, intake: intake.New(r)}, nil
}

// Close closes the database, logging any error.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// character loads the selected character: the configured id, or the most
// recently saved one.
func (s *session) character(ctx context.Context, opts *RootOptions) (*model.Character, error) {
	id := opts.Config.CharacterID
	if id != "" {
		c, err := s.store.LoadCharacter(ctx, id)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load character", err)
		}
		if c == nil {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("character not found: %s", id))
		}
		return c, nil
	}

	c, err := s.store.LoadLatest(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load character", err)
	}
	if c == nil {
		return nil, NewExitError(ExitCommandError, "no character yet (run 'nomadpath init <name>' first)")
	}
	return c, nil
}

// withCharacter opens a session, loads the selected character and runs fn.
func withCharacter(ctx context.Context, opts *RootOptions, fn func(*session, *model.Character) error) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.character(ctx, opts)
	if err != nil {
		return err
	}
	return fn(s, c)
}
