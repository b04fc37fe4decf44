package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/nomadpath/internal/aggregate"
	"github.com/roach88/nomadpath/internal/bridge"
	"github.com/roach88/nomadpath/internal/graph"
	"github.com/roach88/nomadpath/internal/ledger"
	"github.com/roach88/nomadpath/internal/model"
	"github.com/roach88/nomadpath/internal/rules"
)

// Store is the persistence provider. SaveCharacter must either store the
// whole character or return an error.
type Store interface {
	SaveCharacter(ctx context.Context, c *model.Character) error
}

// EventLog receives one event per completed operation.
type EventLog interface {
	AppendEvent(ctx context.Context, ev model.Event) error
}

// Engine coordinates progression over characters.
type Engine struct {
	store         Store
	events        EventLog
	ledger        *ledger.Ledger
	clock         *Clock
	ids           IDGenerator
	now           func() time.Time
	logger        *slog.Logger
	decayInterval time.Duration
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithEventLog enables progression history.
func WithEventLog(log EventLog) EngineOption {
	return func(e *Engine) {
		e.events = log
	}
}

// WithRules sets the rule set used for attribute resolution.
// Default: rules.Default().
func WithRules(r *rules.Rules) EngineOption {
	return func(e *Engine) {
		e.ledger = ledger.New(r)
	}
}

// WithNow sets the wall clock used for lastUsed stamps and decay.
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithClock sets the logical clock numbering events. Use NewClockAt to
// continue after the last stored event.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator sets the generator for character and event ids.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithDecayInterval sets the idle time that costs a skill one XP.
// Default: one week.
func WithDecayInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.decayInterval = d
		}
	}
}

// New creates an Engine that persists through s. A nil s keeps characters
// in memory only.
func New(s Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:         s,
		ledger:        ledger.New(nil),
		clock:         NewClock(),
		ids:           UUIDv7Generator{},
		now:           time.Now,
		logger:        slog.Default(),
		decayInterval: ledger.DefaultDecayInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the rule set in use.
func (e *Engine) Rules() *rules.Rules {
	return e.ledger.Rules()
}

// NewCharacter creates and saves a character with every attribute at zero
// and an empty graph.
func (e *Engine) NewCharacter(ctx context.Context, name, avatar, description string) (*model.Character, error) {
	c := model.NewCharacter(e.ids.Generate(), strings.TrimSpace(name))
	c.Avatar = avatar
	c.Description = description
	if err := e.save(ctx, c); err != nil {
		return nil, err
	}
	e.logger.Info("character created", "id", c.ID, "name", c.Name)
	e.record(ctx, c, model.Event{Kind: model.EventCharacterCreated})
	return c, nil
}

// AddOrUpdateSkill merges one skill mention into c. A level-up triggers a
// progression pass targeted at that skill. The character is saved once.
// It returns the affected skill, or nil when the input was refused.
func (e *Engine) AddOrUpdateSkill(ctx context.Context, c *model.Character, in ledger.Input) (*model.Skill, error) {
	if c == nil {
		e.reject(errNoCharacter("add skill"))
		return nil, nil
	}
	e.repair(c)
	res, ok := e.upsert(c, in)
	if !ok {
		return nil, nil
	}

	ev := model.Event{Kind: model.EventSkillUpdated, Skill: res.Skill.Name, XP: xpOrDefault(in.XP, 1)}
	if res.Created {
		ev.Kind = model.EventSkillCreated
	}
	if res.LeveledUp() {
		e.logger.Info("skill level up", "skill", res.Skill.Name, "from", res.PrevLevel, "to", res.Skill.Level)
		ev.Granted, ev.LevelUps = e.progress(c, res.Skill)
	}

	if err := e.save(ctx, c); err != nil {
		return nil, err
	}
	e.record(ctx, c, ev)
	return res.Skill, nil
}

// AllSkills applies weekly decay to every skill, saves, and returns the
// skills.
func (e *Engine) AllSkills(ctx context.Context, c *model.Character) ([]*model.Skill, error) {
	if c == nil {
		e.reject(errNoCharacter("all skills"))
		return nil, nil
	}
	e.repair(c)
	decayed := ledger.Decay(c.Skills, e.now(), e.decayInterval)
	lost := 0
	for _, d := range decayed {
		e.logger.Info("skill decayed", "skill", d.Skill, "lost", d.Lost)
		lost += d.Lost
	}

	if err := e.save(ctx, c); err != nil {
		return nil, err
	}
	if lost > 0 {
		e.record(ctx, c, model.Event{Kind: model.EventSkillsDecayed, XP: lost})
	}
	return c.Skills, nil
}

// SetSkills replaces the skill list with list merged into the existing
// skills. Skills not mentioned are dropped. Skills whose level rose are
// paid through the bridge, then the graph and levels are recomputed once.
func (e *Engine) SetSkills(ctx context.Context, c *model.Character, list []ledger.Input) ([]*model.Skill, error) {
	if c == nil {
		e.reject(errNoCharacter("set skills"))
		return nil, nil
	}
	e.repair(c)
	results := e.ledger.Replace(c, list, e.now())

	ev := model.Event{Kind: model.EventSkillsSet}
	leveled := false
	for _, res := range results {
		ev.XP += xpOrDefault(inputFor(list, res.Skill.Name), 0)
		if res.LeveledUp() {
			leveled = true
			ev.Granted += bridge.Award(c, res.Skill)
		}
	}
	if leveled {
		c.SkillGraph = graph.Rebuild(c.Skills, c.SkillGraph)
		ev.LevelUps = e.applyRules(c)
	}

	if err := e.save(ctx, c); err != nil {
		return nil, err
	}
	e.logger.Info("skills set", "count", len(c.Skills))
	e.record(ctx, c, ev)
	return c.Skills, nil
}

// SkillByName returns the skill matching name case-insensitively, or nil.
func (e *Engine) SkillByName(c *model.Character, name string) *model.Skill {
	if c == nil {
		e.reject(errNoCharacter("skill by name"))
		return nil
	}
	e.repair(c)
	return ledger.Find(c.Skills, name)
}

// ClearSkills removes every skill and saves. Attributes and the graph are
// untouched until the next progression pass.
func (e *Engine) ClearSkills(ctx context.Context, c *model.Character) error {
	if c == nil {
		e.reject(errNoCharacter("clear skills"))
		return nil
	}
	e.repair(c)
	ledger.Clear(c)
	if err := e.save(ctx, c); err != nil {
		return err
	}
	e.record(ctx, c, model.Event{Kind: model.EventSkillsCleared})
	return nil
}

// ApplyProgression runs a full progression pass. With changed set, only
// that skill (matched by name) goes through the bridge; otherwise every
// skill does.
func (e *Engine) ApplyProgression(ctx context.Context, c *model.Character, changed *model.Skill) (*model.Character, error) {
	if c == nil {
		e.reject(errNoCharacter("apply progression"))
		return nil, nil
	}
	e.repair(c)
	ev := model.Event{Kind: model.EventProgression}
	if changed != nil {
		ev.Skill = changed.Name
	}
	ev.Granted, ev.LevelUps = e.progress(c, changed)

	if err := e.save(ctx, c); err != nil {
		return nil, err
	}
	e.record(ctx, c, ev)
	return c, nil
}

// ApplyProgressionRules recomputes attribute and global levels and saves.
// Use it after attribute XP changed without going through a skill.
func (e *Engine) ApplyProgressionRules(ctx context.Context, c *model.Character) (*model.Character, error) {
	if c == nil {
		e.reject(errNoCharacter("apply rules"))
		return nil, nil
	}
	e.repair(c)
	ups := e.applyRules(c)
	if err := e.save(ctx, c); err != nil {
		return nil, err
	}
	e.record(ctx, c, model.Event{Kind: model.EventRules, LevelUps: ups})
	return c, nil
}

// AwardAttributeXP adds xp directly to one attribute, for rewards that do
// not come from a skill, then runs a rules-only pass.
func (e *Engine) AwardAttributeXP(ctx context.Context, c *model.Character, attr string, xp int) error {
	if c == nil {
		e.reject(errNoCharacter("award attribute"))
		return nil
	}
	e.repair(c)
	name, ok := model.ParseAttribute(attr)
	if !ok {
		e.reject(&InputError{Code: ErrCodeUnknownAttribute, Message: fmt.Sprintf("unknown attribute %q", attr)})
		return nil
	}
	if xp <= 0 {
		e.reject(&InputError{Code: ErrCodeInvalidXP, Message: fmt.Sprintf("award must be positive, got %d", xp)})
		return nil
	}

	a := c.Attributes[name]
	a.XP += xp
	c.Attributes[name] = a
	ups := e.applyRules(c)

	if err := e.save(ctx, c); err != nil {
		return err
	}
	e.logger.Info("attribute awarded", "attribute", name, "xp", xp)
	e.record(ctx, c, model.Event{Kind: model.EventAttributeAward, Skill: string(name), XP: xp, LevelUps: ups})
	return nil
}

// progress runs bridge, graph and aggregation without saving.
func (e *Engine) progress(c *model.Character, changed *model.Skill) (int, map[model.AttributeName]int) {
	granted := 0
	if changed != nil {
		if s := ledger.Find(c.Skills, changed.Name); s != nil {
			granted = bridge.Award(c, s)
		}
	} else {
		granted = bridge.AwardAll(c)
	}
	if granted > 0 {
		e.logger.Debug("attribute xp granted", "xp", granted)
	}
	c.SkillGraph = graph.Rebuild(c.Skills, c.SkillGraph)
	return granted, e.applyRules(c)
}

func (e *Engine) applyRules(c *model.Character) map[model.AttributeName]int {
	ups := aggregate.LevelUps(c)
	aggregate.ApplyAttributeProgress(c)
	before := c.Level
	aggregate.ApplyGlobalXP(c)
	for name, n := range ups {
		e.logger.Info("attribute level up", "attribute", name, "levels", n, "level", c.Attributes[name].Level)
	}
	if c.Level > before {
		e.logger.Info("global level up", "level", c.Level)
	}
	return ups
}

// upsert applies one mention through the ledger. ok is false when the
// mention was refused and already logged.
func (e *Engine) upsert(c *model.Character, in ledger.Input) (ledger.Result, bool) {
	res, err := e.ledger.Upsert(c, in, e.now())
	if errors.Is(err, ledger.ErrBlankName) {
		e.reject(&InputError{Code: ErrCodeBlankName, Message: "skill name is blank"})
		return res, false
	}
	if res.Created {
		e.logger.Debug("skill created", "skill", res.Skill.Name, "xp", res.Skill.XP)
	} else {
		e.logger.Debug("skill updated", "skill", res.Skill.Name, "xp", res.Skill.XP)
	}
	return res, true
}

func (e *Engine) save(ctx context.Context, c *model.Character) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.SaveCharacter(ctx, c); err != nil {
		return fmt.Errorf("save character: %w", err)
	}
	return nil
}

// record stamps ev and appends it to the event log. Failures are logged.
func (e *Engine) record(ctx context.Context, c *model.Character, ev model.Event) {
	if e.events == nil {
		return
	}
	ev.ID = e.ids.Generate()
	ev.Seq = e.clock.Next()
	ev.CharacterID = c.ID
	ev.Level = c.Level
	ev.At = e.now()
	if len(ev.LevelUps) == 0 {
		ev.LevelUps = nil
	}
	if err := e.events.AppendEvent(ctx, ev); err != nil {
		e.logger.Warn("event log append failed", "kind", ev.Kind, "seq", ev.Seq, "error", err)
	}
}

// repair brings a character that was not built by NewCharacter or loaded
// from the store up to the shape the passes expect.
func (e *Engine) repair(c *model.Character) {
	for _, note := range model.Normalize(c, e.now()) {
		e.logger.Warn("character repaired", "id", c.ID, "note", note)
	}
}

func (e *Engine) reject(err *InputError) {
	e.logger.Warn("input refused", "code", err.Code, "error", err)
}

func xpOrDefault(xp *int, def int) int {
	if xp == nil {
		return def
	}
	return *xp
}

func inputFor(list []ledger.Input, name string) *int {
	key := model.FoldName(name)
	for _, in := range list {
		if model.FoldName(in.Name) == key {
			return in.XP
		}
	}
	return nil
}
