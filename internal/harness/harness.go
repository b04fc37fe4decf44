package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/nomadpath/internal/engine"
	"github.com/roach88/nomadpath/internal/intake"
	"github.com/roach88/nomadpath/internal/ledger"
	"github.com/roach88/nomadpath/internal/model"
	"github.com/roach88/nomadpath/internal/rules"
	"github.com/roach88/nomadpath/internal/testutil"
)

// IDPrefix prefixes every id the harness engine generates, so the first
// character of a scenario is always "nomad-0001".
const IDPrefix = "nomad"

// Harness is the scenario execution engine.
// It runs scenarios against a recording store with a manual wall clock and
// sequential ids, so two runs of one scenario are byte-identical.
type Harness struct {
	engine    *engine.Engine
	store     *testutil.RecordingStore
	clock     *testutil.ManualClock
	seq       *engine.Clock
	intake    *intake.Validator
	logger    *slog.Logger
	character *model.Character
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store for isolation.
//
// Execution flow:
// 1. Load the rules (built-in or the scenario's override file)
// 2. Execute setup steps; any outcome other than "ok" aborts
// 3. Execute flow steps with expect validation
// 4. Snapshot the final state and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	r, err := rules.Load(scenario.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	start, err := scenario.startTime()
	if err != nil {
		return nil, err
	}

	st := testutil.NewRecordingStore()
	clock := testutil.NewManualClock(start)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := &Harness{
		engine: engine.New(st,
			engine.WithEventLog(st),
			engine.WithRules(r),
			engine.WithNow(clock.Now),
			engine.WithIDGenerator(testutil.NewSequenceIDs(IDPrefix)),
			engine.WithLogger(logger),
		),
		store:  st,
		clock:  clock,
		seq:    engine.NewClock(),
		intake: intake.New(r),
		logger: logger,
	}

	ctx := context.Background()
	result := NewResult()

	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	result.Character = h.character
	result.Events = st.Events()
	result.State = BuildState(h.character)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSetup runs all setup steps. Setup steps must succeed.
func (h *Harness) executeSetup(ctx context.Context, setup []ActionStep, result *Result) error {
	for i, step := range setup {
		outcome, res, err := h.step(ctx, step.Action, step.Args, result)
		if err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, step.Action, err)
		}
		if outcome != CaseOK {
			return fmt.Errorf("setup step %d (%s): outcome %s: %v", i, step.Action, outcome, res)
		}
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		outcome, res, err := h.step(ctx, step.Invoke, step.Args, result)
		if err != nil {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Invoke, err)
		}
		if step.Expect == nil {
			continue
		}

		if outcome != step.Expect.Case {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected case %q, got %q (%v)",
				i, step.Invoke, step.Expect.Case, outcome, res))
			continue
		}
		for key, want := range step.Expect.Result {
			got, ok := res[key]
			if !ok {
				result.AddError(fmt.Sprintf("flow[%d] %s: result has no field %q", i, step.Invoke, key))
				continue
			}
			if !stateValuesEqual(want, got) {
				result.AddError(fmt.Sprintf("flow[%d] %s: result %q = %v, expected %v",
					i, step.Invoke, key, got, want))
			}
		}
		h.logger.Info("flow step validated", "step", i, "op", step.Invoke, "case", outcome)
	}
	return nil
}

// step traces one operation and its outcome.
func (h *Harness) step(ctx context.Context, op string, args map[string]interface{}, result *Result) (string, map[string]interface{}, error) {
	var traceArgs interface{}
	if len(args) > 0 {
		traceArgs = args
	}
	result.AddInvocationTrace(op, traceArgs, h.seq.Next())

	outcome, res, err := h.execute(ctx, op, args)
	if err != nil {
		return "", nil, err
	}

	var traceResult interface{}
	if len(res) > 0 {
		traceResult = res
	}
	result.AddCompletionTrace(outcome, traceResult, h.seq.Next())
	return outcome, res, nil
}

// execute dispatches one operation to the engine. An error means the
// scenario itself is malformed; engine failures surface as CaseError.
func (h *Harness) execute(ctx context.Context, op string, args map[string]interface{}) (string, map[string]interface{}, error) {
	if op != OpCreate && op != OpAdvanceTime && h.character == nil {
		return CaseRejected, map[string]interface{}{"reason": "no character"}, nil
	}
	c := h.character

	switch op {
	case OpCreate:
		name, err := argString(args, "name")
		if err != nil {
			return "", nil, err
		}
		avatar, err := argString(args, "avatar")
		if err != nil {
			return "", nil, err
		}
		description, err := argString(args, "description")
		if err != nil {
			return "", nil, err
		}
		created, err := h.engine.NewCharacter(ctx, name, avatar, description)
		if err != nil {
			return failed(err)
		}
		h.character = created
		return CaseOK, map[string]interface{}{"id": created.ID, "name": created.Name}, nil

	case OpAddSkill:
		in, err := inputFromArgs(args)
		if err != nil {
			return "", nil, err
		}
		s, err := h.engine.AddOrUpdateSkill(ctx, c, in)
		if err != nil {
			return failed(err)
		}
		if s == nil {
			return CaseRejected, nil, nil
		}
		return CaseOK, map[string]interface{}{"name": s.Name, "xp": s.XP, "level": s.Level}, nil

	case OpAdvanceTime:
		d, err := argDuration(args)
		if err != nil {
			return "", nil, err
		}
		now := h.clock.Advance(d)
		return CaseOK, map[string]interface{}{"now": now.UTC().Format(time.RFC3339)}, nil

	case OpSetSkills:
		list, err := inputsFromArgs(args, "skills")
		if err != nil {
			return "", nil, err
		}
		skills, err := h.engine.SetSkills(ctx, c, list)
		if err != nil {
			return failed(err)
		}
		return CaseOK, map[string]interface{}{"count": len(skills)}, nil

	case OpAwardAttribute:
		attr, err := argString(args, "attribute")
		if err != nil {
			return "", nil, err
		}
		xp, err := argInt(args, "xp")
		if err != nil {
			return "", nil, err
		}
		name, ok := model.ParseAttribute(attr)
		if !ok || xp == nil || *xp <= 0 {
			// the engine logs and ignores the award
			if err := h.engine.AwardAttributeXP(ctx, c, attr, derefInt(xp)); err != nil {
				return failed(err)
			}
			return CaseRejected, nil, nil
		}
		if err := h.engine.AwardAttributeXP(ctx, c, attr, *xp); err != nil {
			return failed(err)
		}
		a := c.Attribute(name)
		return CaseOK, map[string]interface{}{"attribute": string(name), "xp": a.XP, "level": a.Level}, nil

	case OpRecompute:
		if _, err := h.engine.ApplyProgressionRules(ctx, c); err != nil {
			return failed(err)
		}
		return CaseOK, map[string]interface{}{"level": c.Level}, nil

	case OpProgress:
		skill, err := argString(args, "skill")
		if err != nil {
			return "", nil, err
		}
		var changed *model.Skill
		if skill != "" {
			if changed = h.engine.SkillByName(c, skill); changed == nil {
				return CaseRejected, map[string]interface{}{"reason": "unknown skill"}, nil
			}
		}
		if _, err := h.engine.ApplyProgression(ctx, c, changed); err != nil {
			return failed(err)
		}
		return CaseOK, map[string]interface{}{"level": c.Level}, nil

	case OpAllSkills:
		skills, err := h.engine.AllSkills(ctx, c)
		if err != nil {
			return failed(err)
		}
		xp := make(map[string]interface{}, len(skills))
		for _, s := range skills {
			xp[s.Name] = s.XP
		}
		return CaseOK, map[string]interface{}{"count": len(skills), "xp": xp}, nil

	case OpClear:
		if err := h.engine.ClearSkills(ctx, c); err != nil {
			return failed(err)
		}
		return CaseOK, map[string]interface{}{"count": len(c.Skills)}, nil

	case OpIngest:
		text, err := argString(args, "text")
		if err != nil {
			return "", nil, err
		}
		raw, err := argString(args, "analysis")
		if err != nil {
			return "", nil, err
		}
		analysis, fellBack := h.intake.AnalyzeOrFallback(raw, text)
		if err := h.engine.Ingest(ctx, c, analysis); err != nil {
			return failed(err)
		}
		return CaseOK, map[string]interface{}{"fallback": fellBack, "skills": len(analysis.Skills)}, nil
	}

	return "", nil, fmt.Errorf("unknown operation %q", op)
}

func failed(err error) (string, map[string]interface{}, error) {
	return CaseError, map[string]interface{}{"error": err.Error()}, nil
}

// inputFromArgs builds a ledger input from step arguments. Absent xp stays
// nil so the engine default applies.
func inputFromArgs(args map[string]interface{}) (ledger.Input, error) {
	var in ledger.Input
	var err error
	if in.Name, err = argString(args, "name"); err != nil {
		return in, err
	}
	if in.XP, err = argInt(args, "xp"); err != nil {
		return in, err
	}
	if in.Description, err = argString(args, "description"); err != nil {
		return in, err
	}
	if in.Attributes, err = argStrings(args, "attributes"); err != nil {
		return in, err
	}
	if in.Parent, err = argString(args, "parent"); err != nil {
		return in, err
	}
	if in.Attribute, err = argString(args, "attribute"); err != nil {
		return in, err
	}
	if in.Emoji, err = argString(args, "emoji"); err != nil {
		return in, err
	}
	return in, nil
}

func inputsFromArgs(args map[string]interface{}, key string) ([]ledger.Input, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return []ledger.Input{}, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected a list, got %T", key, raw)
	}
	out := make([]ledger.Input, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a mapping, got %T", key, i, item)
		}
		in, err := inputFromArgs(m)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func argString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected a string, got %T", key, v)
	}
	return s, nil
}

// argInt accepts YAML integers and integral floats.
func argInt(args map[string]interface{}, key string) (*int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case int:
		return &n, nil
	case int64:
		i := int(n)
		return &i, nil
	case float64:
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("%s: expected an integer, got %v", key, n)
		}
		i := int(n)
		return &i, nil
	}
	return nil, fmt.Errorf("%s: expected an integer, got %T", key, v)
}

func argStrings(args map[string]interface{}, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected a list, got %T", key, v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a string, got %T", key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// argDuration reads "by" (a Go duration) plus optional "days" and "weeks".
func argDuration(args map[string]interface{}) (time.Duration, error) {
	var d time.Duration
	by, err := argString(args, "by")
	if err != nil {
		return 0, err
	}
	if by != "" {
		parsed, err := time.ParseDuration(by)
		if err != nil {
			return 0, fmt.Errorf("by: %w", err)
		}
		d += parsed
	}
	days, err := argInt(args, "days")
	if err != nil {
		return 0, err
	}
	weeks, err := argInt(args, "weeks")
	if err != nil {
		return 0, err
	}
	d += time.Duration(derefInt(days)) * 24 * time.Hour
	d += time.Duration(derefInt(weeks)) * 7 * 24 * time.Hour
	if d < 0 {
		return 0, fmt.Errorf("advance_time: the clock cannot move backwards")
	}
	return d, nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
