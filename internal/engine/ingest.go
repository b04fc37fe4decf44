package engine

import (
	"context"
	"strings"

	"github.com/roach88/nomadpath/internal/bridge"
	"github.com/roach88/nomadpath/internal/graph"
	"github.com/roach88/nomadpath/internal/intake"
	"github.com/roach88/nomadpath/internal/model"
)

// Ingest applies a validated diary analysis: every candidate is merged as
// AddOrUpdateSkill would, skills that leveled up are paid through the
// bridge, the chronicle line is appended, and the character is saved once.
func (e *Engine) Ingest(ctx context.Context, c *model.Character, a intake.Analysis) error {
	if c == nil {
		e.reject(errNoCharacter("ingest"))
		return nil
	}
	e.repair(c)

	ev := model.Event{Kind: model.EventIngest}
	leveled := false
	for _, cand := range a.Skills {
		res, ok := e.upsert(c, cand.Input())
		if !ok {
			continue
		}
		ev.XP += cand.XP
		if res.LeveledUp() {
			leveled = true
			e.logger.Info("skill level up", "skill", res.Skill.Name, "from", res.PrevLevel, "to", res.Skill.Level)
			ev.Granted += bridge.Award(c, res.Skill)
		}
	}
	if leveled {
		c.SkillGraph = graph.Rebuild(c.Skills, c.SkillGraph)
		ev.LevelUps = e.applyRules(c)
	}
	if line := strings.TrimSpace(a.Chronicle); line != "" {
		c.Chronicle = append(c.Chronicle, line)
	}

	if err := e.save(ctx, c); err != nil {
		return err
	}
	e.logger.Info("entry ingested", "skills", len(a.Skills))
	e.record(ctx, c, ev)
	return nil
}
