package ledger

import (
	"time"

	"github.com/roach88/nomadpath/internal/levels"
	"github.com/roach88/nomadpath/internal/model"
)

// DefaultDecayInterval is the idle time that costs a skill one XP.
const DefaultDecayInterval = 7 * 24 * time.Hour

// Decayed records XP a skill lost in one decay pass.
type Decayed struct {
	Skill string
	Lost  int
}

// Decay charges every skill 1 XP per whole interval elapsed since LastUsed,
// flooring XP at zero and recomputing levels. Intervals already charged
// since LastUsed are tracked in DecayedWeeks, so repeating the pass within
// the same interval charges nothing more. LastUsed is not touched.
func Decay(skills []*model.Skill, now time.Time, interval time.Duration) []Decayed {
	if interval <= 0 {
		interval = DefaultDecayInterval
	}
	var out []Decayed
	for _, s := range skills {
		if s == nil {
			continue
		}
		elapsed := 0
		if !s.LastUsed.IsZero() && now.After(s.LastUsed) {
			elapsed = int(now.Sub(s.LastUsed) / interval)
		}
		if charge := elapsed - s.DecayedWeeks; charge > 0 {
			before := s.XP
			s.XP = max(s.XP-charge, 0)
			s.DecayedWeeks = elapsed
			if lost := before - s.XP; lost > 0 {
				out = append(out, Decayed{Skill: s.Name, Lost: lost})
			}
		}
		s.Level = levels.FromXP(s.XP)
	}
	return out
}
