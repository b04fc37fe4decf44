// Package graph synthesizes the skill graph: one stat node per attribute,
// one skill node per skill and a weighted link for every attribute a skill
// feeds. Layout belongs to the presentation layer and is carried across
// rebuilds untouched.
package graph

import (
	"github.com/roach88/nomadpath/internal/model"
)

// LinkWeight is the weight given to a freshly created skill→attribute link.
func LinkWeight(xp int) float64 {
	return float64(max(xp, 1)) / 2
}

// Rebuild derives a graph from skills, reusing positions and retained links
// from existing. It does not modify its inputs.
//
// Existing links survive when their source is a current skill and their
// target is an attribute; their weight is left as it was. Links a skill
// needs but the existing graph lacks are appended with LinkWeight.
func Rebuild(skills []*model.Skill, existing model.SkillGraph) model.SkillGraph {
	positions := make(map[model.NodeID]model.Position, len(existing.Nodes))
	for _, n := range existing.Nodes {
		if _, seen := positions[n.ID]; !seen {
			positions[n.ID] = copyPosition(n.Position)
		}
	}

	attrs := model.AllAttributes()
	nodes := make([]model.Node, 0, len(attrs)+len(skills))
	isAttr := make(map[model.NodeID]struct{}, len(attrs))
	for _, a := range attrs {
		id := model.NodeID(a)
		isAttr[id] = struct{}{}
		nodes = append(nodes, model.Node{ID: id, Type: model.NodeStat, Position: positions[id]})
	}

	isSkill := make(map[model.NodeID]struct{}, len(skills))
	for _, s := range skills {
		if s == nil || s.Name == "" {
			continue
		}
		id := model.NodeID(s.Name)
		if _, dup := isSkill[id]; dup {
			continue
		}
		isSkill[id] = struct{}{}
		emoji := s.Emoji
		if emoji == "" {
			emoji = model.DefaultEmoji
		}
		nodes = append(nodes, model.Node{
			ID:       id,
			Type:     model.NodeSkill,
			XP:       s.XP,
			Level:    s.Level,
			Emoji:    emoji,
			Position: positions[id],
		})
	}

	type edge struct{ source, target model.NodeID }
	present := make(map[edge]struct{}, len(existing.Links))
	links := make([]model.Link, 0, len(existing.Links))
	for _, l := range existing.Links {
		if _, ok := isSkill[l.Source]; !ok {
			continue
		}
		if _, ok := isAttr[l.Target]; !ok {
			continue
		}
		e := edge{l.Source, l.Target}
		if _, dup := present[e]; dup {
			continue
		}
		present[e] = struct{}{}
		links = append(links, l)
	}

	for _, s := range skills {
		if s == nil || s.Name == "" {
			continue
		}
		for _, a := range s.Attributes {
			e := edge{model.NodeID(s.Name), model.NodeID(a)}
			if _, ok := isAttr[e.target]; !ok {
				continue
			}
			if _, dup := present[e]; dup {
				continue
			}
			present[e] = struct{}{}
			links = append(links, model.Link{Source: e.source, Target: e.target, Value: LinkWeight(s.XP)})
		}
	}

	return model.SkillGraph{Nodes: nodes, Links: links}
}

func copyPosition(p model.Position) model.Position {
	dup := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		return model.Float(*v)
	}
	return model.Position{X: dup(p.X), Y: dup(p.Y), FX: dup(p.FX), FY: dup(p.FY)}
}
