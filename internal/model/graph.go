package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeID identifies a graph node: an attribute name for stat nodes, a skill
// name for skill nodes.
type NodeID string

// UnmarshalJSON accepts a bare string or an object carrying an id (itself
// a string or a nested object), which is how force-layout libraries
// rewrite link endpoints in place.
func (id *NodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NodeID(s)
		return nil
	case data[0] == '{':
		var ref struct {
			ID NodeID `json:"id"`
		}
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		*id = ref.ID
		return nil
	default:
		return fmt.Errorf("node id must be a string or an object with id, got %s", data)
	}
}

// NodeType distinguishes attribute nodes from skill nodes.
type NodeType string

const (
	NodeStat  NodeType = "stat"
	NodeSkill NodeType = "skill"
)

// Position is presentation-owned layout data. The engine carries it across
// rebuilds and never computes it.
type Position struct {
	X  *float64 `json:"x,omitempty"`
	Y  *float64 `json:"y,omitempty"`
	FX *float64 `json:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty"`
}

// IsZero reports whether no coordinate is set.
func (p Position) IsZero() bool {
	return p.X == nil && p.Y == nil && p.FX == nil && p.FY == nil
}

// Node is one vertex of the skill graph.
type Node struct {
	ID    NodeID   `json:"id"`
	Type  NodeType `json:"type"`
	XP    int      `json:"xp,omitempty"`
	Level int      `json:"level,omitempty"`
	Emoji string   `json:"emoji,omitempty"`
	Position
}

// UnmarshalJSON accepts a bare identity string in place of a node object.
func (n *Node) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id NodeID
		if err := id.UnmarshalJSON(data); err != nil {
			return err
		}
		*n = Node{ID: id}
		return nil
	}
	type plain Node
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = Node(p)
	return nil
}

// Link connects a skill node to an attribute node it feeds.
type Link struct {
	Source NodeID  `json:"source"`
	Target NodeID  `json:"target"`
	Value  float64 `json:"value"`
}

// SkillGraph is the visualization projection of skills and attributes.
type SkillGraph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// UnmarshalJSON tolerates a missing or malformed graph by decoding node
// and link lists element by element and dropping what cannot be read.
func (g *SkillGraph) UnmarshalJSON(data []byte) error {
	var raw struct {
		Nodes []json.RawMessage `json:"nodes"`
		Links []json.RawMessage `json:"links"`
	}
	out := SkillGraph{Nodes: []Node{}, Links: []Link{}}
	if err := json.Unmarshal(data, &raw); err != nil {
		*g = out
		return nil
	}
	for _, item := range raw.Nodes {
		var n Node
		if err := json.Unmarshal(item, &n); err == nil && n.ID != "" {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, item := range raw.Links {
		var l Link
		if err := json.Unmarshal(item, &l); err == nil && l.Source != "" && l.Target != "" {
			out.Links = append(out.Links, l)
		}
	}
	*g = out
	return nil
}

// Node returns the node with the given identity, if present.
func (g SkillGraph) Node(id NodeID) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasLink reports whether a link source→target exists.
func (g SkillGraph) HasLink(source, target NodeID) bool {
	for _, l := range g.Links {
		if l.Source == source && l.Target == target {
			return true
		}
	}
	return false
}

// Float is a small helper for position literals.
func Float(v float64) *float64 {
	return &v
}
