package graph

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nomadpath/internal/model"
)

func statNodes() []model.Node {
	out := make([]model.Node, 0, 8)
	for _, a := range model.AllAttributes() {
		out = append(out, model.Node{ID: model.NodeID(a), Type: model.NodeStat})
	}
	return out
}

func TestRebuild_EmptyKeepsStatPositions(t *testing.T) {
	existing := model.SkillGraph{
		Nodes: []model.Node{{ID: "strength", Type: model.NodeStat, Position: model.Position{X: model.Float(10), Y: model.Float(20)}}},
		Links: []model.Link{{Source: "skillA", Target: "strength", Value: 3}},
	}

	got := Rebuild(nil, existing)

	want := statNodes()
	want[0].Position = model.Position{X: model.Float(10), Y: model.Float(20)}
	if diff := cmp.Diff(want, got.Nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, got.Links)
}

func TestRebuild_SkillNodesAndLinks(t *testing.T) {
	skills := []*model.Skill{
		{Name: "Running", XP: 15, Level: 1, Emoji: "🏃", Attributes: []model.AttributeName{model.Agility, model.Energy}},
		{Name: "Chess", XP: 0, Attributes: []model.AttributeName{model.Intellect, model.Wisdom}},
	}

	got := Rebuild(skills, model.SkillGraph{})

	require.Len(t, got.Nodes, 10)
	assert.Equal(t, model.Node{ID: "Running", Type: model.NodeSkill, XP: 15, Level: 1, Emoji: "🏃"}, got.Nodes[8])
	assert.Equal(t, model.Node{ID: "Chess", Type: model.NodeSkill, Emoji: model.DefaultEmoji}, got.Nodes[9])

	want := []model.Link{
		{Source: "Running", Target: "agility", Value: 7.5},
		{Source: "Running", Target: "energy", Value: 7.5},
		{Source: "Chess", Target: "intellect", Value: 0.5},
		{Source: "Chess", Target: "wisdom", Value: 0.5},
	}
	if diff := cmp.Diff(want, got.Links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestRebuild_RetainsWeightsAndPrunes(t *testing.T) {
	skills := []*model.Skill{
		{Name: "Running", XP: 45, Level: 2, Emoji: "🏃", Attributes: []model.AttributeName{model.Agility, model.Energy}},
	}
	existing := model.SkillGraph{
		Nodes: []model.Node{
			{ID: "Running", Type: model.NodeSkill, XP: 15, Position: model.Position{X: model.Float(1), FY: model.Float(2)}},
			{ID: "Gone", Type: model.NodeSkill, Position: model.Position{X: model.Float(5)}},
		},
		Links: []model.Link{
			{Source: "Running", Target: "agility", Value: 7.5},
			{Source: "Running", Target: "agility", Value: 99},
			{Source: "Gone", Target: "energy", Value: 1},
			{Source: "Running", Target: "luck", Value: 1},
			{Source: "Running", Target: "strength", Value: 2},
		},
	}

	got := Rebuild(skills, existing)

	require.Len(t, got.Nodes, 9)
	running := got.Nodes[8]
	assert.Equal(t, 45, running.XP, "current xp wins over the saved node")
	assert.Equal(t, model.Position{X: model.Float(1), FY: model.Float(2)}, running.Position)
	_, ok := got.Node("Gone")
	assert.False(t, ok)

	want := []model.Link{
		{Source: "Running", Target: "agility", Value: 7.5},
		{Source: "Running", Target: "strength", Value: 2},
		{Source: "Running", Target: "energy", Value: 22.5},
	}
	if diff := cmp.Diff(want, got.Links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestRebuild_LegacyLinkEndpoints(t *testing.T) {
	var existing model.SkillGraph
	require.NoError(t, json.Unmarshal([]byte(`{
		"nodes": [{"id": {"id": "agility"}, "x": 3, "y": 4}],
		"links": [{"source": {"id": "Running"}, "target": {"id": "agility"}, "value": 4}]
	}`), &existing))
	skills := []*model.Skill{{Name: "Running", XP: 20, Attributes: []model.AttributeName{model.Agility}}}

	got := Rebuild(skills, existing)

	agility, ok := got.Node("agility")
	require.True(t, ok)
	assert.Equal(t, model.Position{X: model.Float(3), Y: model.Float(4)}, agility.Position)
	assert.Equal(t, []model.Link{{Source: "Running", Target: "agility", Value: 4}}, got.Links)
}

func TestRebuild_Pure(t *testing.T) {
	skills := []*model.Skill{{Name: "Running", XP: 3, Attributes: []model.AttributeName{model.Agility, model.Energy}}}
	existing := model.SkillGraph{
		Nodes: []model.Node{{ID: "agility", Type: model.NodeStat, Position: model.Position{X: model.Float(1)}}},
		Links: []model.Link{{Source: "Running", Target: "agility", Value: 9}},
	}
	before, err := json.Marshal(existing)
	require.NoError(t, err)

	first := Rebuild(skills, existing)
	second := Rebuild(skills, existing)

	after, err := json.Marshal(existing)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "existing graph is not modified")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("rebuild not deterministic:\n%s", diff)
	}

	*first.Nodes[0].X = 42
	assert.Equal(t, 1.0, *existing.Nodes[0].X, "positions are copied")
}

func TestRebuild_ExactlyOneStatNodePerAttribute(t *testing.T) {
	existing := model.SkillGraph{Nodes: append(statNodes(), statNodes()...)}
	got := Rebuild(nil, existing)
	assert.Len(t, got.Nodes, 8)
}

func TestLinkWeight(t *testing.T) {
	assert.Equal(t, 0.5, LinkWeight(0))
	assert.Equal(t, 0.5, LinkWeight(1))
	assert.Equal(t, 22.5, LinkWeight(45))
}
