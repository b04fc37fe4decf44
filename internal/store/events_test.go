package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nomadpath/internal/model"
)

func TestAppendEvent_ReadBackInSeqOrder(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveCharacter(ctx, createTestCharacter("a", "Aru")))

	progression := createTestEvent("e3", "a", 3, model.EventProgression)
	progression.Skill = "Running"
	progression.XP = 10
	progression.Granted = 4
	progression.LevelUps = map[model.AttributeName]int{model.Agility: 1, model.Energy: 1}
	progression.Level = 1
	progression.At = testEpoch.Add(time.Hour)

	// inserted out of order on purpose
	require.NoError(t, s.AppendEvent(ctx, progression))
	require.NoError(t, s.AppendEvent(ctx, createTestEvent("e1", "a", 1, model.EventCharacterCreated)))
	require.NoError(t, s.AppendEvent(ctx, createTestEvent("e2", "a", 2, model.EventSkillCreated)))

	events, err := s.ReadEvents(ctx, "a")
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, []int64{1, 2, 3}, []int64{events[0].Seq, events[1].Seq, events[2].Seq})
	assert.Equal(t, model.EventCharacterCreated, events[0].Kind)
	assert.Nil(t, events[0].LevelUps)

	got := events[2]
	assert.Equal(t, "e3", got.ID)
	assert.Equal(t, "a", got.CharacterID)
	assert.Equal(t, "Running", got.Skill)
	assert.Equal(t, 10, got.XP)
	assert.Equal(t, 4, got.Granted)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, progression.LevelUps, got.LevelUps)
	assert.True(t, got.At.Equal(progression.At))
}

func TestAppendEvent_DuplicateSeqRejected(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveCharacter(ctx, createTestCharacter("a", "Aru")))

	require.NoError(t, s.AppendEvent(ctx, createTestEvent("e1", "a", 1, model.EventRules)))
	err := s.AppendEvent(ctx, createTestEvent("e2", "a", 1, model.EventRules))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append event e2")
}

func TestAppendEvent_UnknownCharacterRejected(t *testing.T) {
	s, _ := createTestStore(t)

	err := s.AppendEvent(context.Background(), createTestEvent("e1", "ghost", 1, model.EventRules))
	assert.Error(t, err, "foreign key must hold")
}

func TestReadEvents_Empty(t *testing.T) {
	s, _ := createTestStore(t)

	events, err := s.ReadEvents(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestReadEvents_FiltersByCharacter(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveCharacter(ctx, createTestCharacter("a", "Aru")))
	require.NoError(t, s.SaveCharacter(ctx, createTestCharacter("b", "Bek")))

	require.NoError(t, s.AppendEvent(ctx, createTestEvent("e1", "a", 1, model.EventRules)))
	require.NoError(t, s.AppendEvent(ctx, createTestEvent("e2", "b", 2, model.EventRules)))
	require.NoError(t, s.AppendEvent(ctx, createTestEvent("e3", "a", 3, model.EventRules)))

	events, err := s.ReadEvents(ctx, "a")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, "e3", events[1].ID)
}

func TestLastEventSeq(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastEventSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.SaveCharacter(ctx, createTestCharacter("a", "Aru")))
	require.NoError(t, s.AppendEvent(ctx, createTestEvent("e7", "a", 7, model.EventRules)))
	require.NoError(t, s.AppendEvent(ctx, createTestEvent("e4", "a", 4, model.EventRules)))

	seq, err = s.LastEventSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}
