package model

import "time"

// EventKind names what a progression event records.
type EventKind string

const (
	EventCharacterCreated EventKind = "character_created"
	EventSkillCreated     EventKind = "skill_created"
	EventSkillUpdated     EventKind = "skill_updated"
	EventSkillsSet        EventKind = "skills_set"
	EventSkillsDecayed    EventKind = "skills_decayed"
	EventSkillsCleared    EventKind = "skills_cleared"
	EventProgression      EventKind = "progression"
	EventRules            EventKind = "rules"
	EventAttributeAward   EventKind = "attribute_award"
	EventIngest           EventKind = "ingest"
)

// Event is one entry of a character's progression history. Seq is a
// logical sequence number, strictly increasing per event log; At is wall
// time and only informational.
type Event struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	CharacterID string    `json:"characterId"`
	Kind        EventKind `json:"kind"`
	Skill       string    `json:"skill,omitempty"`

	// XP is the raw XP applied by the operation (skill delta, attribute
	// award or XP lost to decay). Granted is attribute XP paid out by the
	// bridge during the pass.
	XP      int `json:"xp,omitempty"`
	Granted int `json:"granted,omitempty"`

	LevelUps map[AttributeName]int `json:"levelUps,omitempty"`
	Level    int                   `json:"level"`
	At       time.Time             `json:"at"`
}
