// Package intake validates skill candidates produced by the external
// text-understanding service before they reach the ledger.
//
// Nothing the service returns is trusted: every field is clamped or
// defaulted. Only output with no usable structure at all is rejected, and
// the caller can then fall back to keyword matching.
package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/nomadpath/internal/ledger"
	"github.com/roach88/nomadpath/internal/model"
	"github.com/roach88/nomadpath/internal/rules"
)

// Defaults for missing candidate fields.
const (
	UnknownSkill  = "Unknown skill"
	NoDescription = "No description"
)

var (
	// ErrNoArray is returned when no JSON array can be found in the output.
	ErrNoArray = errors.New("no JSON array found")
	// ErrNoObject is returned when no JSON object can be found in the output.
	ErrNoObject = errors.New("no JSON object found")
	// ErrSkillsNotArray is returned when an entry's skills field is not an array.
	ErrSkillsNotArray = errors.New("skills is not an array")
)

// Candidate is a validated skill mention.
type Candidate struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	XP          int                   `json:"xp"`
	Attributes  []model.AttributeName `json:"attributes"`
	Emoji       string                `json:"emoji"`
}

// Input converts the candidate into a ledger mention.
func (c Candidate) Input() ledger.Input {
	labels := make([]string, len(c.Attributes))
	for i, a := range c.Attributes {
		labels[i] = string(a)
	}
	xp := c.XP
	return ledger.Input{
		Name:        c.Name,
		XP:          &xp,
		Description: c.Description,
		Attributes:  labels,
		Emoji:       c.Emoji,
	}
}

// Analysis is a validated diary analysis: skills plus a chronicle line.
type Analysis struct {
	Skills    []Candidate `json:"skills"`
	Chronicle string      `json:"newChronicle"`
}

// Validator clamps service output using a rule set.
type Validator struct {
	rules *rules.Rules
}

// New returns a Validator. A nil rule set means rules.Default().
func New(r *rules.Rules) *Validator {
	if r == nil {
		r = rules.Default()
	}
	return &Validator{rules: r}
}

// ParseCandidates extracts the first JSON array from raw, which may carry
// surrounding prose or code fences, and validates each element.
func (v *Validator) ParseCandidates(raw string) ([]Candidate, error) {
	var items []json.RawMessage
	if !firstJSON(raw, '[', &items) {
		return nil, fmt.Errorf("parse candidates: %w", ErrNoArray)
	}
	return v.validateAll(items), nil
}

// ParseEntry decodes a diary analysis {skills, newChronicle} from raw.
// sourceText becomes the chronicle line when the service gave none.
func (v *Validator) ParseEntry(raw, sourceText string) (Analysis, error) {
	var doc struct {
		Skills       json.RawMessage `json:"skills"`
		NewChronicle json.RawMessage `json:"newChronicle"`
	}
	if !firstJSON(raw, '{', &doc) {
		return Analysis{}, fmt.Errorf("parse entry: %w", ErrNoObject)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(doc.Skills, &items); err != nil || items == nil {
		return Analysis{}, fmt.Errorf("parse entry: %w", ErrSkillsNotArray)
	}

	chronicle := sourceText
	if s := bytes.TrimSpace(doc.NewChronicle); len(s) > 0 && s[0] == '"' {
		chronicle = strings.TrimSpace(model.LooseString(s))
	}
	return Analysis{Skills: v.validateAll(items), Chronicle: chronicle}, nil
}

// AnalyzeOrFallback parses raw as a diary analysis and falls back to
// keyword matching over text when that fails. fellBack reports which path
// produced the result.
func (v *Validator) AnalyzeOrFallback(raw, text string) (a Analysis, fellBack bool) {
	a, err := v.ParseEntry(raw, text)
	if err == nil {
		return a, false
	}
	return Analysis{Skills: v.Fallback(text), Chronicle: text}, true
}

func (v *Validator) validateAll(items []json.RawMessage) []Candidate {
	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		out = append(out, v.Validate(item))
	}
	return out
}

// Validate clamps one raw candidate. Any JSON value is accepted; fields that
// are missing or of the wrong type take their defaults.
func (v *Validator) Validate(raw json.RawMessage) Candidate {
	var doc struct {
		Name        json.RawMessage `json:"name"`
		Description json.RawMessage `json:"description"`
		XP          json.RawMessage `json:"xp"`
		Attributes  json.RawMessage `json:"attributes"`
		Emoji       json.RawMessage `json:"emoji"`
	}
	// Non-objects leave every field empty.
	_ = json.Unmarshal(raw, &doc)

	c := Candidate{
		Name:        model.CleanName(model.LooseString(doc.Name)),
		Description: strings.TrimSpace(model.LooseString(doc.Description)),
		Emoji:       strings.TrimSpace(model.LooseString(doc.Emoji)),
	}
	if c.Name == "" {
		c.Name = UnknownSkill
	}
	if c.Description == "" {
		c.Description = NoDescription
	}
	if c.Emoji == "" {
		c.Emoji = model.DefaultEmoji
	}

	xp, ok := model.LooseInt(doc.XP)
	if !ok || xp == 0 {
		xp = v.rules.XP.Default
	}
	c.XP = v.rules.XP.Clamp(xp)

	labels, ok := model.LooseStrings(doc.Attributes)
	if ok && len(labels) >= 2 && len(labels) <= model.MaxSkillAttributes {
		c.Attributes = model.ResolveAttributes(labels, model.MaxSkillAttributes)
	}
	if len(c.Attributes) < 2 {
		c.Attributes = append([]model.AttributeName(nil), v.rules.IntakeAttributes...)
	}
	return c
}

// firstJSON decodes the first value in raw that starts with open and
// decodes cleanly into dst.
func firstJSON(raw string, open byte, dst any) bool {
	for i := 0; i < len(raw); i++ {
		if raw[i] != open {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(raw[i:]))
		if err := dec.Decode(dst); err == nil {
			return true
		}
	}
	return false
}
