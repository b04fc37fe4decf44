package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/nomadpath/internal/model"
)

//go:embed schema.cue
var schemaSource string

//go:embed rules.cue
var defaultSource []byte

// XPBounds limits the XP a single candidate may carry.
type XPBounds struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// Clamp bounds n to [Min, Max].
func (b XPBounds) Clamp(n int) int {
	return min(max(n, b.Min), b.Max)
}

// FallbackSkill is the candidate produced when a keyword matches.
type FallbackSkill struct {
	Name        string
	Description string
	XP          int
	Attributes  []model.AttributeName
	Emoji       string
}

// FallbackRule maps keywords to a skill candidate.
type FallbackRule struct {
	Keywords []string
	Skill    FallbackSkill
}

// Rules is a validated rule set. It is immutable once built.
type Rules struct {
	XP                XPBounds
	DefaultAttributes []model.AttributeName
	IntakeAttributes  []model.AttributeName
	Fallback          []FallbackRule

	table map[string][]model.AttributeName
	names []string
}

// AttributesFor returns the fixed attribute set for a skill name, matched
// by folded name against the table and its aliases.
func (r *Rules) AttributesFor(name string) ([]model.AttributeName, bool) {
	if r == nil {
		return nil, false
	}
	attrs, ok := r.table[model.FoldName(name)]
	if !ok {
		return nil, false
	}
	return append([]model.AttributeName(nil), attrs...), true
}

// SkillNames returns the table's primary skill names, sorted.
func (r *Rules) SkillNames() []string {
	return append([]string(nil), r.names...)
}

// Defaults returns a copy of the attribute pair used when nothing else
// resolves.
func (r *Rules) Defaults() []model.AttributeName {
	return append([]model.AttributeName(nil), r.DefaultAttributes...)
}

var (
	defaultOnce  sync.Once
	defaultRules *Rules
)

// Default returns the built-in rule set. It panics if the embedded rules do
// not compile, which the package tests rule out.
func Default() *Rules {
	defaultOnce.Do(func() {
		r, err := Parse("rules.cue", defaultSource)
		if err != nil {
			panic(fmt.Sprintf("rules: embedded rules invalid: %v", err))
		}
		defaultRules = r
	})
	return defaultRules
}

// Load reads and validates a rules file. An empty path returns Default().
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	r, err := Parse(path, data)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return r, nil
}

type document struct {
	XP                XPBounds                 `json:"xp"`
	DefaultAttributes []string                 `json:"defaultAttributes"`
	IntakeAttributes  []string                 `json:"intakeAttributes"`
	Skills            map[string]skillDocument `json:"skills"`
	Fallback          []fallbackDocument       `json:"fallback"`
}

type skillDocument struct {
	Attributes []string `json:"attributes"`
	Aliases    []string `json:"aliases"`
}

type fallbackDocument struct {
	Keywords []string `json:"keywords"`
	Skill    struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		XP          int      `json:"xp"`
		Attributes  []string `json:"attributes"`
		Emoji       string   `json:"emoji"`
	} `json:"skill"`
}

// Parse compiles CUE source against the rules schema and validates it.
// filename is used for error positions only.
func Parse(filename string, src []byte) (*Rules, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Rules")).Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var doc document
	if err := v.Decode(&doc); err != nil {
		return nil, formatCUEError(err)
	}
	return build(v, doc)
}

func build(v cue.Value, doc document) (*Rules, error) {
	b := doc.XP
	if b.Min < 1 || b.Max < b.Min {
		return nil, &CompileError{
			Field:   "xp",
			Message: fmt.Sprintf("bounds [%d, %d] invalid", b.Min, b.Max),
			Pos:     v.LookupPath(cue.ParsePath("xp")).Pos(),
		}
	}
	if b.Default < b.Min || b.Default > b.Max {
		return nil, &CompileError{
			Field:   "xp.default",
			Message: fmt.Sprintf("%d outside [%d, %d]", b.Default, b.Min, b.Max),
			Pos:     v.LookupPath(cue.ParsePath("xp.default")).Pos(),
		}
	}

	r := &Rules{
		XP:    b,
		table: make(map[string][]model.AttributeName),
	}

	var err error
	if r.DefaultAttributes, err = attributeList(v, "defaultAttributes", cue.ParsePath("defaultAttributes"), doc.DefaultAttributes, 1); err != nil {
		return nil, err
	}
	if r.IntakeAttributes, err = attributeList(v, "intakeAttributes", cue.ParsePath("intakeAttributes"), doc.IntakeAttributes, 2); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc.Skills))
	for name := range doc.Skills {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := doc.Skills[name]
		path := cue.MakePath(cue.Str("skills"), cue.Str(name))
		field := "skills." + name
		attrs, err := attributeList(v, field+".attributes", cue.MakePath(cue.Str("skills"), cue.Str(name), cue.Str("attributes")), entry.Attributes, 2)
		if err != nil {
			return nil, err
		}
		for _, label := range append([]string{name}, entry.Aliases...) {
			key := model.FoldName(label)
			if key == "" {
				return nil, &CompileError{Field: field, Message: "empty skill name or alias", Pos: v.LookupPath(path).Pos()}
			}
			if _, dup := r.table[key]; dup {
				return nil, &CompileError{
					Field:   field,
					Message: fmt.Sprintf("%q already defined", label),
					Pos:     v.LookupPath(path).Pos(),
				}
			}
			r.table[key] = attrs
		}
	}
	r.names = names

	for i, fb := range doc.Fallback {
		field := fmt.Sprintf("fallback[%d]", i)
		attrs, err := attributeList(v, field+".skill.attributes",
			cue.MakePath(cue.Str("fallback"), cue.Index(i), cue.Str("skill"), cue.Str("attributes")), fb.Skill.Attributes, 2)
		if err != nil {
			return nil, err
		}
		keywords := make([]string, 0, len(fb.Keywords))
		for _, kw := range fb.Keywords {
			if k := model.FoldName(kw); k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) == 0 {
			return nil, &CompileError{Field: field + ".keywords", Message: "at least one non-empty keyword is required"}
		}
		r.Fallback = append(r.Fallback, FallbackRule{
			Keywords: keywords,
			Skill: FallbackSkill{
				Name:        fb.Skill.Name,
				Description: fb.Skill.Description,
				XP:          b.Clamp(fb.Skill.XP),
				Attributes:  attrs,
				Emoji:       fb.Skill.Emoji,
			},
		})
	}

	return r, nil
}

// attributeList resolves labels, rejecting duplicates and lists shorter
// than minLen or longer than model.MaxSkillAttributes.
func attributeList(v cue.Value, field string, path cue.Path, labels []string, minLen int) ([]model.AttributeName, error) {
	attrs := model.ResolveAttributes(labels, 0)
	pos := v.LookupPath(path).Pos()
	if len(attrs) != len(labels) {
		return nil, &CompileError{Field: field, Message: "duplicate or unknown attribute", Pos: pos}
	}
	if len(attrs) < minLen || len(attrs) > model.MaxSkillAttributes {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("need %d to %d attributes, got %d", minLen, model.MaxSkillAttributes, len(attrs)),
			Pos:     pos,
		}
	}
	return attrs, nil
}

// CompileError reports an invalid rules file.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
