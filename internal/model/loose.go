package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldName returns the lookup key for a skill or attribute name: NFC
// normalized, trimmed and Unicode case-folded. Two names denote the same
// skill iff their folded keys are equal.
func FoldName(name string) string {
	trimmed := strings.TrimSpace(norm.NFC.String(name))
	if trimmed == "" {
		return ""
	}
	return cases.Fold().String(trimmed)
}

// LooseInt reads an integer from a JSON value the way a forgiving client
// would: numbers are truncated toward zero, numeric strings are parsed from
// their leading digits. The bool result is false when nothing usable was
// found, in which case the int is 0.
func LooseInt(raw []byte) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return leadingInt(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return clampInt(float64(i)), true
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return clampInt(math.Trunc(f)), true
}

// LooseString returns the JSON string value, or "" for anything else.
func LooseString(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// LooseStrings returns the string elements of a JSON array. ok is false when
// raw is not an array; non-string elements are skipped.
func LooseStrings(raw []byte) (out []string, ok bool) {
	var items []json.RawMessage
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out = make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			out = append(out, LooseString(item))
		}
	}
	return out, true
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// Out of range: saturate on the sign.
		if s[0] == '-' {
			return math.MinInt32, true
		}
		return math.MaxInt32, true
	}
	return clampInt(float64(n)), true
}

func clampInt(f float64) int {
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	default:
		return int(f)
	}
}

// CleanName returns name NFC normalized and trimmed, the form stored on skills.
func CleanName(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}
