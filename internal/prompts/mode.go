// Package prompts holds the instruction text sent to the vision model for
// each analysis mode.
package prompts

import (
	"encoding/json"
	"strings"
)

// Mode selects which analysis prompt, and which response contract, applies.
type Mode string

const (
	ModeGeneral Mode = "general"
	ModeText    Mode = "text"
	ModeHazard  Mode = "hazard"
	// ModeCustom marks analyses run with a caller-supplied prompt.
	ModeCustom Mode = "custom"
)

var modes = []Mode{ModeGeneral, ModeText, ModeHazard}

var aliases = map[string]Mode{
	"hazards": ModeHazard,
	"read":    ModeText,
}

// Modes returns the catalog modes in display order. ModeCustom is excluded
// because it has no catalog prompt.
func Modes() []Mode {
	return append([]Mode(nil), modes...)
}

// ParseMode resolves a request value to a catalog mode. Matching ignores
// case and surrounding whitespace; anything unrecognized is ModeGeneral.
func ParseMode(s string) Mode {
	key := strings.ToLower(strings.TrimSpace(s))
	if m, ok := aliases[key]; ok {
		return m
	}
	for _, m := range modes {
		if string(m) == key {
			return m
		}
	}
	return ModeGeneral
}

// Structured reports whether the mode's response follows a parseable layout.
func (m Mode) Structured() bool {
	return m == ModeHazard
}

// UnmarshalJSON decodes through ParseMode, so it never fails on a string.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ParseMode(raw)
	return nil
}
