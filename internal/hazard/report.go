// Package hazard parses the structured hazard report the vision model is
// asked to produce and renders it back to its canonical text layout.
package hazard

import (
	"strconv"
	"strings"
)

const (
	MinLevel = 0
	MaxLevel = 4
	// UnknownLevel marks a sentinel report built when the model output could
	// not be parsed. Parse never returns it.
	UnknownLevel = -1

	UnknownAction = "Proceed with caution"
	unknownSight  = "I couldn't assess hazards in this image."
)

// Report is one parsed hazard assessment.
type Report struct {
	Level       int    `json:"level"`
	WhatISee    string `json:"what_i_see"`
	WhereItIs   string `json:"where_it_is"`
	WhyItsRisky string `json:"why_its_risky"`
	WhatToDo    string `json:"what_to_do"`
}

// Unknown builds the sentinel report returned when parsing fails, carrying
// the model's raw text so the caller still has something to speak.
func Unknown(raw string) Report {
	sight := strings.TrimSpace(raw)
	if sight == "" {
		sight = unknownSight
	}
	return Report{
		Level:    UnknownLevel,
		WhatISee: sight,
		WhatToDo: UnknownAction,
	}
}

// Known reports whether the level came from a successful parse.
func (r Report) Known() bool {
	return r.Level >= MinLevel && r.Level <= MaxLevel
}

// Severity names the level.
func (r Report) Severity() string {
	switch r.Level {
	case 0:
		return "none"
	case 1:
		return "low"
	case 2:
		return "medium"
	case 3:
		return "high"
	case 4:
		return "critical"
	default:
		return "unknown"
	}
}

// LimitAction returns a copy whose WhatToDo keeps at most n words.
// Non-positive n leaves the action unchanged.
func (r Report) LimitAction(n int) Report {
	if n <= 0 {
		return r
	}
	words := strings.Fields(r.WhatToDo)
	if len(words) > n {
		r.WhatToDo = strings.Join(words[:n], " ")
	}
	return r
}

// Text renders the report in the canonical section layout. Every section
// header is always present; Parse(r.Text()) reproduces a known report.
func (r Report) Text() string {
	level := "UNKNOWN"
	if r.Known() {
		level = strconv.Itoa(r.Level)
	}

	var b strings.Builder
	b.WriteString(levelKey + ": " + level)
	for _, s := range sections {
		b.WriteString("\n\n")
		b.WriteString(s.header + ":\n")
		b.WriteString(*s.field(&r))
	}
	return b.String()
}
