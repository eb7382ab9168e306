package hazard_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/JaimeStill/hand2voice/internal/hazard"
)

const canonical = "HAZARD_LEVEL: 3\n\nWHAT I SEE:\nScissors on the desk\n\nWHERE IT IS:\non your left\n\nWHY IT'S RISKY:\nSharp edge\n\nWHAT TO DO:\nAvoid touching"

var scissors = hazard.Report{
	Level:       3,
	WhatISee:    "Scissors on the desk",
	WhereItIs:   "on your left",
	WhyItsRisky: "Sharp edge",
	WhatToDo:    "Avoid touching",
}

func mustParse(t *testing.T, text string) hazard.Report {
	t.Helper()
	r, err := hazard.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return r
}

func TestParseCanonical(t *testing.T) {
	if got := mustParse(t, canonical); got != scissors {
		t.Errorf("got %+v, want %+v", got, scissors)
	}
}

func TestParseTolerances(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			"reordered sections",
			"WHAT TO DO:\nAvoid touching\n\nWHY IT'S RISKY:\nSharp edge\n\nHAZARD_LEVEL: 3\n\nWHERE IT IS:\non your left\n\nWHAT I SEE:\nScissors on the desk",
		},
		{
			"code fence",
			"```\n" + canonical + "\n```",
		},
		{
			"fence with language tag",
			"```text\n" + canonical + "\n```",
		},
		{
			"markdown emphasis",
			"**HAZARD_LEVEL:** 3\n\n**WHAT I SEE:**\nScissors on the desk\n\n**WHERE IT IS**:\non your left\n\n## WHY IT'S RISKY\nSharp edge\n\n*What to do:*\nAvoid touching",
		},
		{
			"lowercase and loose spacing",
			"  hazard_level :   3  \nwhat i see:\nScissors on the desk\nwhere it is:\non your left\nwhy it's risky:\nSharp edge\nwhat to do:\nAvoid touching\n",
		},
		{
			"body on header line",
			"HAZARD_LEVEL: 3\nWHAT I SEE: Scissors on the desk\nWHERE IT IS: on your left\nWHY IT'S RISKY: Sharp edge\nWHAT TO DO: Avoid touching",
		},
		{
			"curly apostrophe and missing colon",
			"HAZARD_LEVEL: 3\n\nWHAT I SEE\nScissors on the desk\n\nWHERE IT IS\non your left\n\nWHY IT’S RISKY\nSharp edge\n\nWHAT TO DO\nAvoid touching",
		},
		{
			"apostrophe dropped",
			"HAZARD_LEVEL: 3\nWHAT I SEE:\nScissors on the desk\nWHERE IT IS:\non your left\nWHY ITS RISKY:\nSharp edge\nWHAT TO DO:\nAvoid touching",
		},
		{
			"preamble and CRLF",
			"Here is my assessment.\r\n\r\nHAZARD_LEVEL: 3\r\n\r\nWHAT I SEE:\r\nScissors on the desk\r\n\r\nWHERE IT IS:\r\non your left\r\n\r\nWHY IT'S RISKY:\r\nSharp edge\r\n\r\nWHAT TO DO:\r\nAvoid touching\r\n",
		},
		{
			"level with trailing text",
			"HAZARD_LEVEL: 3 (high risk)\n\nWHAT I SEE:\nScissors on the desk\n\nWHERE IT IS:\non your left\n\nWHY IT'S RISKY:\nSharp edge\n\nWHAT TO DO:\nAvoid touching",
		},
		{
			"numbered headers",
			"1. HAZARD_LEVEL: 3\n\n2. WHAT I SEE:\nScissors on the desk\n\n3) WHERE IT IS:\non your left\n\n4. **WHY IT'S RISKY:**\nSharp edge\n\n5. WHAT TO DO:\nAvoid touching",
		},
		{
			"bulleted headers",
			"- HAZARD_LEVEL: 3\n- WHAT I SEE: Scissors on the desk\n- WHERE IT IS: on your left\n• WHY IT'S RISKY: Sharp edge\n- WHAT TO DO: Avoid touching",
		},
		{
			"fence after preamble",
			"Here is my assessment:\n```text\n" + canonical + "\n```",
		},
		{
			"level without colon",
			"Hazard Level 3\n\nWHAT I SEE:\nScissors on the desk\n\nWHERE IT IS:\non your left\n\nWHY IT'S RISKY:\nSharp edge\n\nWHAT TO DO:\nAvoid touching",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParse(t, tt.text); got != scissors {
				t.Errorf("got %+v, want %+v", got, scissors)
			}
		})
	}
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no level line", "WHAT I SEE:\nScissors\n\nWHAT TO DO:\nAvoid touching"},
		{"level out of range", "HAZARD_LEVEL: 7\nWHAT I SEE:\nFire"},
		{"negative level", "HAZARD_LEVEL: -1\nWHAT I SEE:\nFire"},
		{"no integer", "HAZARD_LEVEL: high\nWHAT I SEE:\nFire"},
		{"decimal level", "HAZARD_LEVEL: 2.5\nWHAT I SEE:\nCable"},
		{"free-form prose", "There are scissors on the desk to your left. Be careful."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := hazard.Parse(tt.text)
			if !errors.Is(err, hazard.ErrMalformedReport) {
				t.Fatalf("err = %v, want ErrMalformedReport", err)
			}
			if r.Level != 0 || r != (hazard.Report{}) {
				t.Errorf("failed parse returned %+v, want zero report", r)
			}
		})
	}
}

func TestParseNeverDefaultsToZero(t *testing.T) {
	_, err := hazard.Parse("WHAT I SEE:\nNo hazards visible\n\nWHAT TO DO:\nSafe to proceed")
	if err == nil {
		t.Fatal("missing level must fail, not default to 0")
	}
}

func TestParseMissingSectionsAreEmpty(t *testing.T) {
	got := mustParse(t, "HAZARD_LEVEL: 0\n\nWHAT I SEE:\nNo hazards visible")

	want := hazard.Report{Level: 0, WhatISee: "No hazards visible"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseFirstOccurrenceWins(t *testing.T) {
	text := "HAZARD_LEVEL: 2\nHAZARD_LEVEL: 4\nWHAT I SEE:\nA cable\nWHAT I SEE:\nA second look\nWHERE IT IS:\nacross the doorway"

	got := mustParse(t, text)
	if got.Level != 2 {
		t.Errorf("level = %d, want first value 2", got.Level)
	}
	if got.WhatISee != "A cable" {
		t.Errorf("what_i_see = %q, want first body", got.WhatISee)
	}
	if got.WhereItIs != "across the doorway" {
		t.Errorf("where_it_is = %q", got.WhereItIs)
	}
}

func TestParseEmptyFirstOccurrenceYields(t *testing.T) {
	text := "HAZARD_LEVEL: 1\n\nWHAT I SEE:\nClutter\nWhat to do\n\nWHAT TO DO:\nStep around"

	got := mustParse(t, text)
	if got.WhatISee != "Clutter" {
		t.Errorf("what_i_see = %q", got.WhatISee)
	}
	if got.WhatToDo != "Step around" {
		t.Errorf("what_to_do = %q, want later non-empty body", got.WhatToDo)
	}
}

func TestParseFenceInsideBody(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		whatISee string
	}{
		{
			"fenced block",
			"HAZARD_LEVEL: 2\n\nWHAT I SEE:\nA label:\n```\nHIGH VOLTAGE\n```\n\nWHERE IT IS:\nahead of you\n\nWHAT TO DO:\nKeep back",
			"A label:\nHIGH VOLTAGE",
		},
		{
			"inline fence",
			"HAZARD_LEVEL: 2\n\nWHAT I SEE:\nA sign reading ```DANGER```\n\nWHERE IT IS:\nahead of you\n\nWHAT TO DO:\nKeep back",
			"A sign reading ```DANGER```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.text)
			want := hazard.Report{
				Level:     2,
				WhatISee:  tt.whatISee,
				WhereItIs: "ahead of you",
				WhatToDo:  "Keep back",
			}
			if got != want {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestParseMultilineBody(t *testing.T) {
	text := "HAZARD_LEVEL: 2\n\nWHAT I SEE:\n\n\nA cable on the floor\nand a loose rug\n\n\nWHAT TO DO:\nWatch your step"

	got := mustParse(t, text)
	if got.WhatISee != "A cable on the floor\nand a loose rug" {
		t.Errorf("what_i_see = %q", got.WhatISee)
	}
}

func TestProseMentioningLevelIsBody(t *testing.T) {
	text := "HAZARD_LEVEL: 1\n\nWHY IT'S RISKY:\nHazard level is low because the clutter is small"

	got := mustParse(t, text)
	if got.WhyItsRisky != "Hazard level is low because the clutter is small" {
		t.Errorf("why_its_risky = %q", got.WhyItsRisky)
	}
}

func TestAllLevelsAccepted(t *testing.T) {
	for level := hazard.MinLevel; level <= hazard.MaxLevel; level++ {
		r := hazard.Report{Level: level, WhatISee: "x"}
		got := mustParse(t, r.Text())
		if got.Level != level {
			t.Errorf("level %d parsed as %d", level, got.Level)
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	text := scissors.Text()
	if text != canonical {
		t.Errorf("Text() =\n%s\nwant\n%s", text, canonical)
	}
	if got := mustParse(t, text); got != scissors {
		t.Errorf("round trip = %+v", got)
	}
}

func TestLimitAction(t *testing.T) {
	r := hazard.Report{Level: 2, WhatToDo: "Step carefully around the cable on the floor"}

	if got := r.LimitAction(5).WhatToDo; got != "Step carefully around the cable" {
		t.Errorf("got %q", got)
	}
	if got := r.LimitAction(0).WhatToDo; got != r.WhatToDo {
		t.Errorf("n=0 should not truncate, got %q", got)
	}
	if r.WhatToDo != "Step carefully around the cable on the floor" {
		t.Error("LimitAction must not modify the receiver")
	}

	short := hazard.Report{WhatToDo: "Avoid  touching"}
	if got := short.LimitAction(5).WhatToDo; got != "Avoid  touching" {
		t.Errorf("short action should be untouched, got %q", got)
	}
}

func TestUnknown(t *testing.T) {
	r := hazard.Unknown("  something odd  ")
	if r.Level != hazard.UnknownLevel || r.Known() {
		t.Errorf("level = %d, want unknown", r.Level)
	}
	if r.WhatISee != "something odd" || r.WhatToDo != hazard.UnknownAction {
		t.Errorf("got %+v", r)
	}
	if r.Severity() != "unknown" {
		t.Errorf("severity = %q", r.Severity())
	}

	if empty := hazard.Unknown(""); empty.WhatISee == "" {
		t.Error("empty raw text should fall back to a fixed phrase")
	}
}

func TestSeverity(t *testing.T) {
	want := []string{"none", "low", "medium", "high", "critical"}
	for level, name := range want {
		if got := (hazard.Report{Level: level}).Severity(); got != name {
			t.Errorf("level %d severity = %q, want %q", level, got, name)
		}
	}
}

func TestJSONShape(t *testing.T) {
	data, err := json.Marshal(scissors)
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"level", "what_i_see", "where_it_is", "why_its_risky", "what_to_do"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing JSON field %q", key)
		}
	}
	if fields["level"] != float64(3) {
		t.Errorf("level = %v", fields["level"])
	}
}
