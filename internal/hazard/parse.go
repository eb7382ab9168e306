package hazard

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedReport is returned when the level line is missing, holds no
// integer, or holds one outside [MinLevel, MaxLevel].
var ErrMalformedReport = errors.New("malformed hazard report")

const levelKey = "HAZARD_LEVEL"

type section struct {
	header string
	field  func(*Report) *string
}

var sections = []section{
	{"WHAT I SEE", func(r *Report) *string { return &r.WhatISee }},
	{"WHERE IT IS", func(r *Report) *string { return &r.WhereItIs }},
	{"WHY IT'S RISKY", func(r *Report) *string { return &r.WhyItsRisky }},
	{"WHAT TO DO", func(r *Report) *string { return &r.WhatToDo }},
}

var (
	// Markdown decoration allowed before keys: headings, quotes, bold,
	// italics, and one list marker such as "1." or "-".
	decoration = `^[\s>#*_]*(?:(?:\d+[.)]|[-•])[\s>#*_]*)?`

	levelPattern = regexp.MustCompile(`(?i)` + decoration + `hazard[ _-]?level[\s*_]*(?::(.*)|\s+(-?\d.*))$`)

	headerPattern = regexp.MustCompile(
		`(?i)` + decoration + `(what\s+i\s+see|where\s+it\s+is|why\s+it'?s\s+risky|what\s+to\s+do)[\s*_]*(?::(.*)|$)`,
	)

	fenceLine = regexp.MustCompile("^\\s*```[\\w+-]*\\s*$")

	numberPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

	apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")
)

// Parse extracts a Report from free-form model output. It tolerates code
// fences, markdown emphasis, list markers, any header order, and missing
// sections. Only a missing or invalid level fails the parse.
func Parse(text string) (Report, error) {
	var (
		report   Report
		level    = UnknownLevel
		found    = false
		current  *string
		body     []string
		assigned = make(map[int]bool, len(sections))
	)

	flush := func() {
		if current != nil {
			*current = joinBody(body)
		}
		current, body = nil, nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")

	for line := range strings.SplitSeq(text, "\n") {
		// fence markers carry no content wherever they appear
		if fenceLine.MatchString(line) {
			continue
		}

		normalized := apostrophes.Replace(line)

		if m := levelPattern.FindStringSubmatch(normalized); m != nil {
			flush()
			if !found {
				n, err := parseLevel(m[1] + m[2])
				if err != nil {
					return Report{}, err
				}
				level, found = n, true
			}
			continue
		}

		if m := headerPattern.FindStringSubmatch(normalized); m != nil {
			flush()
			// a repeated header still ends the previous section; it only
			// takes the slot when the first occurrence had no body
			idx := sectionIndex(m[1])
			if assigned[idx] && *sections[idx].field(&report) != "" {
				current = new(string)
			} else {
				assigned[idx] = true
				current = sections[idx].field(&report)
			}
			if rest := strings.Trim(m[2], " \t*_"); rest != "" {
				body = append(body, rest)
			}
			continue
		}

		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	if !found {
		return Report{}, fmt.Errorf("%w: missing %s line", ErrMalformedReport, levelKey)
	}

	report.Level = level
	return report, nil
}

func parseLevel(rest string) (int, error) {
	m := numberPattern.FindStringSubmatch(rest)
	if m == nil {
		return 0, fmt.Errorf("%w: %s has no integer", ErrMalformedReport, levelKey)
	}
	if m[1] != "" {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrMalformedReport, levelKey, m[0])
	}
	n, err := strconv.Atoi(m[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrMalformedReport, levelKey, m[0], err)
	}
	if n < MinLevel || n > MaxLevel {
		return 0, fmt.Errorf("%w: %s %d outside [%d,%d]", ErrMalformedReport, levelKey, n, MinLevel, MaxLevel)
	}
	return n, nil
}

func sectionIndex(name string) int {
	key := strings.Join(strings.Fields(strings.ToUpper(name)), " ")
	key = strings.Replace(key, "ITS", "IT'S", 1)
	for i, s := range sections {
		if s.header == key {
			return i
		}
	}
	return -1
}

// joinBody drops leading and trailing blank lines and trims the result.
func joinBody(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
