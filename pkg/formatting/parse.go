package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content cannot be parsed as JSON,
// either directly or from a markdown code fence.
var ErrParseFailed = errors.New("failed to parse response")

var fencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)\r?\n?```")

// Unfence returns the body of the first markdown code fence in content,
// or the trimmed content when it carries no complete fence. An unterminated
// opening fence is dropped.
func Unfence(content string) string {
	content = strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if rest, ok := strings.CutPrefix(content, "```"); ok {
		if _, body, found := strings.Cut(rest, "\n"); found {
			return strings.TrimSpace(body)
		}
		return ""
	}
	return content
}

// Parse unmarshals content as JSON into T, retrying with the body of a
// markdown code fence when direct parsing fails.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	if body := Unfence(content); body != content {
		if err := json.Unmarshal([]byte(body), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, truncate(content, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
