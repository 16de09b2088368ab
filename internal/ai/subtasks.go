package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

const maxSubtasks = 3

var listMarker = regexp.MustCompile(`^(?:[-*・]|\d+[.)])\s*`)

// ParseSubtaskTitles reads up to three titles from model text: a JSON array
// of strings, or failing that one title per line with list markers removed.
func ParseSubtaskTitles(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)

	var titles []string
	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, err
		}
		titles = clean(items)
	} else {
		titles = clean(strings.Split(raw, "\n"))
	}
	if len(titles) == 0 {
		return nil, errors.New("no subtask titles in reply")
	}
	return titles, nil
}

func clean(items []string) []string {
	out := make([]string, 0, maxSubtasks)
	for _, it := range items {
		it = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(it), ""))
		if it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == maxSubtasks {
			break
		}
	}
	return out
}
