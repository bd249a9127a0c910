package engine

import (
	"strings"
	"time"

	"github.com/qualgraph/qualgraph/pkg/types"
)

// Several views depend on convention-encoded sub-fields inside free-text
// observations: a "Date:" prefix for chronology, a "Status:" prefix kept
// for compatibility with older data, and keyword heuristics for
// methodology and demographics. The conventions are weak by design; they
// are parsed on read and never enforced at write time.

// datePrefixes are tried in order; the first observation carrying any of
// them wins.
var datePrefixes = []string{"Date:", "Collected on:", "Created:"}

// dateLayouts are tried in order against the trimmed value segment.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// observationDate extracts the date encoded in an entity's observations.
// Absent or unparsable dates yield the zero time, which sorts before any
// real date in chronological views.
func observationDate(observations []string) time.Time {
	for _, obs := range observations {
		for _, prefix := range datePrefixes {
			if !strings.HasPrefix(obs, prefix) {
				continue
			}
			return parseDateValue(strings.TrimSpace(strings.TrimPrefix(obs, prefix)))
		}
	}
	return time.Time{}
}

func parseDateValue(value string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// taggedValue returns the value segment of the first observation carrying
// the given prefix, e.g. taggedValue(obs, "Status:"). The prefix match is
// exact (case-sensitive), matching how the data was written.
func taggedValue(observations []string, prefix string) (string, bool) {
	for _, obs := range observations {
		if strings.HasPrefix(obs, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(obs, prefix)), true
		}
	}
	return "", false
}

// filterByKeywords returns the observations containing at least one of the
// keywords as a case-insensitive substring, preserving order.
func filterByKeywords(observations []string, keywords ...string) []string {
	matched := []string{}
	for _, obs := range observations {
		lower := strings.ToLower(obs)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, obs)
				break
			}
		}
	}
	return matched
}

// entityIndex builds a name → entity lookup over the graph. The returned
// pointers address the graph's backing array.
func entityIndex(graph *types.KnowledgeGraph) map[string]*types.Entity {
	index := make(map[string]*types.Entity, len(graph.Entities))
	for i := range graph.Entities {
		index[graph.Entities[i].Name] = &graph.Entities[i]
	}
	return index
}
