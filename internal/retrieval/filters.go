package retrieval

import (
	"regexp"
	"strings"
)

// filterAliases maps the shorthand a user may type to the canonical
// metadata field stored with each document.
var filterAliases = []struct {
	field   string
	aliases []string
}{
	{"section", []string{"section", "sec", "s"}},
	{"law_name", []string{"law_name", "law", "act", "statute"}},
	{"title", []string{"title", "heading", "name"}},
}

var aliasPatterns = buildAliasPatterns()

func buildAliasPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, fa := range filterAliases {
		for _, alias := range fa.aliases {
			// `section: 420`, `sec=420`, `s:420` etc.
			patterns[alias] = regexp.MustCompile(`(?i)\b` + alias + `\s*[:=]\s*(\S+)`)
		}
	}
	return patterns
}

// ParseFilters extracts metadata filters like "section: 420" or "law=IPC"
// from a query. It returns the query with matched filter expressions
// removed and the canonical filter map. The first alias that matches a
// field wins.
func ParseFilters(query string) (string, map[string]string) {
	filters := make(map[string]string)
	cleaned := query
	for _, fa := range filterAliases {
		for _, alias := range fa.aliases {
			if _, seen := filters[fa.field]; seen {
				break
			}
			pat := aliasPatterns[alias]
			m := pat.FindStringSubmatch(cleaned)
			if m == nil {
				continue
			}
			filters[fa.field] = strings.Trim(m[1], `"',.`)
			cleaned = pat.ReplaceAllString(cleaned, "")
		}
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if len(filters) == 0 {
		return cleaned, nil
	}
	return cleaned, filters
}
