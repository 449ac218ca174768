package projects

import "strings"

// MaxTags caps how many tags a project may carry.
const MaxTags = 5

// Filter is the list view's derivation input. Filtering is a pure pass
// over an already-fetched list; it never re-queries.
type Filter struct {
	Text     string
	Tags     []string
	MineOnly bool
	ViewerID string
}

// Apply filters in order: text, tags, then owner. The requested tag
// set is trimmed and deduped but never capped: asking for more tags
// than any project can carry simply matches nothing.
func Apply(list []Project, f Filter) []Project {
	text := strings.ToLower(strings.TrimSpace(f.Text))
	tags := cleanTags(f.Tags)

	out := make([]Project, 0, len(list))
	for _, p := range list {
		if text != "" && !strings.Contains(strings.ToLower(p.Title), text) {
			continue
		}
		if !hasAllTags(p.Tags, tags) {
			continue
		}
		if f.MineOnly && p.OwnerID != f.ViewerID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// hasAllTags is AND semantics: every wanted tag must be present. An
// empty want-set matches everything.
func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// NormalizeTags trims, drops empties and duplicates, and caps the set
// at MaxTags. Order of first appearance is kept; adding a duplicate or
// a sixth tag is a no-op. Only the create/update path caps.
func NormalizeTags(tags []string) []string {
	out := cleanTags(tags)
	if len(out) > MaxTags {
		out = out[:MaxTags]
	}
	return out
}

// cleanTags trims and dedupes without capping, preserving order of
// first appearance.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
