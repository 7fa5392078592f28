// Package segment defines the audience segment vocabulary, segment sets with a
// canonical (cache-key safe) form, and the heuristic product classifier.
package segment

import (
	"fmt"
	"sort"
	"strings"
)

// Segment is one audience category from the fixed vocabulary.
type Segment string

const (
	// Man targets adult male audiences.
	Man Segment = "man"

	// Woman targets adult female audiences.
	Woman Segment = "woman"

	// Teens targets teenage audiences.
	Teens Segment = "teens"

	// Kids targets children.
	Kids Segment = "kids"
)

// Vocabulary returns the fixed segment vocabulary in declaration order.
func Vocabulary() []Segment {
	return []Segment{Man, Woman, Teens, Kids}
}

// Set is a set of segments. The empty set means "no filter / all audiences".
type Set []Segment

// NewSet builds a Set from the given segments, deduplicating members.
// Unknown segments are rejected.
func NewSet(segments ...Segment) (Set, error) {
	var out Set
	seen := make(map[Segment]bool, len(segments))
	for _, s := range segments {
		if !isKnown(s) {
			return nil, fmt.Errorf("unknown segment %q", s)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// ParseSet parses a comma-separated segment list ("man,kids").
// Empty input yields the empty (no-filter) set. Unknown tokens are an error.
func ParseSet(raw string) (Set, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var segments []Segment
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		segments = append(segments, Segment(tok))
	}
	return NewSet(segments...)
}

// Contains reports whether s is a member of the set.
func (s Set) Contains(seg Segment) bool {
	for _, m := range s {
		if m == seg {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set carries no filter.
func (s Set) IsEmpty() bool {
	return len(s) == 0
}

// Labels returns the members as sorted lower-case strings.
func (s Set) Labels() []string {
	labels := make([]string, 0, len(s))
	for _, m := range s {
		labels = append(labels, string(m))
	}
	sort.Strings(labels)
	return labels
}

// Canonical returns the deterministic string form of the set: members
// lower-cased, deduplicated, sorted and joined with "+". The empty set
// canonicalizes to "all". Two sets with the same members always produce the
// same canonical string, which makes it safe as a cache-key component.
func (s Set) Canonical() string {
	if len(s) == 0 {
		return "all"
	}
	return strings.Join(s.Labels(), "+")
}

func isKnown(s Segment) bool {
	for _, v := range Vocabulary() {
		if v == s {
			return true
		}
	}
	return false
}

// isGender reports whether the segment participates in the man/woman
// exclusivity rule.
func isGender(s Segment) bool {
	return s == Man || s == Woman
}
