// Package search filters the rendered list of the current level. It is pure:
// no I/O and no shared state.
package search

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Result is the visibility of each name, in input order.
type Result struct {
	Visible []bool
	Matches int
	Total   int
	Active  bool
}

// Count is the "N of M" text, or "" when no query is active.
func (r Result) Count() string {
	if !r.Active {
		return ""
	}
	return fmt.Sprintf("%d of %d", r.Matches, r.Total)
}

// VisibleIndices lists the positions that passed the filter.
func (r Result) VisibleIndices() []int {
	out := make([]int, 0, r.Matches)
	for i, ok := range r.Visible {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// Normalize trims and lowercases a query.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// DisplayName strips terminal styling and leading icon glyphs from a
// rendered label so only the name is compared.
func DisplayName(label string) string {
	plain := ansi.Strip(label)
	plain = strings.TrimLeftFunc(plain, func(r rune) bool {
		return unicode.IsSpace(r) || isGlyph(r)
	})
	return strings.TrimSpace(plain)
}

func isGlyph(r rune) bool {
	if unicode.Is(unicode.Co, r) {
		return true
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return false
	}
	return unicode.IsSymbol(r)
}

func Filter(query string, labels []string) Result {
	q := Normalize(query)
	result := Result{
		Visible: make([]bool, len(labels)),
		Total:   len(labels),
		Active:  q != "",
	}
	for i, label := range labels {
		if !result.Active || strings.Contains(strings.ToLower(DisplayName(label)), q) {
			result.Visible[i] = true
			result.Matches++
		}
	}
	return result
}

// Group is one collapsible block of the registry list.
type Group struct {
	Key       string
	Labels    []string
	Collapsed bool
}

// GroupResult is the projected state of one Group.
type GroupResult struct {
	Key      string
	Members  Result
	Hidden   bool
	Count    int
	Expanded bool
}

// FilterGroups filters each group's members. A group is hidden when a query
// is active and none of its members match. Count is the filtered member
// count while a query is active, otherwise the group size. A collapsed group
// is expanded while the query matches something inside it.
func FilterGroups(query string, groups []Group) ([]GroupResult, Result) {
	out := make([]GroupResult, 0, len(groups))
	total := Result{Active: Normalize(query) != ""}
	for _, g := range groups {
		members := Filter(query, g.Labels)
		res := GroupResult{
			Key:      g.Key,
			Members:  members,
			Count:    members.Total,
			Expanded: !g.Collapsed,
		}
		if members.Active {
			res.Count = members.Matches
			res.Hidden = members.Matches == 0
			if members.Matches > 0 {
				res.Expanded = true
			}
		}
		total.Visible = append(total.Visible, members.Visible...)
		total.Matches += members.Matches
		total.Total += members.Total
		out = append(out, res)
	}
	return out, total
}
