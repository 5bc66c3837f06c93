package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/browser"
	"github.com/scottbass3/reglite/internal/navigation"
	"github.com/scottbass3/reglite/internal/search"
	"github.com/scottbass3/reglite/internal/status"
)

type rowKind int

const (
	rowItem rowKind = iota
	rowGroup
)

// rowRef says what a table row stands for.
type rowRef struct {
	kind   rowKind
	id     string
	status api.Status
}

type listView struct {
	headers []string
	rows    [][]string
	refs    []rowRef
	search  search.Result
}

func (m Model) listView() listView {
	filter := m.screen.filter()
	switch m.screen.state.Level {
	case navigation.Repositories:
		return repositoryView(m.screen, filter)
	case navigation.Tags:
		return tagView(m.screen, filter)
	default:
		return m.registryView(filter)
	}
}

func (m Model) registryView(filter string) listView {
	groups := status.Groups(m.screen.registries, m.prefs.Collapsed)
	searchGroups := make([]search.Group, 0, len(groups))
	for _, g := range groups {
		labels := make([]string, 0, len(g.Entries))
		for _, entry := range g.Entries {
			labels = append(labels, entry.Name)
		}
		searchGroups = append(searchGroups, search.Group{Key: g.Key(), Labels: labels, Collapsed: g.Collapsed})
	}
	results, total := search.FilterGroups(filter, searchGroups)

	view := listView{headers: registryHeaders(), search: total}
	for i, res := range results {
		if res.Hidden {
			continue
		}
		g := groups[i]
		view.rows = append(view.rows, groupRow(g.Status, res.Count, res.Expanded))
		view.refs = append(view.refs, rowRef{kind: rowGroup, status: g.Status})
		if !res.Expanded {
			continue
		}
		for j, visible := range res.Members.Visible {
			if !visible {
				continue
			}
			entry := g.Entries[j]
			view.rows = append(view.rows, registryRow(entry))
			view.refs = append(view.refs, rowRef{kind: rowItem, id: entry.Name, status: g.Status})
		}
	}
	return view
}

func repositoryView(s *screen, filter string) listView {
	result := search.Filter(filter, s.items)
	view := listView{headers: repositoryHeaders(), search: result}
	for _, i := range result.VisibleIndices() {
		name := s.items[i]
		view.rows = append(view.rows, repositoryRow(name, s.patches[name]))
		view.refs = append(view.refs, rowRef{id: name})
	}
	return view
}

func tagView(s *screen, filter string) listView {
	result := search.Filter(filter, s.items)
	view := listView{headers: tagHeaders(), search: result}
	for _, i := range result.VisibleIndices() {
		name := s.items[i]
		view.rows = append(view.rows, tagRow(name, s.patches[name]))
		view.refs = append(view.refs, rowRef{id: name})
	}
	return view
}

func registryHeaders() []string {
	return []string{"Name", "Status", "Latency", "Checked", "Detail"}
}

func repositoryHeaders() []string {
	return []string{"Name", "Tags", "Size"}
}

func tagHeaders() []string {
	return []string{"Tag", "Digest", "Type", "Arch", "Size", "Created"}
}

func groupRow(s api.Status, count int, expanded bool) []string {
	marker := "▸"
	if expanded {
		marker = "▾"
	}
	return []string{fmt.Sprintf("%s %s (%d)", marker, groupTitle(s), count), "", "", "", ""}
}

func groupTitle(s api.Status) string {
	label := s.String()
	return strings.ToUpper(label[:1]) + label[1:]
}

func registryRow(entry api.RegistryEntry) []string {
	latency := "-"
	if entry.ResponseTimeMs > 0 {
		latency = fmt.Sprintf("%d ms", entry.ResponseTimeMs)
	}
	return []string{
		"  " + entry.Name,
		statusIcon(entry.Status) + " " + status.DisplayStatus(entry.Status).String(),
		latency,
		formatTime(entry.LastChecked),
		strings.TrimSpace(entry.ErrorMessage),
	}
}

func statusIcon(s api.Status) string {
	switch status.DisplayStatus(s) {
	case api.StatusOnline:
		return "●"
	case api.StatusOffline:
		return "✕"
	default:
		return "◌"
	}
}

func repositoryRow(name string, patch browser.ItemPatch) []string {
	tags, size := "", ""
	switch {
	case patch.Err != "":
		tags, size = "!", "error"
	case patch.Loading:
		tags, size = "…", "…"
	case patch.Info != nil:
		tags = formatCount(patch.Info.TagsCount)
		size = formatRepositorySize(*patch.Info, patch.ManyTags)
	}
	return []string{name, tags, size}
}

func formatRepositorySize(info api.RepositoryInfo, manyTags bool) string {
	if manyTags {
		return "press i"
	}
	if !info.HasSize() {
		return "-"
	}
	size := formatSize(*info.TotalSize)
	if info.IsEstimate {
		return "~" + size
	}
	return size
}

func tagRow(name string, patch browser.ItemPatch) []string {
	row := []string{name, "", "", "", "", ""}
	switch {
	case patch.Err != "":
		row[1] = "error: " + patch.Err
	case patch.Loading:
		row[1] = "…"
	case patch.Manifest != nil:
		manifest := patch.Manifest
		row[1] = shortDigest(manifest.Digest)
		row[2] = manifest.Kind()
		row[3] = firstNonEmpty(manifest.Architecture, "-")
		row[4] = formatSize(manifest.Size)
		if manifest.Created != nil {
			row[5] = formatTime(*manifest.Created)
		} else {
			row[5] = "-"
		}
	}
	return row
}

func shortDigest(digest string) string {
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return "-"
	}
	const keep = len("sha256:") + 12
	if len(digest) > keep {
		return digest[:keep]
	}
	return digest
}

func toTableRows(rows [][]string) []table.Row {
	if len(rows) == 0 {
		return nil
	}
	out := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, table.Row(row))
	}
	return out
}

func normalizeTableRows(rows []table.Row, columnCount int) []table.Row {
	if len(rows) == 0 || columnCount <= 0 {
		return rows
	}
	for i, row := range rows {
		if len(row) == columnCount {
			continue
		}
		if len(row) > columnCount {
			rows[i] = row[:columnCount]
			continue
		}
		padded := make(table.Row, columnCount)
		copy(padded, row)
		rows[i] = padded
	}
	return rows
}
