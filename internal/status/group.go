package status

import (
	"sort"

	"github.com/scottbass3/reglite/internal/api"
)

// DisplayOrder is the order groups are shown in.
var DisplayOrder = []api.Status{api.StatusOnline, api.StatusChecking, api.StatusOffline}

// Group is a run of registries sharing a display status.
type Group struct {
	Status    api.Status
	Entries   []api.RegistryEntry
	Collapsed bool
}

func (g Group) Key() string {
	return g.Status.String()
}

// DisplayStatus folds Unknown into Checking.
func DisplayStatus(s api.Status) api.Status {
	if s == api.StatusUnknown {
		return api.StatusChecking
	}
	return s
}

func DefaultCollapsed(s api.Status) bool {
	return s == api.StatusOffline
}

// Groups partitions entries in DisplayOrder, each group sorted by name.
// Empty groups are left out. collapsed may be nil, in which case the
// defaults apply.
func Groups(entries []api.RegistryEntry, collapsed func(api.Status) bool) []Group {
	if collapsed == nil {
		collapsed = DefaultCollapsed
	}
	buckets := make(map[api.Status][]api.RegistryEntry, len(DisplayOrder))
	for _, entry := range entries {
		s := DisplayStatus(entry.Status)
		buckets[s] = append(buckets[s], entry)
	}

	groups := make([]Group, 0, len(DisplayOrder))
	for _, s := range DisplayOrder {
		members := buckets[s]
		if len(members) == 0 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].Name < members[j].Name
		})
		groups = append(groups, Group{Status: s, Entries: members, Collapsed: collapsed(s)})
	}
	return groups
}

// AnyChecking reports whether a poll should continue.
func AnyChecking(entries []api.RegistryEntry) bool {
	for _, entry := range entries {
		if entry.Status == api.StatusChecking {
			return true
		}
	}
	return false
}

// Merge applies next on top of prev by name. Registries missing from next
// keep their previous entry; new ones are appended.
func Merge(prev, next []api.RegistryEntry) []api.RegistryEntry {
	out := append([]api.RegistryEntry(nil), prev...)
	index := make(map[string]int, len(out))
	for i, entry := range out {
		index[entry.Name] = i
	}
	for _, entry := range next {
		if i, ok := index[entry.Name]; ok {
			out[i] = entry
			continue
		}
		index[entry.Name] = len(out)
		out = append(out, entry)
	}
	return out
}

func Find(entries []api.RegistryEntry, name string) (api.RegistryEntry, bool) {
	for _, entry := range entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return api.RegistryEntry{}, false
}
