package browser

import (
	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/navigation"
)

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeSuccess:
		return "success"
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// ItemPatch is secondary data for one row of the current list. Only the
// fields that are set should change what is displayed.
type ItemPatch struct {
	Loading  bool
	Info     *api.RepositoryInfo
	ManyTags bool
	Manifest *api.Manifest
	Err      string
}

// ManifestView is the manifest detail for the selected tag.
type ManifestView struct {
	Registry   string
	Repository string
	Tag        string
	Loading    bool
	Manifest   *api.Manifest
	PullRef    string
	Err        string
}

// Sink receives everything the engine wants shown. Calls happen on the
// goroutine that calls Engine methods and Handle.
type Sink interface {
	// Enter switches the visible section and breadcrumb to state.
	Enter(state navigation.State)
	ClearSearch(levels ...navigation.Level)
	ShowLoading(state navigation.State)
	Show(state navigation.State, items []string)
	ShowError(state navigation.State, message string)
	UpdateItem(state navigation.State, id string, patch ItemPatch)
	ShowRegistries(entries []api.RegistryEntry)
	ShowManifest(view ManifestView)
	HideManifest()
	Notify(level NoticeLevel, message string)
}
