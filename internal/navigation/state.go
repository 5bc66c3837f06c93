// Package navigation models where the browser is: the drill-down level, the
// history of visited levels, and the location string that mirrors both.
package navigation

import (
	"fmt"
	"net/url"
	"strings"
)

type Level int

const (
	Welcome Level = iota
	Repositories
	Tags
)

func (l Level) String() string {
	switch l {
	case Repositories:
		return "repositories"
	case Tags:
		return "tags"
	default:
		return "welcome"
	}
}

// State is the active level plus the registry and repository it is scoped
// to. Build it with the constructors; the zero value is Welcome.
type State struct {
	Level      Level
	Registry   string
	Repository string
}

func AtWelcome() State {
	return State{Level: Welcome}
}

func AtRepositories(registry string) State {
	return State{Level: Repositories, Registry: registry}
}

func AtTags(registry, repository string) State {
	return State{Level: Tags, Registry: registry, Repository: repository}
}

// FromSnapshot picks the level implied by which fields are set.
func FromSnapshot(s Snapshot) State {
	switch {
	case s.Registry == "":
		return AtWelcome()
	case s.Repository == "":
		return AtRepositories(s.Registry)
	default:
		return AtTags(s.Registry, s.Repository)
	}
}

// Valid checks the level against the fields it requires.
func (s State) Valid() error {
	switch s.Level {
	case Welcome:
		if s.Registry != "" || s.Repository != "" {
			return fmt.Errorf("welcome state carries registry %q repository %q", s.Registry, s.Repository)
		}
	case Repositories:
		if s.Registry == "" || s.Repository != "" {
			return fmt.Errorf("repositories state needs only a registry, got %q/%q", s.Registry, s.Repository)
		}
	case Tags:
		if s.Registry == "" || s.Repository == "" {
			return fmt.Errorf("tags state needs registry and repository, got %q/%q", s.Registry, s.Repository)
		}
	default:
		return fmt.Errorf("unknown level %d", s.Level)
	}
	return nil
}

func (s State) Snapshot() Snapshot {
	return Snapshot{Registry: s.Registry, Repository: s.Repository}
}

// Location renders the state as query parameters. Welcome has none.
func (s State) Location() string {
	values := url.Values{}
	if s.Registry != "" {
		values.Set("registry", s.Registry)
	}
	if s.Repository != "" {
		values.Set("repository", s.Repository)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// Breadcrumb is the human readable path, e.g. "registries / a / app".
func (s State) Breadcrumb() string {
	parts := []string{"registries"}
	if s.Registry != "" {
		parts = append(parts, s.Registry)
	}
	if s.Repository != "" {
		parts = append(parts, s.Repository)
	}
	return strings.Join(parts, " / ")
}

// ParseLocation reads "?registry=a&repository=b". The leading "?" is
// optional, and a full URL is accepted too. A repository without a registry
// is rejected.
func ParseLocation(raw string) (State, error) {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "?"); idx >= 0 {
		raw = raw[idx+1:]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return State{}, fmt.Errorf("parse location: %w", err)
	}
	snap := Snapshot{
		Registry:   strings.TrimSpace(values.Get("registry")),
		Repository: strings.TrimSpace(values.Get("repository")),
	}
	if snap.Registry == "" && snap.Repository != "" {
		return State{}, fmt.Errorf("location has repository %q without registry", snap.Repository)
	}
	return FromSnapshot(snap), nil
}
