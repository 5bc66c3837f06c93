// Package contextstore edits the backend contexts kept in the config file.
package contextstore

import (
	"os"
	"strings"

	"github.com/scottbass3/reglite/internal/config"
)

// Store persists contexts in the reglite config file. Every other setting
// in the file is left as it was.
type Store struct {
	path string
}

func New(path string) Store {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = config.DefaultPath()
	}
	return Store{path: trimmed}
}

func (s Store) Path() string {
	return s.path
}

// Load returns the contexts and the config they came from, creating the
// default file first when there is none.
func (s Store) Load() (config.Config, error) {
	if _, err := config.Ensure(s.path); err != nil {
		return config.Config{}, err
	}
	return config.Load(s.path)
}

// Save replaces the contexts in the file. A default context that no
// longer exists is dropped.
func (s Store) Save(contexts []config.Context) error {
	cfg := config.Default()
	if _, err := os.Stat(s.path); err == nil {
		loaded, err := config.Load(s.path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.Contexts = append([]config.Context(nil), contexts...)
	if _, ok := ResolveByName(cfg.Contexts, cfg.DefaultContext); !ok {
		cfg.DefaultContext = ""
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return config.Save(s.path, cfg)
}

// SetDefault marks name as the context used when none is given.
func (s Store) SetDefault(name string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	index, ok := ResolveByName(cfg.Contexts, name)
	if !ok {
		return unknownContext(name)
	}
	cfg.DefaultContext = cfg.Contexts[index].Name
	return config.Save(s.path, cfg)
}
