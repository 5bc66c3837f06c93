// Package prefs persists small client preferences between sessions.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/status"
)

const (
	KeyTheme = "theme"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// CollapsedKey is the key holding a status group's collapse flag.
func CollapsedKey(s api.Status) string {
	return "collapsed." + status.DisplayStatus(s).String()
}

// Prefs is a flat string map stored as JSON. An empty path keeps the
// values in memory only.
type Prefs struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

func DefaultPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "reglite", "prefs.json")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "reglite", "prefs.json")
	}
	return "prefs.json"
}

// Load reads path. A missing file yields empty preferences.
func Load(path string) (*Prefs, error) {
	p := &Prefs{path: path, values: map[string]string{}}
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, err
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return p, err
	}
	if values != nil {
		p.values = values
	}
	return p, nil
}

func InMemory() *Prefs {
	p, _ := Load("")
	return p
}

func (p *Prefs) Get(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok
}

// Set stores value and writes the file.
func (p *Prefs) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return p.save()
}

func (p *Prefs) Bool(key string, fallback bool) bool {
	v, ok := p.Get(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func (p *Prefs) SetBool(key string, value bool) error {
	return p.Set(key, strconv.FormatBool(value))
}

func (p *Prefs) Theme() string {
	if v, ok := p.Get(KeyTheme); ok && v == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

func (p *Prefs) SetTheme(theme string) error {
	if theme != ThemeLight {
		theme = ThemeDark
	}
	return p.Set(KeyTheme, theme)
}

// Collapsed returns the saved collapse flag for a status group, falling
// back to status.DefaultCollapsed.
func (p *Prefs) Collapsed(s api.Status) bool {
	return p.Bool(CollapsedKey(s), status.DefaultCollapsed(status.DisplayStatus(s)))
}

func (p *Prefs) SetCollapsed(s api.Status, collapsed bool) error {
	return p.SetBool(CollapsedKey(s), collapsed)
}

func (p *Prefs) save() error {
	if p.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p.values, "", "  ")
	if err != nil {
		return err
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}
