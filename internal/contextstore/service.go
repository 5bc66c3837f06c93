package contextstore

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/scottbass3/reglite/internal/config"
)

// Service contains pure context CRUD and validation logic.
type Service struct {
	store Store
}

func NewService(path string) Service {
	return Service{store: New(path)}
}

func (s Service) Store() Store {
	return s.store
}

func (s Service) Add(existing []config.Context, candidate config.Context) ([]config.Context, int, error) {
	normalized, err := normalizeContext(candidate)
	if err != nil {
		return nil, -1, err
	}
	if err := ensureUniqueName(existing, normalized.Name, -1); err != nil {
		return nil, -1, err
	}
	updated := append(append([]config.Context{}, existing...), normalized)
	return updated, len(updated) - 1, nil
}

func (s Service) Edit(existing []config.Context, index int, candidate config.Context) ([]config.Context, error) {
	if index < 0 || index >= len(existing) {
		return nil, fmt.Errorf("invalid context selection")
	}
	normalized, err := normalizeContext(candidate)
	if err != nil {
		return nil, err
	}
	if err := ensureUniqueName(existing, normalized.Name, index); err != nil {
		return nil, err
	}
	updated := append([]config.Context{}, existing...)
	updated[index] = normalized
	return updated, nil
}

func (s Service) RemoveByName(existing []config.Context, name string) ([]config.Context, config.Context, int, error) {
	index, ok := ResolveByName(existing, name)
	if !ok {
		return nil, config.Context{}, -1, unknownContext(name)
	}
	removed := existing[index]
	updated := make([]config.Context, 0, len(existing)-1)
	updated = append(updated, existing[:index]...)
	updated = append(updated, existing[index+1:]...)
	return updated, removed, index, nil
}

// Upsert edits the context called candidate.Name, or adds it when there is
// none, and writes the result.
func (s Service) Upsert(candidate config.Context) (added bool, err error) {
	cfg, err := s.store.Load()
	if err != nil {
		return false, err
	}
	var updated []config.Context
	if index, ok := ResolveByName(cfg.Contexts, candidate.Name); ok {
		updated, err = s.Edit(cfg.Contexts, index, candidate)
	} else {
		updated, _, err = s.Add(cfg.Contexts, candidate)
		added = true
	}
	if err != nil {
		return false, err
	}
	return added, s.store.Save(updated)
}

// Remove deletes the named context from the file.
func (s Service) Remove(name string) (config.Context, error) {
	cfg, err := s.store.Load()
	if err != nil {
		return config.Context{}, err
	}
	updated, removed, _, err := s.RemoveByName(cfg.Contexts, name)
	if err != nil {
		return config.Context{}, err
	}
	return removed, s.store.Save(updated)
}

// ResolveByName matches a context by name, then by API URL, ignoring case.
func ResolveByName(contexts []config.Context, name string) (int, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, false
	}
	for i, ctx := range contexts {
		if strings.EqualFold(strings.TrimSpace(ctx.Name), trimmed) {
			return i, true
		}
	}
	for i, ctx := range contexts {
		if strings.EqualFold(strings.TrimRight(strings.TrimSpace(ctx.APIURL), "/"), strings.TrimRight(trimmed, "/")) {
			return i, true
		}
	}
	return 0, false
}

func normalizeContext(candidate config.Context) (config.Context, error) {
	name := strings.TrimSpace(candidate.Name)
	if name == "" {
		return config.Context{}, fmt.Errorf("context name is required")
	}
	apiURL, err := normalizeAPIURL(candidate.APIURL)
	if err != nil {
		return config.Context{}, err
	}
	return config.Context{Name: name, APIURL: apiURL}, nil
}

func normalizeAPIURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("api url is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid api url %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("api url must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("api url %q has no host", raw)
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}

func ensureUniqueName(existing []config.Context, name string, skip int) error {
	needle := strings.ToLower(strings.TrimSpace(name))
	for i, ctx := range existing {
		if i == skip {
			continue
		}
		if strings.ToLower(strings.TrimSpace(ctx.Name)) == needle {
			return fmt.Errorf("context %q already exists", name)
		}
	}
	return nil
}

func unknownContext(name string) error {
	return fmt.Errorf("unknown context: %s", strings.TrimSpace(name))
}
