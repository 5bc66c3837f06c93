package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	TagSortRegistry = "registry"
	TagSortSemver   = "semver"

	defaultAPIURL = "http://localhost:8080"
)

var ErrNoContext = errors.New("no context configured")

type Config struct {
	Contexts            []Context     `yaml:"contexts"`
	DefaultContext      string        `yaml:"default_context,omitempty"`
	PollInterval        time.Duration `yaml:"poll_interval"`
	PollTimeout         time.Duration `yaml:"poll_timeout"`
	RepositoryBatchSize int           `yaml:"repository_batch_size"`
	TagBatchSize        int           `yaml:"tag_batch_size"`
	ManyTagsThreshold   int           `yaml:"many_tags_threshold"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	TagSort             string        `yaml:"tag_sort"`
	LogLevel            string        `yaml:"log_level"`
}

// Context is a named reglite backend.
type Context struct {
	Name   string `yaml:"name"`
	APIURL string `yaml:"api_url"`
}

func Default() Config {
	return Config{
		Contexts:            []Context{{Name: "local", APIURL: defaultAPIURL}},
		PollInterval:        time.Second,
		PollTimeout:         30 * time.Second,
		RepositoryBatchSize: 3,
		TagBatchSize:        4,
		ManyTagsThreshold:   10,
		RequestTimeout:      15 * time.Second,
		TagSort:             TagSortRegistry,
		LogLevel:            "info",
	}
}

func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reglite", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", "reglite", "config.yaml")
	}
	return "config.yaml"
}

// Load reads path. Fields left out of the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Contexts = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config YAML: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Ensure writes the default config when path does not exist yet and
// reports whether it did.
func Ensure(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := Save(path, Default()); err != nil {
		return false, err
	}
	return true, nil
}

func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) normalize() {
	for i := range c.Contexts {
		c.Contexts[i].Name = strings.TrimSpace(c.Contexts[i].Name)
		c.Contexts[i].APIURL = strings.TrimSpace(c.Contexts[i].APIURL)
	}
	c.DefaultContext = strings.TrimSpace(c.DefaultContext)
	c.TagSort = strings.ToLower(strings.TrimSpace(c.TagSort))
	if c.TagSort == "" {
		c.TagSort = TagSortRegistry
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Contexts))
	for i, ctx := range c.Contexts {
		if ctx.Name == "" {
			return fmt.Errorf("context %d missing name", i+1)
		}
		if ctx.APIURL == "" {
			return fmt.Errorf("context %q missing api_url", ctx.Name)
		}
		if seen[ctx.Name] {
			return fmt.Errorf("duplicate context %q", ctx.Name)
		}
		seen[ctx.Name] = true
	}
	if c.PollInterval <= 0 || c.PollTimeout <= 0 || c.RequestTimeout <= 0 {
		return fmt.Errorf("poll_interval, poll_timeout and request_timeout must be positive")
	}
	if c.PollInterval > c.PollTimeout {
		return fmt.Errorf("poll_interval %s exceeds poll_timeout %s", c.PollInterval, c.PollTimeout)
	}
	if c.RepositoryBatchSize < 1 || c.TagBatchSize < 1 {
		return fmt.Errorf("batch sizes must be at least 1")
	}
	if c.ManyTagsThreshold < 0 {
		return fmt.Errorf("many_tags_threshold must not be negative")
	}
	switch c.TagSort {
	case TagSortRegistry, TagSortSemver:
	default:
		return fmt.Errorf("tag_sort must be %q or %q, got %q", TagSortRegistry, TagSortSemver, c.TagSort)
	}
	return nil
}

// Overlay applies values set in v (flags, REGLITE_* environment) on top of
// cfg. Keys mirror the YAML names.
func Overlay(cfg Config, v *viper.Viper) (Config, error) {
	if v == nil {
		return cfg, nil
	}
	if v.IsSet("poll_interval") {
		cfg.PollInterval = v.GetDuration("poll_interval")
	}
	if v.IsSet("poll_timeout") {
		cfg.PollTimeout = v.GetDuration("poll_timeout")
	}
	if v.IsSet("request_timeout") {
		cfg.RequestTimeout = v.GetDuration("request_timeout")
	}
	if v.IsSet("repository_batch_size") {
		cfg.RepositoryBatchSize = v.GetInt("repository_batch_size")
	}
	if v.IsSet("tag_batch_size") {
		cfg.TagBatchSize = v.GetInt("tag_batch_size")
	}
	if v.IsSet("many_tags_threshold") {
		cfg.ManyTagsThreshold = v.GetInt("many_tags_threshold")
	}
	if v.IsSet("tag_sort") {
		cfg.TagSort = v.GetString("tag_sort")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("context") && v.GetString("context") != "" {
		cfg.DefaultContext = v.GetString("context")
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveContext picks the backend to talk to. An explicit apiURL wins,
// then the named context, then DefaultContext, then the first context.
func (c Config) ResolveContext(name, apiURL string) (Context, error) {
	if apiURL = strings.TrimSpace(apiURL); apiURL != "" {
		return Context{Name: "cli", APIURL: apiURL}, nil
	}
	if name = strings.TrimSpace(name); name == "" {
		name = c.DefaultContext
	}
	if name != "" {
		for _, ctx := range c.Contexts {
			if ctx.Name == name {
				return ctx, nil
			}
		}
		return Context{}, fmt.Errorf("context %q not found", name)
	}
	if len(c.Contexts) == 0 {
		return Context{}, ErrNoContext
	}
	return c.Contexts[0], nil
}

func (c Config) ContextNames() []string {
	names := make([]string, 0, len(c.Contexts))
	for _, ctx := range c.Contexts {
		names = append(names, ctx.Name)
	}
	return names
}
