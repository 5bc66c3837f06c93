package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := writeConfig(t, `
contexts:
  - name: " prod "
    api_url: https://reglite.example.com
poll_timeout: 45s
tag_sort: SemVer
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Contexts, 1)
	assert.Equal(t, "prod", cfg.Contexts[0].Name)
	assert.Equal(t, 45*time.Second, cfg.PollTimeout)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 3, cfg.RepositoryBatchSize)
	assert.Equal(t, 4, cfg.TagBatchSize)
	assert.Equal(t, 10, cfg.ManyTagsThreshold)
	assert.Equal(t, TagSortSemver, cfg.TagSort)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	for name, body := range map[string]string{
		"missing url":   "contexts:\n  - name: a\n",
		"duplicate":     "contexts:\n  - {name: a, api_url: x}\n  - {name: a, api_url: y}\n",
		"zero batch":    "repository_batch_size: 0\n",
		"bad tag sort":  "tag_sort: random\n",
		"interval slow": "poll_interval: 1m\npoll_timeout: 30s\n",
		"not yaml":      "contexts: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestEnsureWritesDefaultsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reglite", "config.yaml")

	created, err := Ensure(path)
	require.NoError(t, err)
	assert.True(t, created)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	created, err = Ensure(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestResolveContext(t *testing.T) {
	cfg := Default()
	cfg.Contexts = append(cfg.Contexts, Context{Name: "prod", APIURL: "https://prod"})

	ctx, err := cfg.ResolveContext("", "")
	require.NoError(t, err)
	assert.Equal(t, "local", ctx.Name)

	ctx, err = cfg.ResolveContext("prod", "")
	require.NoError(t, err)
	assert.Equal(t, "https://prod", ctx.APIURL)

	ctx, err = cfg.ResolveContext("prod", "http://override:9000")
	require.NoError(t, err)
	assert.Equal(t, Context{Name: "cli", APIURL: "http://override:9000"}, ctx)

	cfg.DefaultContext = "prod"
	ctx, err = cfg.ResolveContext("", "")
	require.NoError(t, err)
	assert.Equal(t, "prod", ctx.Name)

	_, err = cfg.ResolveContext("staging", "")
	assert.Error(t, err)

	_, err = Config{}.ResolveContext("", "")
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestOverlayFromEnvironment(t *testing.T) {
	t.Setenv("REGLITE_POLL_TIMEOUT", "10s")
	t.Setenv("REGLITE_TAG_BATCH_SIZE", "8")
	t.Setenv("REGLITE_CONTEXT", "prod")

	v := viper.New()
	v.SetEnvPrefix("reglite")
	v.AutomaticEnv()

	cfg := Default()
	cfg.Contexts = append(cfg.Contexts, Context{Name: "prod", APIURL: "https://prod"})
	cfg, err := Overlay(cfg, v)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.PollTimeout)
	assert.Equal(t, 8, cfg.TagBatchSize)
	assert.Equal(t, "prod", cfg.DefaultContext)
	assert.Equal(t, 3, cfg.RepositoryBatchSize)
}

func TestOverlayValidates(t *testing.T) {
	v := viper.New()
	v.Set("tag_batch_size", 0)

	_, err := Overlay(Default(), v)
	assert.Error(t, err)
}
