package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/browser"
	"github.com/scottbass3/reglite/internal/config"
	"github.com/scottbass3/reglite/internal/contextstore"
	"github.com/scottbass3/reglite/internal/status"
	"github.com/scottbass3/reglite/internal/tui"
)

var version = "dev"

// settings is what every command shares: flags, REGLITE_* environment
// and the config file, merged by viper.
type settings struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	s := &settings{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "reglite",
		Short:         "Browse the container registries behind a reglite backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is normal.
			_ = godotenv.Load()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, s)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file (defaults to $XDG_CONFIG_HOME/reglite/config.yaml)")
	flags.String("context", "", "Context to use from the config file")
	flags.String("api", "", "Backend URL, overrides any context (e.g. http://localhost:8080)")
	flags.String("log-file", "", "Write logs to this file")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.Duration("request-timeout", 0, "Timeout for a single backend request")
	flags.Duration("poll-interval", 0, "Delay between status polls while validating")
	flags.Duration("poll-timeout", 0, "Give up validating after this long")
	flags.String("tag-sort", "", "Tag order: registry or semver")

	addBrowseFlags(cmd.Flags())
	s.bind(flags)

	cmd.AddCommand(
		newBrowseCmd(s),
		newStatusCmd(s),
		newDeleteCmd(s),
		newConfigCmd(s),
	)
	return cmd
}

func addBrowseFlags(flags *pflag.FlagSet) {
	flags.String("location", "", "Open this location once registries are loaded (e.g. ?registry=hub)")
	flags.Bool("debug", false, "Show backend requests below the list")
}

// bind maps every flag onto the viper key named like its YAML field.
func (s *settings) bind(flags *pflag.FlagSet) {
	s.v.SetEnvPrefix("reglite")
	s.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	s.v.AutomaticEnv()
	flags.VisitAll(func(f *pflag.Flag) {
		_ = s.v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func (s *settings) configPath() string {
	if path := strings.TrimSpace(s.v.GetString("config")); path != "" {
		return path
	}
	return config.DefaultPath()
}

// load reads the config file, writing the default one on first run, and
// applies flag and environment overrides.
func (s *settings) load() (config.Config, error) {
	path := s.configPath()
	if _, err := config.Ensure(path); err != nil {
		return config.Config{}, fmt.Errorf("prepare config %s: %w", path, err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return config.Overlay(cfg, s.v)
}

// logger writes to --log-file when given, otherwise to fallback. The TUI
// passes io.Discard since it owns the terminal.
func (s *settings) logger(cfg config.Config, fallback io.Writer) (*log.Logger, func(), error) {
	out, closeFn := fallback, func() {}
	if path := strings.TrimSpace(s.v.GetString("log_file")); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closeFn = f, func() { _ = f.Close() }
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "reglite",
	})
	return logger, closeFn, nil
}

func engineOptions(cfg config.Config, logger *log.Logger) browser.Options {
	return browser.Options{
		RepositoryBatchSize: cfg.RepositoryBatchSize,
		TagBatchSize:        cfg.TagBatchSize,
		ManyTagsThreshold:   cfg.ManyTagsThreshold,
		RequestTimeout:      cfg.RequestTimeout,
		TagSort:             cfg.TagSort,
		Poller:              pollerOptions(cfg),
		Logger:              logger,
	}
}

func pollerOptions(cfg config.Config) []status.Option {
	return []status.Option{
		status.WithInterval(cfg.PollInterval),
		status.WithTimeout(cfg.PollTimeout),
	}
}

func connector(cfg config.Config, logger *log.Logger, requests api.RequestLogger) tui.Connector {
	return func(ctx tui.ContextOption) (browser.Gateway, error) {
		gw, err := dial(cfg, logger, requests, ctx.APIURL)
		if err != nil {
			return nil, err
		}
		return gw, nil
	}
}

func dial(cfg config.Config, logger *log.Logger, requests api.RequestLogger, apiURL string) (*api.Gateway, error) {
	opts := []api.Option{
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
	}
	if requests != nil {
		opts = append(opts, api.WithRequestLogger(requests))
	}
	return api.New(apiURL, opts...)
}

func toContextOption(ctx config.Context) tui.ContextOption {
	return tui.ContextOption{Name: ctx.Name, APIURL: ctx.APIURL}
}

func toContextOptions(contexts []config.Context) []tui.ContextOption {
	out := make([]tui.ContextOption, 0, len(contexts))
	for _, ctx := range contexts {
		out = append(out, toContextOption(ctx))
	}
	return out
}

// resolveContext applies --api and --context. The picker is only offered
// when nothing chose a context and there is more than one.
func (s *settings) resolveContext(cfg config.Config, interactive bool) (config.Context, error) {
	apiURL := s.v.GetString("api")
	if interactive && strings.TrimSpace(apiURL) == "" && cfg.DefaultContext == "" && len(cfg.Contexts) > 1 {
		choice, makeDefault, err := selectContextTUI(cfg.Contexts, gatewayCheck(cfg))
		if err != nil {
			return config.Context{}, err
		}
		if makeDefault && choice.Name != "" {
			if err := contextstore.New(s.configPath()).SetDefault(choice.Name); err != nil {
				return config.Context{}, err
			}
		}
		return choice, nil
	}
	return cfg.ResolveContext("", apiURL)
}
