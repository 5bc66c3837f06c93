package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/prefs"
	"github.com/scottbass3/reglite/internal/tui"
)

func newBrowseCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive registry browser (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, s)
		},
	}
	addBrowseFlags(cmd.Flags())
	return cmd
}

func runBrowse(cmd *cobra.Command, s *settings) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the browser needs a terminal; use `reglite status` for plain output")
	}
	s.bind(cmd.Flags())

	cfg, err := s.load()
	if err != nil {
		return err
	}
	logger, closeLog, err := s.logger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	current, err := s.resolveContext(cfg, true)
	if err != nil {
		return err
	}

	debug := s.v.GetBool("debug")
	logCh := make(chan api.RequestLog, 256)
	var requests api.RequestLogger
	if debug {
		requests = makeRequestLogger(logCh, logger.WithPrefix("requests"))
	} else {
		close(logCh)
		logCh = nil
	}

	connect := connector(cfg, logger, requests)
	gw, err := connect(toContextOption(current))
	if err != nil {
		return fmt.Errorf("context %s: %w", current.Name, err)
	}

	p, err := prefs.Load(prefs.DefaultPath())
	if err != nil {
		logger.Warn("preferences unreadable, using defaults", "err", err)
		p = prefs.InMemory()
	}

	model := tui.NewModel(gw, tui.Options{
		Context:  toContextOption(current),
		Contexts: toContextOptions(cfg.Contexts),
		Connect:  connect,
		Engine:   engineOptions(cfg, logger),
		Prefs:    p,
		Location: s.v.GetString("location"),
		Debug:    debug,
		Logs:     logCh,
	})
	logger.Info("starting browser", "context", current.Name, "api", current.APIURL)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := program.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	} else {
		model.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
