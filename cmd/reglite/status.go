package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/cobra"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/status"
)

const statusWrapWidth = 72

func newStatusCmd(s *settings) *cobra.Command {
	var validate bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print every registry grouped by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, s, validate)
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "Ask the backend to re-check every registry and wait for the result")
	return cmd
}

func runStatus(cmd *cobra.Command, s *settings, validate bool) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	logger, closeLog, err := s.logger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	current, err := s.resolveContext(cfg, false)
	if err != nil {
		return err
	}
	gw, err := dial(cfg, logger, nil, current.APIURL)
	if err != nil {
		return err
	}

	poller := status.NewPoller(gw, append(pollerOptions(cfg), status.WithLogger(logger))...)
	ctx := cmd.Context()
	snap, err := poller.LoadInitial(ctx)
	if err != nil {
		return fmt.Errorf("load registries: %w", err)
	}
	out := cmd.OutOrStdout()
	if snap.Fallback {
		fmt.Fprintln(out, color.YellowString("registry status unavailable, showing names only"))
	}

	entries := snap.Entries
	if validate {
		outcome, err := poller.Validate(ctx, nil)
		if err != nil {
			return err
		}
		if outcome.KickoffErr != nil {
			fmt.Fprintln(out, color.YellowString("validation request failed: %v", outcome.KickoffErr))
		}
		if outcome.TimedOut {
			fmt.Fprintln(out, color.YellowString("validation timed out, some registries are still checking"))
		}
		if outcome.Ticks > 0 && outcome.Last.Entries != nil {
			entries = status.Merge(entries, outcome.Last.Entries)
		}
	}

	printStatus(out, entries)
	return nil
}

// printStatus writes the groups in display order, every group expanded.
func printStatus(w io.Writer, entries []api.RegistryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No registries configured.")
		return
	}
	expanded := func(api.Status) bool { return false }
	for i, group := range status.Groups(entries, expanded) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		heading := statusColor(group.Status).Add(color.Bold)
		fmt.Fprintln(w, heading.Sprintf("%s (%d)", statusTitle(group.Status), len(group.Entries)))
		for _, entry := range group.Entries {
			fmt.Fprintln(w, formatStatusLine(entry))
			if msg := strings.TrimSpace(entry.ErrorMessage); msg != "" {
				wrapped := wordwrap.WrapString(msg, statusWrapWidth)
				for _, line := range strings.Split(wrapped, "\n") {
					fmt.Fprintln(w, "      "+color.RedString(line))
				}
			}
		}
	}
}

func formatStatusLine(entry api.RegistryEntry) string {
	latency := "-"
	if entry.ResponseTimeMs > 0 {
		latency = fmt.Sprintf("%d ms", entry.ResponseTimeMs)
	}
	checked := "never"
	if !entry.LastChecked.IsZero() {
		checked = entry.LastChecked.Local().Format("2006-01-02 15:04")
	}
	state := statusColor(entry.Status).Sprint(status.DisplayStatus(entry.Status).String())
	return fmt.Sprintf("  %-24s %s  %-8s %-16s %s", entry.Name, state, latency, checked, entry.URL)
}

func statusColor(s api.Status) *color.Color {
	switch status.DisplayStatus(s) {
	case api.StatusOnline:
		return color.New(color.FgGreen)
	case api.StatusOffline:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func statusTitle(s api.Status) string {
	label := s.String()
	return strings.ToUpper(label[:1]) + label[1:]
}
