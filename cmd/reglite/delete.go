package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scottbass3/reglite/internal/api"
)

var errDeleteCanceled = errors.New("delete canceled")

// confirmDelete asks before anything is removed. Tests replace it.
var confirmDelete = func(message string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("refusing to delete without --yes when stdin is not a terminal")
	}
	var proceed bool
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &proceed); err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	return proceed, nil
}

func newDeleteCmd(s *settings) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <registry> <repository> <tag>",
		Short: "Delete a tag's manifest, with every tag that points at it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, s, args[0], args[1], args[2], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func runDelete(cmd *cobra.Command, s *settings, registry, repository, tag string, yes bool) error {
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

	ctx := cmd.Context()
	entries, err := gw.RegistryStatuses(ctx)
	if err == nil {
		for _, entry := range entries {
			if entry.Name == registry && entry.Status == api.StatusOffline {
				return api.Preconditionf("registry %s is offline", registry)
			}
		}
	} else {
		logger.Warn("could not check registry status", "err", err)
	}

	manifest, err := gw.Manifest(ctx, registry, repository, tag)
	if err != nil {
		return fmt.Errorf("manifest for %s:%s: %w", repository, tag, err)
	}
	if err := api.ValidateDigest(manifest.Digest); err != nil {
		return fmt.Errorf("cannot delete %s: %w", tag, err)
	}

	if !yes {
		message := fmt.Sprintf("Delete %s:%s (%s) from %s? Every tag pointing at this manifest goes with it.",
			repository, tag, manifest.Digest, registry)
		proceed, err := confirmDelete(message)
		if err != nil {
			return err
		}
		if !proceed {
			return errDeleteCanceled
		}
	}

	if err := gw.DeleteManifest(ctx, registry, repository, manifest.Digest); err != nil {
		return fmt.Errorf("delete %s:%s: %w", repository, tag, err)
	}
	logger.Info("deleted manifest", "registry", registry, "repository", repository, "tag", tag, "digest", manifest.Digest)
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s:%s (%s)\n", repository, tag, manifest.Digest)
	return nil
}
