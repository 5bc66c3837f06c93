package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scottbass3/reglite/internal/config"
	"github.com/scottbass3/reglite/internal/contextstore"
)

func newConfigCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := s.configPath()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", path)
				}
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), s.configPath())
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config after flags and environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := s.load()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	contextsCmd := &cobra.Command{
		Use:   "contexts",
		Short: "List configured contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := s.load()
			if err != nil {
				return err
			}
			current, _ := cfg.ResolveContext("", "")
			for _, ctx := range cfg.Contexts {
				marker := " "
				if ctx.Name == current.Name {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %s\n", marker, ctx.Name, ctx.APIURL)
			}
			return nil
		},
	}

	var makeDefault bool
	setContextCmd := &cobra.Command{
		Use:     "set-context <name> <api-url>",
		Aliases: []string{"add-context"},
		Short:   "Add a context, or change the URL of an existing one",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := contextstore.NewService(s.configPath())
			added, err := svc.Upsert(config.Context{Name: args[0], APIURL: args[1]})
			if err != nil {
				return err
			}
			verb := "updated"
			if added {
				verb = "added"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s context %s\n", verb, args[0])
			if makeDefault {
				return svc.Store().SetDefault(args[0])
			}
			return nil
		},
	}
	setContextCmd.Flags().BoolVar(&makeDefault, "default", false, "Also make it the default context")

	useContextCmd := &cobra.Command{
		Use:   "use-context <name>",
		Short: "Make a context the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := contextstore.New(s.configPath()).SetDefault(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "default context is now %s\n", args[0])
			return nil
		},
	}

	removeContextCmd := &cobra.Command{
		Use:   "remove-context <name>",
		Short: "Remove a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := contextstore.NewService(s.configPath()).Remove(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed context %s (%s)\n", removed.Name, removed.APIURL)
			return nil
		},
	}

	cmd.AddCommand(initCmd, pathCmd, showCmd, contextsCmd, setContextCmd, useContextCmd, removeContextCmd)
	return cmd
}
