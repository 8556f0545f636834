package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"labadmin/cmd/labadmin/ui"
	"labadmin/internal/api"
	"labadmin/internal/bootstrap"
	"labadmin/internal/config"
	"labadmin/internal/journal"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newBootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "bootstrap",
		Aliases: []string{"status"},
		Short:   "Load every site section and show how many entries each holds",
		Args:    cobra.NoArgs,
		RunE:    runBootstrap,
	}
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	client := api.NewClient(cfg.Backend.BaseURL, cfg.GetBackendTimeout())
	data, err := bootstrap.Init(ctx, client)

	fmt.Fprintf(out, "Backend: %s\n\n", client.BaseURL())
	counts := data.Counts()
	sections := make([]string, 0, len(counts))
	for s := range counts {
		sections = append(sections, s)
	}
	sort.Strings(sections)

	var failed map[string]error
	var fe *bootstrap.FetchError
	if errors.As(err, &fe) {
		failed = fe.Failures
	}

	table := ui.NewSimpleTable("", []string{"Section", "Entries", "Status"})
	table.MaxWidth = 60
	for _, s := range append([]string{bootstrap.SectionAbout, bootstrap.SectionPublications}, sections...) {
		status := "ok"
		if ferr, bad := failed[s]; bad {
			status = "failed: " + failureDetail(ferr)
		}
		entries := "-"
		if n, ok := counts[s]; ok {
			entries = fmt.Sprint(n)
		}
		table.AddRow(strings.ReplaceAll(s, "_", " "), entries, status)
	}
	fmt.Fprint(out, table.View(ui.DefaultStyles()))
	return err
}

func failureDetail(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		if d := se.Detail(); d != "" {
			return fmt.Sprintf("%d %s", se.Code, d)
		}
		return fmt.Sprintf("status %d", se.Code)
	}
	return err.Error()
}

func newHistoryCmd() *cobra.Command {
	var (
		entity     string
		failedOnly bool
		limit      int
		olderThan  time.Duration
	)

	history := &cobra.Command{
		Use:   "history",
		Short: "Show recent content changes from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			store, err := requireJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(ctx, journal.Filter{Entity: entity, FailedOnly: failedOnly, Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No changes recorded.")
				return nil
			}
			table := ui.NewSimpleTable("", []string{"Time", "Entity", "Action", "ID", "Outcome", "Detail"})
			table.MaxWidth = 48
			for _, e := range entries {
				table.AddRow(
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Entity,
					string(e.Action),
					e.TargetID.String(),
					string(e.Outcome),
					e.Detail,
				)
			}
			fmt.Fprint(out, table.View(ui.DefaultStyles()))
			return nil
		},
	}
	history.Flags().StringVar(&entity, "entity", "", "Only show changes to this entity (e.g. contact)")
	history.Flags().BoolVar(&failedOnly, "failed", false, "Only show changes that did not take effect")
	history.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal entries older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			store, err := requireJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Prune(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age of the entries to delete")
	history.AddCommand(prune)
	return history
}

func requireJournal() (*journal.Store, error) {
	if !cfg.Journal.Enabled {
		return nil, errors.New("the journal is disabled (journal.enabled: false)")
	}
	return journal.NewStore(cfg.Journal.DatabasePath)
}

func newConfigCmd() *cobra.Command {
	var force bool

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(show, initCmd)
	return configCmd
}
