package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jrabinow/kpsync/internal/config"
)

func newListCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "list {all|db|jobs}",
		Short:     "Show configured databases and jobs",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"all", "db", "jobs"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if args[0] == "all" || args[0] == "db" {
				listDatabases(out, cfg)
			}
			if args[0] == "all" || args[0] == "jobs" {
				listJobs(out, cfg)
			}
			return nil
		},
	}
}

func listDatabases(out io.Writer, cfg *config.Config) {
	for _, name := range cfg.DatabaseNames() {
		db := cfg.Databases[name]
		if db.KeyFile != "" {
			fmt.Fprintf(out, "db %s: %s (keyfile %s)\n", name, db.File, db.KeyFile)
			continue
		}
		fmt.Fprintf(out, "db %s: %s\n", name, db.File)
	}
}

func listJobs(out io.Writer, cfg *config.Config) {
	for _, name := range cfg.JobNames() {
		job := cfg.Jobs[name]
		fmt.Fprintf(out, "job %s: db=%v\n", name, job.Databases)
		for _, entry := range job.Entries {
			fmt.Fprintf(out, "  %s\n", entry)
		}
	}
}
