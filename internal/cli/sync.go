package cli

import (
	"github.com/spf13/cobra"

	"github.com/jrabinow/kpsync/internal/config"
)

type syncOptions struct {
	runOptions
	databases []string
	entries   []string
}

func newSyncCommand(root *rootOptions) *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync --db NAME_OR_PATH... --entries PATH...",
		Short: "Reconcile specific entries across specific stores",
		Long: `Reconcile the given entries across the given stores without a
configured job. Each --db value is either a database name from
syncconfig.yml or a path[:keyfile] shorthand, so sync works with or
without a configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				// ad-hoc runs can name stores by path alone
				root.log.Debug(cmd.Context(), "no usable config, treating --db values as paths", "error", err)
				cfg = &config.Config{}
			}

			dbs := make([]config.Database, len(opts.databases))
			for i, arg := range opts.databases {
				dbs[i] = cfg.ResolveDatabase(arg)
			}

			ttl, err := parseTimeout(opts.timeout)
			if err != nil {
				return err
			}

			runner, cleanup := newJobRunner(cmd, root, ttl, opts.dryRun)
			defer cleanup()

			return runner.RunJob(cmd.Context(), "adhoc", dbs, opts.entries, ttl)
		},
	}

	cmd.Flags().StringArrayVar(&opts.databases, "db", nil, "store to reconcile: configured name or path[:keyfile]")
	cmd.Flags().StringArrayVar(&opts.entries, "entries", nil, "entry path to reconcile, e.g. Email/Gmail")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("entries")
	addJobFlags(cmd, &opts.runOptions)
	return cmd
}
