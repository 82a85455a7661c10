// Package cli wires the kpsync command tree: list, run and sync, plus
// the global configuration and logging flags they share.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/jrabinow/kpsync/internal/logging"
)

// rootOptions carries the global flags and the logger derived from them.
// One instance is shared by every subcommand of a command tree.
type rootOptions struct {
	configPath string
	debug      bool
	log        logging.Logger
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "kpsync",
		Short: "Reconcile credential entries across encrypted store replicas",
		Long: `kpsync propagates the most recently modified copy of selected entries
across a set of encrypted credential-store replicas. Replicas and jobs
are declared in syncconfig.yml; ad-hoc runs can name stores directly.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.log = logging.NewTextLogger(cmd.ErrOrStderr(), opts.debug)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to syncconfig.yml")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(
		newListCommand(opts),
		newRunCommand(opts),
		newSyncCommand(opts),
	)
	return cmd
}

// Execute runs the command tree and maps any failure to exit status 1.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		return 1
	}
	return 0
}
