package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrabinow/kpsync/internal/acquire"
	"github.com/jrabinow/kpsync/internal/cache"
	"github.com/jrabinow/kpsync/internal/common"
	"github.com/jrabinow/kpsync/internal/config"
	"github.com/jrabinow/kpsync/internal/filex"
)

type runOptions struct {
	dryRun  bool
	timeout string
}

// addJobFlags registers the flags run and sync share. The timeout flag
// takes an optional value: bare --timeout enables key sharing with the
// default TTL, --timeout=SECONDS picks a custom one.
func addJobFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "reconcile in memory but do not save any store")
	cmd.Flags().StringVar(&opts.timeout, "timeout", "", "share derived store keys with kpsyncd for SECONDS")
	cmd.Flags().Lookup("timeout").NoOptDefVal = strconv.Itoa(int(common.DefaultCacheTTL / time.Second))
}

// parseTimeout maps the raw --timeout value to a TTL. Empty means the
// flag was absent and no key sharing happens.
func parseTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("invalid --timeout value %q: want a non-negative number of seconds", raw)
	}
	return time.Duration(seconds) * time.Second, nil
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [JOB_NAME...]",
		Short: "Run configured sync jobs",
		Long: `Run the named sync jobs from syncconfig.yml. Without arguments every
configured job runs, in name order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				names = cfg.JobNames()
			}

			ttl, err := parseTimeout(opts.timeout)
			if err != nil {
				return err
			}

			runner, cleanup := newJobRunner(cmd, root, ttl, opts.dryRun)
			defer cleanup()

			for _, name := range names {
				job, ok := cfg.Jobs[name]
				if !ok {
					return fmt.Errorf("%w: unknown job %q", common.ErrConfig, name)
				}
				dbs := make([]config.Database, len(job.Databases))
				for i, dbName := range job.Databases {
					dbs[i] = cfg.Databases[dbName]
				}
				if err := runner.RunJob(cmd.Context(), name, dbs, job.Entries, ttl); err != nil {
					return err
				}
			}
			return nil
		},
	}

	addJobFlags(cmd, opts)
	return cmd
}

// newJobRunner builds the runner for one invocation. With a positive TTL
// it connects to the kpsyncd socket; an unreachable daemon downgrades to
// fresh unshared handles rather than failing the run.
func newJobRunner(cmd *cobra.Command, root *rootOptions, ttl time.Duration, dryRun bool) (*Runner, func()) {
	var cacheClient acquire.CacheClient
	cleanup := func() {}

	if ttl > 0 {
		socket := filepath.Join(filex.SocketDir(), common.SocketFileName)
		if c, err := cache.NewClient(socket); err != nil {
			root.log.Warn(cmd.Context(), "handle cache unavailable", "socket", socket, "error", err)
		} else {
			cacheClient = c
			cleanup = func() { _ = c.Close() }
		}
	}

	acq := acquire.NewAcquirer(root.log, cacheClient, os.Stderr, acquire.PromptPassword)
	return NewRunner(root.log, acq, dryRun), cleanup
}
