package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jrabinow/kpsync/internal/cache"
	"github.com/jrabinow/kpsync/internal/common"
	"github.com/jrabinow/kpsync/internal/filex"
	"github.com/jrabinow/kpsync/internal/logging"
)

func newCommand() *cobra.Command {
	var (
		debug  bool
		socket string
	)

	cmd := &cobra.Command{
		Use:   "kpsyncd",
		Short: "Shared handle-cache daemon for kpsync",
		Long: `kpsyncd holds derived store keys for a bounded time so that repeated
kpsync runs do not re-prompt for passwords. It listens on a per-user
unix socket; keys expire after their registered TTL.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.NewTextLogger(cmd.ErrOrStderr(), debug)

			ctx, stop := signal.NotifyContext(cmd.Context(),
				syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()

			if err := filex.EnsureDir(filepath.Dir(socket)); err != nil {
				return err
			}

			log.Info(ctx, "starting handle-cache daemon", "socket", socket)
			return cache.NewServer(socket, log).Run(ctx)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringVar(&socket, "socket",
		filepath.Join(filex.SocketDir(), common.SocketFileName), "unix socket to listen on")
	return cmd
}

func main() {
	if err := newCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
