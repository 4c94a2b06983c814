package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"framed/internal/config"
	"framed/internal/convert"
	"framed/internal/daemon"
	"framed/internal/jobs"
	"framed/internal/preflight"
	"framed/internal/services/ffmpeg"
)

func newConvertCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Run the video conversion daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			logger, err := cmdCtx.newLogger("convert")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := checkPreflight(ctx, cfg); err != nil {
				return err
			}

			store, err := jobs.Open(cfg)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer store.Close()

			worker := convert.NewWorker(cfg, store, ffmpeg.NewCLI(cfg.Conversion), logger)
			d, err := daemon.New(cfg, "convert", worker, logger)
			if err != nil {
				return err
			}
			if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// checkPreflight fails fast when a filesystem check does not pass.
func checkPreflight(ctx context.Context, cfg *config.Config) error {
	failed := preflight.Failed(preflight.RunAll(ctx, cfg))
	if len(failed) == 0 {
		return nil
	}
	details := make([]string, 0, len(failed))
	for _, result := range failed {
		details = append(details, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(details, "; "))
}
