package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"framed/internal/daemon"
	"framed/internal/frame"
	"framed/internal/layout"
	"framed/internal/render"
	"framed/internal/services/mpv"
)

func newShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Run the slideshow daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			logger, err := cmdCtx.newLogger("show")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := checkPreflight(ctx, cfg); err != nil {
				return err
			}

			player := mpv.NewCLI(cfg.Display)
			compositor := render.NewCompositor(
				filepath.Join(cfg.Paths.StateDir, "frames"),
				layout.Size{Width: cfg.Display.Width, Height: cfg.Display.Height},
				cfg.Display.Background,
			)
			scheduler := frame.NewScheduler(cfg, player, player, compositor, logger)
			d, err := daemon.New(cfg, "show", scheduler, logger)
			if err != nil {
				return err
			}

			readControls(ctx, scheduler)

			if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// readControls maps terminal input onto slideshow navigation when stdin is
// interactive: "n" skips forward, "p" skips back. Running under systemd
// there is no terminal and the slideshow just advances on its own.
func readControls(ctx context.Context, scheduler *frame.Scheduler) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return
	}
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
			case "n", "next":
				scheduler.Next()
			case "p", "prev", "previous":
				scheduler.Previous()
			}
		}
	}()
}
