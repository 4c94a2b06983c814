package mpv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"framed/internal/config"
)

func testDisplay() config.Display {
	cfg := config.Default()
	return cfg.Display
}

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(testDisplay(), WithBinary("/opt/mpv"))
	if cli.binary != "/opt/mpv" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestNewCLIUsesConfiguredBinary(t *testing.T) {
	display := testDisplay()
	display.PlayerBinary = "/usr/local/bin/mpv"
	cli := NewCLI(display)
	if cli.binary != "/usr/local/bin/mpv" {
		t.Fatalf("expected configured binary, got %q", cli.binary)
	}
}

func TestPlayRequiresPath(t *testing.T) {
	cli := NewCLI(testDisplay())
	if err := cli.Play(context.Background(), ""); err == nil {
		t.Fatal("expected error when video path is empty")
	}
}

func TestPlayBlocksUntilExit(t *testing.T) {
	setHelperCommand(t, "success")

	cli := NewCLI(testDisplay())
	if err := cli.Play(context.Background(), "/media/clip_h264.mp4"); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}
}

func TestPlayFailureIncludesOutput(t *testing.T) {
	setHelperCommand(t, "failure")

	cli := NewCLI(testDisplay())
	err := cli.Play(context.Background(), "/media/clip_h264.mp4")
	if err == nil {
		t.Fatal("expected playback failure error")
	}
	if !strings.Contains(err.Error(), "no video track") {
		t.Fatalf("expected player output in error, got %v", err)
	}
}

func TestPlayFullscreenFlag(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "MPV_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	display := testDisplay()
	display.Fullscreen = true
	cli := NewCLI(display)
	if err := cli.Play(context.Background(), "/media/clip_h264.mp4"); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}

	found := false
	for _, arg := range capturedArgs {
		if arg == "--fs" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected --fs in args %v", capturedArgs)
	}
}

func TestShowReplacesPreviousImage(t *testing.T) {
	setHelperCommand(t, "hold")

	cli := NewCLI(testDisplay())
	if err := cli.Show(context.Background(), "/run/framed/frame-1.png"); err != nil {
		t.Fatalf("Show returned error: %v", err)
	}
	first := cli.current
	if first == nil {
		t.Fatal("expected a running image process")
	}

	if err := cli.Show(context.Background(), "/run/framed/frame-2.png"); err != nil {
		t.Fatalf("Show returned error: %v", err)
	}
	select {
	case <-first.done:
	case <-time.After(5 * time.Second):
		t.Fatal("previous image process was not stopped")
	}

	cli.Clear()
	if cli.current != nil {
		t.Fatal("expected no image process after Clear")
	}
}

func TestClearWithoutShow(t *testing.T) {
	cli := NewCLI(testDisplay())
	cli.Clear()
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("MPV_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("MPV_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "no video track")
		os.Exit(1)
	case "hold":
		time.Sleep(time.Minute)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
