package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/spf13/cobra"

	"github.com/idelchi/mrdu/internal/diskusage"
	"github.com/idelchi/mrdu/internal/tree"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorEnabled resolves the color mode for out.
func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	return isTerminal(out)
}

func logic(cmd *cobra.Command, settings Settings) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if settings.Debug && settings.ConfigFile != "" {
		fmt.Fprintf(stderr, "[debug]: using config file %s\n", settings.ConfigFile)
	}

	enableProgress := settings.Output != "json" &&
		!settings.Debug &&
		isTerminal(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	result, err := diskusage.Run(ctx, diskusage.Options{
		Path:     settings.Path,
		Apparent: settings.Apparent,
		Threads:  settings.Threads,
		Debug:    settings.Debug,
	}, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	cfg := tree.Config{MaxDepth: settings.MaxDepth, MinPercent: settings.MinPercent}

	if settings.Output == "json" {
		return PrintJSON(result, cfg, stdout)
	}

	var volume *disk.UsageStat

	if usage, err := disk.Usage(result.Path); err == nil {
		volume = usage
	} else if settings.Debug {
		fmt.Fprintf(stderr, "[debug]: volume usage of %s unavailable: %v\n", result.Path, err)
	}

	w := bufio.NewWriter(stdout)

	if err := PrintTree(result, volume, TreeFormat{
		Tree:      cfg,
		Precision: settings.Precision,
		Color:     colorEnabled(settings.Color, stdout),
		Binary:    settings.Binary,
	}, w); err != nil {
		return err
	}

	return w.Flush()
}
