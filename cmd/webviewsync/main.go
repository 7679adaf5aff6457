package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/embedkit/webviewsync/internal/version"
	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

var red = color.New(color.FgHiRed, color.Bold).SprintFunc()

func main() {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fatal(err)
	}
}

func fatal(err error) {
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprint(os.Stderr, rootCmd.UsageString())
		fmt.Fprintf(os.Stderr, "%s: %s %v\n", version.AppName, red("error:"), err)
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "%s: %s %v\n", version.AppName, red("error:"), err)
	os.Exit(1)
}
