// Command ma is the movie catalog admin client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/movie-admin/internal/api"
	"github.com/and161185/movie-admin/internal/errs"
	"github.com/and161185/movie-admin/internal/tui"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main runs the command tree under a signal-aware context.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		fail(err)
	}
}

// exitCode maps errors onto stable exit statuses for scripts.
func exitCode(err error) int {
	var apiErr *api.Error
	switch {
	case errors.Is(err, errs.ErrNoSession), errors.Is(err, errs.ErrUnauthorized):
		return 3
	case errors.Is(err, errs.ErrForbidden):
		return 4
	case errors.Is(err, errs.ErrValidation):
		return 5
	case errors.Is(err, tui.ErrAborted), errors.Is(err, context.Canceled):
		return 130
	case errors.As(err, &apiErr):
		return 6
	default:
		return 1
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(exitCode(err))
}
