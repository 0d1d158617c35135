package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// errSessionDone signals that a child finished cleanly or was asked to stop,
// which ends the session without being an error.
var errSessionDone = errors.New("dev session finished")

// sessionError carries a failed child's exit status so the process can exit
// with a matching code.
type sessionError struct {
	code int
	err  error
}

func (e *sessionError) Error() string { return e.err.Error() }

func (e *sessionError) Unwrap() error { return e.err }

// devSession runs the tooling dev server and the strings watcher side by
// side, output passed through. Whichever child stops first takes the other
// down with it: a clean or signalled stop ends the session successfully, a
// failing child's exit status becomes the session's.
func (w *Workspace) devSession(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := filepath.Join(w.Root, toolingRepos[0])
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runChild(ctx, "dev server", dir, w.Stdout, w.Stderr, w.DevServerArgs)
	})
	g.Go(func() error {
		return runChild(ctx, "strings watcher", dir, w.Stdout, w.Stderr, w.WatcherArgs)
	})

	err := g.Wait()
	if errors.Is(err, errSessionDone) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runChild runs one long-lived child, terminating it when ctx is cancelled.
// The first child to return cancels ctx via the errgroup, so every return
// value here is non-nil.
func runChild(ctx context.Context, label, dir string, stdout, stderr io.Writer, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	if ctx.Err() != nil {
		// The session was already shutting down; however this child went
		// down, it is not the cause.
		return context.Canceled
	}
	if err == nil {
		fmt.Fprintf(stderr, "%s exited\n", label)
		return errSessionDone
	}
	code := 1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() < 0 {
			// Killed by a signal from outside: a stop request, not a failure.
			fmt.Fprintf(stderr, "%s was terminated\n", label)
			return errSessionDone
		}
		code = exitErr.ExitCode()
	}
	return &sessionError{code: code, err: fmt.Errorf("%s: %w", label, err)}
}

// ensureEntr installs the entr file watcher when it is not already on PATH.
// Installation is best effort: when no package manager can provide it, the
// user is pointed at a manual install and the command still succeeds.
func ensureEntr(stderr io.Writer) error {
	if _, err := exec.LookPath("entr"); err == nil {
		fmt.Fprintf(stderr, "entr is already installed\n")
		return nil
	}

	attempts := [][]string{
		{"sudo", "apt-get", "install", "-y", "entr"},
		{"brew", "install", "entr"},
	}
	for _, argv := range attempts {
		fmt.Fprintf(stderr, "trying %s\n", argv[0])
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Stdout = stderr
		cmd.Stderr = stderr
		if cmd.Run() == nil {
			return nil
		}
	}

	fmt.Fprintf(stderr, "could not install entr automatically; install it manually from https://eradman.com/entrproject/\n")
	return nil
}
