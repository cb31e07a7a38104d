// Command payments_engine replays CSV transaction files into one in-memory
// ledger and prints the resulting accounts as CSV on stdout.
//
//	payments_engine [flags] transactions.csv [more.csv ...]
//
// Files are processed concurrently. Logs go to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/payments_engine/internal/adapters/csvio"
	portssvc "github.com/SscSPs/payments_engine/internal/core/ports/services"
	"github.com/SscSPs/payments_engine/internal/core/services"
	"github.com/SscSPs/payments_engine/internal/middleware"
	"github.com/SscSPs/payments_engine/internal/repositories/database/memory"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("payments_engine", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", "warn", "debug, info, warn or error")
	parallel := fs.Int("parallel", 0, "maximum number of files processed at once (0 = all)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: payments_engine [flags] <file.csv|-> [...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(stderr, "invalid --log-level: %v\n", err)
		return 2
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = middleware.WithLogger(ctx, logger)

	container := services.NewServiceContainer(memory.NewRepositoryProvider(), nil)

	failed := processFiles(ctx, container.Engine, fs.Args(), *parallel, stdin, logger)

	accounts, err := container.Engine.Snapshot(ctx)
	if err != nil {
		logger.Error("Failed to read ledger snapshot", slog.String("error", err.Error()))
		return 1
	}
	if err := csvio.NewWriter(stdout).WriteAccounts(accounts); err != nil {
		logger.Error("Failed to write accounts", slog.String("error", err.Error()))
		return 1
	}

	if failed {
		return 1
	}
	return 0
}

// processFiles runs one stream per path. A stream that ends early is logged
// and reported through the return value; the other streams keep going.
func processFiles(ctx context.Context, engine portssvc.StreamProcessorSvc, paths []string, parallel int, stdin io.Reader, logger *slog.Logger) bool {
	var g errgroup.Group
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for _, path := range paths {
		g.Go(func() error {
			if err := processFile(ctx, engine, path, stdin); err != nil {
				logger.Error("Stream ended early", slog.String("source", path), slog.String("error", err.Error()))
				return err
			}
			return nil
		})
	}
	return g.Wait() != nil
}

func processFile(ctx context.Context, engine portssvc.StreamProcessorSvc, path string, stdin io.Reader) error {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	_, err := engine.ProcessStream(ctx, csvio.NewReader(r, path, "file"))
	return err
}
