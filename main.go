package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()

	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses the command line and executes the selected command.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	cfg, exit, err := parseConfig(args, getenv, stderr)
	if err != nil || exit {
		return err
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, stderr)

	switch cfg.Command {
	case "solve":
		return runSolve(ctx, cfg, stdout)
	case "bot":
		return runBot(ctx, cfg, logger)
	default:
		return runServe(ctx, cfg, logger)
	}
}

func runServe(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	var analyzer imageAnalyzer
	if cfg.ProjectID != "" {
		gemini, err := NewGeminiClient(ctx, cfg.ProjectID, cfg.Region, cfg.Model)
		if err != nil {
			return fmt.Errorf("init Gemini: %w", err)
		}
		analyzer = gemini
		logger.Info("Gemini client initialised", "project", cfg.ProjectID, "model", gemini.model)
	} else {
		logger.Warn("GCP_PROJECT_ID not set, image analysis disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewServer(ctx, NewStore(), analyzer, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// runSolve prints where each word of a puzzle file is.
func runSolve(ctx context.Context, cfg *Config, out io.Writer) error {
	p, err := LoadPuzzleFile(cfg.File, cfg.Cols)
	if err != nil {
		return err
	}

	opts := cfg.optionsFor(p)
	g, res, err := p.Solve(ctx, opts)
	if err != nil {
		return err
	}
	printSolution(out, g, p.Words, res, opts.Wrap)
	return nil
}

// printSolution writes every placement of every word, in word-list order.
func printSolution(out io.Writer, g *wordsearch.Grid, words []string, res wordsearch.Result, wrap bool) {
	for _, w := range words {
		set, ok := res.Lookup(w)
		if !ok {
			fmt.Fprintf(out, "- '%s' NOT FOUND\n", w)
			continue
		}
		fmt.Fprintf(out, "- '%s' found %d times\n", w, len(set))
		for _, p := range set.Sorted() {
			m := newMatch(g, w, p, wrap)
			fmt.Fprintf(out, "    - Start letter %c %s, direction %s\n", g.At(m.Start), m.Start, m.Direction)
			fmt.Fprintf(out, "    - Last letter %c %s", g.At(m.End), m.End)
			if m.Wraps {
				fmt.Fprint(out, " (wraps)")
			}
			fmt.Fprintln(out)
		}
	}
}
