package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

// dragger selects a word on screen by dragging from its first to its last letter.
type dragger interface {
	Drag(ctx context.Context, from, to wordsearch.Cell) error
}

// BotReport summarises one bot run.
type BotReport struct {
	Selected []string
	Missing  []string
	Skipped  []string
}

// playPuzzle solves p and drags every word that has a straight placement,
// in word-list order.
func playPuzzle(ctx context.Context, d dragger, p *Puzzle, opts wordsearch.Options, logger *slog.Logger) (*BotReport, error) {
	g, res, err := p.Solve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	plan, missing, skipped := planSelections(g, p.Words, res, opts.Wrap)
	report := &BotReport{Missing: missing, Skipped: skipped}

	for _, w := range missing {
		logger.Warn("Word not found", "word", w)
	}
	for _, w := range skipped {
		logger.Warn("Word only found wrapped, not draggable", "word", w)
	}

	for _, sel := range plan {
		logger.Info("Selecting word", "word", sel.Word, "start", sel.Match.Start.String(), "end", sel.Match.End.String())
		if err := d.Drag(ctx, sel.Match.Start, sel.Match.End); err != nil {
			return report, fmt.Errorf("select %s: %w", sel, err)
		}
		report.Selected = append(report.Selected, sel.Word)
	}
	return report, nil
}

// runBot scrapes the puzzle at cfg.URL, solves it and plays it in the browser.
func runBot(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	browser, err := NewBrowser(ctx, BrowserConfig{
		Headless:  cfg.Headless,
		Cols:      cfg.Cols,
		StepDelay: cfg.StepDelay,
	}, logger)
	if err != nil {
		return err
	}
	defer browser.Close()

	puzzle, err := browser.Load(ctx, cfg.URL)
	if err != nil {
		return err
	}
	if len(cfg.Words) > 0 {
		puzzle.Words = cfg.Words
	}

	report, err := playPuzzle(ctx, browser, puzzle, cfg.Options(), logger)
	if err != nil {
		return err
	}
	logger.Info("Puzzle played",
		"selected", len(report.Selected),
		"missing", len(report.Missing),
		"skipped", len(report.Skipped))

	if cfg.Linger > 0 {
		logger.Info("Keeping the browser open", "for", cfg.Linger)
		select {
		case <-ctx.Done():
		case <-time.After(cfg.Linger):
		}
	}
	return nil
}
