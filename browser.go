package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

const wordListXPath = "//div[contains(@class, 'words')]"

// scrapeScript returns the leaf texts under the first word list and grid
// containers, matching what ParseHTMLPuzzle reads from a saved page.
const scrapeScript = `(() => {
  const leaves = (sel) => {
    const root = document.querySelector(sel);
    if (!root) return [];
    return Array.from(root.querySelectorAll('*'))
      .filter((e) => e.children.length === 0)
      .map((e) => e.textContent.trim())
      .filter((t) => t !== '');
  };
  return { words: leaves(%q), letters: leaves(%q) };
})()`

// centresScript scrolls the first letter into view and returns the viewport
// centre of the letters at two row-major indices.
const centresScript = `(() => {
  const root = document.querySelector(%q);
  if (!root) return [];
  const cells = Array.from(root.querySelectorAll('*'))
    .filter((e) => e.children.length === 0 && e.textContent.trim() !== '');
  const from = cells[%d], to = cells[%d];
  if (!from || !to) return [];
  from.scrollIntoView({ block: 'center', inline: 'center' });
  return [from, to].map((e) => {
    const r = e.getBoundingClientRect();
    return { x: r.left + r.width / 2, y: r.top + r.height / 2 };
  });
})()`

// BrowserConfig controls the browser used by the bot.
type BrowserConfig struct {
	Headless  bool
	Cols      int           // letters per grid row on the page
	Steps     int           // intermediate pointer moves per drag
	StepDelay time.Duration // pause between pointer moves
}

// Browser drives a Chrome tab: it reads a puzzle from a live page and drags
// across the grid to select words.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    BrowserConfig
	logger *slog.Logger
}

// NewBrowser starts Chrome. Close must be called to stop it.
func NewBrowser(parent context.Context, cfg BrowserConfig, logger *slog.Logger) (*Browser, error) {
	if cfg.Cols <= 0 {
		cfg.Cols = defaultGridCols
	}
	if cfg.Steps <= 0 {
		cfg.Steps = 10
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.WindowSize(1280, 1024),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
	)

	b := &Browser{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		cfg:    cfg,
		logger: logger,
	}

	// The first Run starts the browser; later runs only borrow the tab.
	if err := chromedp.Run(browserCtx); err != nil {
		b.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return b, nil
}

// Close stops the browser.
func (b *Browser) Close() {
	b.cancel()
}

// run executes actions on the tab, aborting when ctx is done.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

type scrapedPage struct {
	Words   []string `json:"words"`
	Letters []string `json:"letters"`
}

// Load opens url and reads its word list and letter grid.
func (b *Browser) Load(ctx context.Context, url string) (*Puzzle, error) {
	b.logger.Info("Loading puzzle page", "url", url)

	var page scrapedPage
	err := b.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(wordListXPath, chromedp.BySearch),
		chromedp.Evaluate(fmt.Sprintf(scrapeScript, wordListSelector, gridSelector), &page),
	)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", url, err)
	}

	p, err := puzzleFromCells(page.Words, page.Letters, b.cfg.Cols, "browser")
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", url, err)
	}
	p.Title = url
	b.logger.Debug("Scraped puzzle", "rows", len(p.Rows), "words", len(p.Words))
	return p, nil
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// dragPath returns the pointer positions after the press at from: steps
// evenly spaced points, the last one being to.
func dragPath(from, to point, steps int) []point {
	if steps < 1 {
		steps = 1
	}
	path := make([]point, steps)
	for i := range steps {
		t := float64(i+1) / float64(steps)
		path[i] = point{
			X: from.X + (to.X-from.X)*t,
			Y: from.Y + (to.Y-from.Y)*t,
		}
	}
	return path
}

// Drag presses on the from cell, moves to the to cell and releases.
func (b *Browser) Drag(ctx context.Context, from, to wordsearch.Cell) error {
	cols := b.cfg.Cols
	if from.Col >= cols || to.Col >= cols {
		return fmt.Errorf("drag %s..%s: column outside a %d-wide grid", from, to, cols)
	}

	var centres []point
	script := fmt.Sprintf(centresScript, gridSelector, from.Row*cols+from.Col, to.Row*cols+to.Col)
	if err := b.run(ctx, chromedp.Evaluate(script, &centres)); err != nil {
		return fmt.Errorf("locate %s..%s: %w", from, to, err)
	}
	if len(centres) != 2 {
		return fmt.Errorf("locate %s..%s: cells not on page", from, to)
	}
	start, end := centres[0], centres[1]

	return b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := input.DispatchMouseEvent(input.MouseMoved, start.X, start.Y).Do(ctx); err != nil {
			return err
		}
		if err := input.DispatchMouseEvent(input.MousePressed, start.X, start.Y).
			WithButton(input.Left).WithButtons(1).WithClickCount(1).Do(ctx); err != nil {
			return err
		}
		for _, p := range dragPath(start, end, b.cfg.Steps) {
			if err := input.DispatchMouseEvent(input.MouseMoved, p.X, p.Y).
				WithButton(input.Left).WithButtons(1).Do(ctx); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.cfg.StepDelay):
			}
		}
		return input.DispatchMouseEvent(input.MouseReleased, end.X, end.Y).
			WithButton(input.Left).WithClickCount(1).Do(ctx)
	}))
}
