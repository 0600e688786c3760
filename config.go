package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

// ExitError carries the process exit code for command-line errors.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Config is the resolved configuration of one command.
type Config struct {
	Command string // serve, solve or bot

	LogLevel  string
	LogFormat string

	// serve
	Addr      string
	ProjectID string
	Region    string
	Model     string

	// solve and bot
	Wrap      bool
	Backwards bool
	Workers   int
	Cols      int
	File      string

	// bot
	URL       string
	Headless  bool
	Timeout   time.Duration
	StepDelay time.Duration
	Linger    time.Duration
	Words     []string

	explicit map[string]bool
}

// Options returns the scan options given on the command line.
func (c *Config) Options() wordsearch.Options {
	return wordsearch.Options{Wrap: c.Wrap, Backwards: c.Backwards, Workers: c.Workers}
}

// optionsFor starts from the options stored with p and applies only the
// flags that were set explicitly.
func (c *Config) optionsFor(p *Puzzle) wordsearch.Options {
	opts := p.Options()
	opts.Workers = c.Workers
	if c.explicit["wrap"] {
		opts.Wrap = c.Wrap
	}
	if c.explicit["backwards"] {
		opts.Backwards = c.Backwards
	}
	return opts
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn' or 'error'", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", c.LogFormat)
	}
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	if c.Cols <= 0 {
		return errors.New("cols must be positive")
	}

	switch c.Command {
	case "serve":
		if c.Addr == "" {
			return errors.New("addr is required")
		}
	case "solve":
		if c.File == "" {
			return errors.New("solve requires a puzzle FILE")
		}
	case "bot":
		if c.URL == "" {
			return errors.New("bot requires a page URL")
		}
		if c.Timeout <= 0 {
			return errors.New("timeout must be positive")
		}
		if c.StepDelay < 0 || c.Linger < 0 {
			return errors.New("step-delay and linger must not be negative")
		}
	}
	return nil
}

const usage = `wordsearch - find and select the words of a word-search puzzle.

Usage:
  wordsearch [serve] [options]         run the HTTP API
  wordsearch solve [options] FILE      solve a .txt, .hcl or saved .html puzzle
  wordsearch bot [options] URL         solve a puzzle page in Chrome and select the words

Run 'wordsearch COMMAND -h' for the options of a command.
`

// parseConfig resolves the command, the environment and the flags. It
// returns true when the program should exit cleanly, as after -h.
func parseConfig(args []string, getenv func(string) string, out io.Writer) (*Config, bool, error) {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve", "solve", "bot":
	case "help":
		fmt.Fprint(out, usage)
		return nil, true, nil
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q\n\n%s", cmd, usage)}
	}

	cfg := &Config{
		Command:   cmd,
		LogLevel:  envOr(getenv, "LOG_LEVEL", "info"),
		LogFormat: envOr(getenv, "LOG_FORMAT", "text"),
		Addr:      ":" + envOr(getenv, "PORT", "8080"),
		ProjectID: getenv("GCP_PROJECT_ID"),
		Region:    getenv("GCP_REGION"),
		Model:     getenv("GEMINI_MODEL"),
	}

	fs := flag.NewFlagSet("wordsearch "+cmd, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Logging level: 'debug', 'info', 'warn' or 'error'.")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log output format: 'text' or 'json'.")
	fs.IntVar(&cfg.Workers, "workers", 0, "Row bands scanned in parallel. 0 or 1 scans sequentially.")
	fs.IntVar(&cfg.Cols, "cols", defaultGridCols, "Letters per row when reading a grid from an HTML page.")

	var words string
	switch cmd {
	case "serve":
		fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address.")
	case "solve", "bot":
		fs.BoolVar(&cfg.Wrap, "wrap", false, "Let words wrap around the grid edges.")
		fs.BoolVar(&cfg.Backwards, "backwards", true, "Also search the reversed directions.")
	}
	if cmd == "bot" {
		fs.BoolVar(&cfg.Headless, "headless", false, "Run Chrome without a window.")
		fs.DurationVar(&cfg.Timeout, "timeout", 2*time.Minute, "Deadline for the whole run.")
		fs.DurationVar(&cfg.StepDelay, "step-delay", 20*time.Millisecond, "Pause between pointer moves of a drag.")
		fs.DurationVar(&cfg.Linger, "linger", 0, "Keep the browser open this long after the last word.")
		fs.StringVar(&words, "words", "", "Comma-separated word list replacing the one read from the page.")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	cfg.explicit = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		cfg.explicit[f.Name] = true
	})
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.Words = splitWords(words)

	switch cmd {
	case "solve":
		cfg.File = fs.Arg(0)
	case "bot":
		cfg.URL = fs.Arg(0)
	}
	if fs.NArg() > 1 || (cmd == "serve" && fs.NArg() > 0) {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(fs.Args(), " "))}
	}

	if err := cfg.validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, false, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitWords(s string) []string {
	var words []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
