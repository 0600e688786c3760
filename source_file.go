package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// LoadPuzzleFile reads a puzzle from a .txt, .hcl or saved .html page.
// cols is the row width used to reshape the flat letter list of an HTML page.
func LoadPuzzleFile(path string, cols int) (*Puzzle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read puzzle file: %w", err)
	}

	var p *Puzzle
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", "":
		p, err = ParseTextPuzzle(bytes.NewReader(data))
	case ".hcl":
		p, err = ParseHCLPuzzle(data, path)
	case ".html", ".htm":
		p, err = ParseHTMLPuzzle(bytes.NewReader(data), cols)
	default:
		return nil, fmt.Errorf("unsupported puzzle file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if p.Title == "" {
		p.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ParseTextPuzzle reads grid rows, a blank line, then one word per line.
// Lines starting with # are ignored.
func ParseTextPuzzle(r io.Reader) (*Puzzle, error) {
	p := &Puzzle{Backwards: true, Source: "text"}
	inWords := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line == "" {
			if len(p.Rows) > 0 {
				inWords = true
			}
			continue
		}
		if inWords {
			p.Words = append(p.Words, line)
		} else {
			p.Rows = append(p.Rows, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

type hclRoot struct {
	Puzzles []*hclPuzzle `hcl:"puzzle,block"`
	Remain  hcl.Body     `hcl:",remain"`
}

type hclPuzzle struct {
	Name      string         `hcl:"name,label"`
	Grid      hcl.Expression `hcl:"grid"`
	Words     []string       `hcl:"words"`
	Wrap      *bool          `hcl:"wrap,optional"`
	Backwards *bool          `hcl:"backwards,optional"`
}

// ParseHCLPuzzle decodes a file holding exactly one puzzle block:
//
//	puzzle "animals" {
//	  grid      = ["CAT", "XOX", "DOG"]
//	  words     = ["CAT", "DOG"]
//	  wrap      = false
//	  backwards = true
//	}
//
// grid may also be a heredoc with one row per line.
func ParseHCLPuzzle(src []byte, filename string) (*Puzzle, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %w", diags)
	}
	if len(root.Puzzles) != 1 {
		return nil, fmt.Errorf("expected exactly one puzzle block, found %d", len(root.Puzzles))
	}
	block := root.Puzzles[0]

	val, diags := block.Grid.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate grid: %w", diags)
	}
	rows, err := gridRows(val)
	if err != nil {
		return nil, fmt.Errorf("grid %s: %w", block.Grid.Range(), err)
	}

	p := &Puzzle{
		Title:     block.Name,
		Rows:      rows,
		Words:     block.Words,
		Backwards: true,
		Source:    "hcl",
	}
	if block.Wrap != nil {
		p.Wrap = *block.Wrap
	}
	if block.Backwards != nil {
		p.Backwards = *block.Backwards
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// gridRows accepts a string with one row per line, or a list of row strings.
func gridRows(v cty.Value) ([]string, error) {
	if v.IsNull() || !v.IsWhollyKnown() {
		return nil, fmt.Errorf("must be a known value")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		var rows []string
		for _, line := range strings.Split(v.AsString(), "\n") {
			if strings.TrimSpace(line) != "" {
				rows = append(rows, line)
			}
		}
		return rows, nil
	case ty.IsListType() || ty.IsTupleType():
		rows := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			if el.IsNull() || el.Type() != cty.String {
				return nil, fmt.Errorf("rows must be strings, got %s", el.Type().FriendlyName())
			}
			rows = append(rows, el.AsString())
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("must be a string or a list of strings, got %s", ty.FriendlyName())
	}
}
