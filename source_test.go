package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

func TestParseTextPuzzle(t *testing.T) {
	src := `# animals
C A T
x o x
DOG

cat
# not a word
dog
`
	p, err := ParseTextPuzzle(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseTextPuzzle: %v", err)
	}
	if diff := cmp.Diff([]string{"CAT", "XOX", "DOG"}, p.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cat", "dog"}, p.Words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
	if !p.Backwards || p.Wrap {
		t.Errorf("unexpected options: wrap=%v backwards=%v", p.Wrap, p.Backwards)
	}
}

func TestParseTextPuzzle_Jagged(t *testing.T) {
	_, err := ParseTextPuzzle(strings.NewReader("ABC\nAB\n\nA\n"))
	var inputErr *wordsearch.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected *InputError, got %v", err)
	}
}

func TestParseHCLPuzzle(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		rows     []string
		wrap     bool
		backward bool
		wantErr  bool
	}{
		{
			name: "list grid",
			src: `
puzzle "animals" {
  grid  = ["CAT", "xox", "DOG"]
  words = ["CAT", "DOG"]
  wrap  = true
}`,
			rows:     []string{"CAT", "XOX", "DOG"},
			wrap:     true,
			backward: true,
		},
		{
			name: "heredoc grid",
			src: `
puzzle "animals" {
  grid = <<EOT
C A T
X O X
EOT
  words     = ["CAT"]
  backwards = false
}`,
			rows: []string{"CAT", "XOX"},
		},
		{
			name:    "two blocks",
			src:     "puzzle \"a\" {\n grid = [\"A\"]\n words = []\n}\npuzzle \"b\" {\n grid = [\"B\"]\n words = []\n}\n",
			wantErr: true,
		},
		{
			name:    "numeric grid",
			src:     "puzzle \"a\" {\n grid = 12\n words = []\n}\n",
			wantErr: true,
		},
		{
			name:    "numbers in rows",
			src:     "puzzle \"a\" {\n grid = [\"AB\", 12]\n words = []\n}\n",
			wantErr: true,
		},
		{
			name:    "missing words",
			src:     "puzzle \"a\" {\n grid = [\"AB\"]\n}\n",
			wantErr: true,
		},
		{
			name:    "syntax error",
			src:     "puzzle \"a\" {\n grid = [\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseHCLPuzzle([]byte(tt.src), "puzzle.hcl")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHCLPuzzle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(tt.rows, p.Rows); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
			if p.Wrap != tt.wrap || p.Backwards != tt.backward {
				t.Errorf("options = wrap:%v backwards:%v, want wrap:%v backwards:%v", p.Wrap, p.Backwards, tt.wrap, tt.backward)
			}
			if p.Title != "animals" {
				t.Errorf("title = %q, want block label", p.Title)
			}
		})
	}
}

const savedPage = `<html><body>
<div class="game">
  <div class="words-panel words">
    <span>CAT</span>
    <span><b>DOG</b></span>
    <span> </span>
  </div>
  <div class="grid">
    <div>C</div><div>A</div><div>T</div>
    <div>X</div><div>O</div><div>X</div>
    <div>D</div><div>O</div><div>G</div>
  </div>
</div>
</body></html>`

func TestParseHTMLPuzzle(t *testing.T) {
	p, err := ParseHTMLPuzzle(strings.NewReader(savedPage), 3)
	if err != nil {
		t.Fatalf("ParseHTMLPuzzle: %v", err)
	}
	if diff := cmp.Diff([]string{"CAT", "XOX", "DOG"}, p.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"CAT", "DOG"}, p.Words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHTMLPuzzle_Errors(t *testing.T) {
	if _, err := ParseHTMLPuzzle(strings.NewReader(savedPage), 4); err == nil {
		t.Error("expected error when letters do not fill the last row")
	}
	if _, err := ParseHTMLPuzzle(strings.NewReader(`<div class="grid"><i>A</i></div>`), 1); err == nil {
		t.Error("expected error without a word list")
	}
	if _, err := ParseHTMLPuzzle(strings.NewReader(`<div class="words"><i>A</i></div>`), 1); err == nil {
		t.Error("expected error without a grid")
	}
}

func TestLoadPuzzleFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"animals.txt":  "CAT\nXOX\nDOG\n\nCAT\nDOG\n",
		"animals.hcl":  "puzzle \"zoo\" {\n grid = [\"CAT\", \"XOX\", \"DOG\"]\n words = [\"CAT\", \"DOG\"]\n}\n",
		"animals.html": savedPage,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	for _, tc := range []struct {
		file, title, source string
	}{
		{"animals.txt", "animals", "text"},
		{"animals.hcl", "zoo", "hcl"},
		{"animals.html", "animals", "html"},
	} {
		p, err := LoadPuzzleFile(filepath.Join(dir, tc.file), 3)
		if err != nil {
			t.Fatalf("LoadPuzzleFile(%s): %v", tc.file, err)
		}
		if p.Title != tc.title || p.Source != tc.source {
			t.Errorf("%s: title=%q source=%q, want %q %q", tc.file, p.Title, p.Source, tc.title, tc.source)
		}
		if len(p.Rows) != 3 || len(p.Words) != 2 {
			t.Errorf("%s: got %d rows, %d words", tc.file, len(p.Rows), len(p.Words))
		}
	}

	if _, err := LoadPuzzleFile(filepath.Join(dir, "missing.txt"), 3); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if _, err := LoadPuzzleFile(filepath.Join(dir, "animals.pdf"), 3); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
