package wordsearch

import "fmt"

// InputError reports a malformed grid or word list. It is returned before
// any scanning starts.
type InputError struct {
	Field  string // "grid", "row", "cell" or "word"
	Index  int    // offending row or word index, -1 when not applicable
	Reason string
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %d: %s", e.Field, e.Index, e.Reason)
}

func inputErrorf(field string, index int, format string, args ...any) *InputError {
	return &InputError{Field: field, Index: index, Reason: fmt.Sprintf(format, args...)}
}
