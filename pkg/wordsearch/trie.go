package wordsearch

import "unicode"

type trieNode struct {
	children map[rune]*trieNode
	word     string
	terminal bool
}

func (n *trieNode) next(r rune) *trieNode {
	return n.children[r]
}

// Trie is a prefix tree over upper-cased words. Terminal nodes remember the
// word as it was given so results can report the caller's spelling.
type Trie struct {
	root *trieNode
	size int
}

// Build returns a trie over words. Words that are equal ignoring case share
// one terminal, which keeps the first spelling seen. Empty words are rejected.
func Build(words []string) (*Trie, error) {
	t := &Trie{root: &trieNode{}}
	for i, word := range words {
		if word == "" {
			return nil, inputErrorf("word", i, "empty")
		}
		t.insert(word)
	}
	return t, nil
}

func (t *Trie) insert(word string) {
	head := t.root
	for _, r := range word {
		r = unicode.ToUpper(r)
		child, ok := head.children[r]
		if !ok {
			if head.children == nil {
				head.children = make(map[rune]*trieNode)
			}
			child = &trieNode{}
			head.children[r] = child
		}
		head = child
	}
	if head.terminal {
		return
	}
	head.terminal = true
	head.word = word
	t.size++
}

// contains reports whether word (ignoring case) was added to the trie.
func (t *Trie) contains(word string) bool {
	head := t.root
	for _, r := range word {
		if head = head.next(unicode.ToUpper(r)); head == nil {
			return false
		}
	}
	return head.terminal
}

// Len returns the number of distinct words.
func (t *Trie) Len() int {
	return t.size
}

// isPalindrome compares word with its reversal, ignoring case.
func isPalindrome(word string) bool {
	rs := []rune(word)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		if unicode.ToUpper(rs[i]) != unicode.ToUpper(rs[j]) {
			return false
		}
	}
	return true
}
