// Package moderation masks forbidden words in chat content.
package moderation

import (
	"chat-hub/errors"
	"slices"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Filter matches a word list against normalised text with an Aho-Corasick automaton.
// Matching ignores case, punctuation, spacing and common leet substitutions
// and masking keeps the original layout.
type Filter struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// position maps each normalised rune back to its index in the original text.
type position struct {
	runes []rune
	orig  []int
}

// ParseWords splits a comma separated list, dropping blanks and duplicates.
func ParseWords(list string) []string {
	words := lo.Map(strings.Split(list, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	})
	return lo.Uniq(lo.Compact(words))
}

func NewFilter(words []string, replacement rune) (*Filter, error) {
	patterns := lo.FilterMap(words, func(w string, _ int) ([]rune, bool) {
		p := normalise([]rune(w)).runes
		return p, len(p) > 0
	})
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{matcher: m, replacement: replacement}, nil
}

// Apply returns the masked text and the words that were found.
// A match must start and end on a word boundary of the original text, so a word hidden
// inside another one ("class") is left alone while a spaced out one ("d a r n") is not.
func (f *Filter) Apply(text string) (string, []string) {
	original := []rune(text)
	pos := normalise(original)
	if len(pos.runes) == 0 {
		return text, nil
	}
	terms := f.matcher.MultiPatternSearch(pos.runes, false)
	if len(terms) == 0 {
		return text, nil
	}

	masked := slices.Clone(original)
	found := make([]string, 0, len(terms))
	for _, term := range terms {
		start, end := term.Pos, term.Pos+len(term.Word)
		if start < 0 || end > len(pos.orig) {
			continue
		}
		first, last := pos.orig[start], pos.orig[end-1]
		if !boundary(original, first-1) || !boundary(original, last+1) {
			continue
		}
		for i := first; i <= last; i++ {
			masked[i] = f.replacement
		}
		found = append(found, string(term.Word))
	}
	if len(found) == 0 {
		return text, nil
	}
	return string(masked), found
}

// boundary reports whether index i is outside a word.
func boundary(text []rune, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	return !unicode.IsLetter(text[i]) && !unicode.IsDigit(text[i])
}

func normalise(input []rune) position {
	out := position{runes: make([]rune, 0, len(input)), orig: make([]int, 0, len(input))}
	for i, r := range input {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		out.runes = append(out.runes, unicode.ToLower(r))
		out.orig = append(out.orig, i)
	}
	return out
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
