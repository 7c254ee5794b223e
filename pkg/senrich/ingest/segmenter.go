package ingest

import (
	"strings"
	"unicode"

	"github.com/cognicore/senrich/pkg/senrich/lang"
)

// SentenceSplitter segments a paragraph into sentences for a language.
type SentenceSplitter interface {
	Split(paragraph string, l lang.Language) []string
}

// Segmenter is a rule-based SentenceSplitter. A sentence always ends at '!'
// or '?' (plus any closing quotes or brackets) followed by whitespace. It
// ends at '.' or '…' when whitespace and an upper-case letter, digit or
// opening punctuation follow, unless the period closes a listed
// abbreviation, a single-letter initial or a dotted initialism like "z.B.".
type Segmenter struct {
	abbrev map[lang.Language]map[string]struct{}
}

// NewSegmenter builds a Segmenter with the abbreviation lists of every language.
func NewSegmenter() *Segmenter {
	s := &Segmenter{abbrev: make(map[lang.Language]map[string]struct{}, len(lang.All))}
	for _, l := range lang.All {
		s.abbrev[l] = abbreviations(l)
	}
	return s
}

// Split returns the trimmed sentences of paragraph in order.
func (s *Segmenter) Split(paragraph string, l lang.Language) []string {
	rs := []rune(paragraph)
	n := len(rs)
	var out []string
	start := 0

	for i := 0; i < n; i++ {
		if !isTerminal(rs[i]) {
			continue
		}
		j := i + 1
		for j < n && (isTerminal(rs[j]) || isClosing(rs[j])) {
			j++
		}
		if j >= n || !unicode.IsSpace(rs[j]) {
			i = j - 1
			continue
		}
		k := j
		for k < n && unicode.IsSpace(rs[k]) {
			k++
		}
		if k >= n || (!strongStop(rs[i:j]) && !startsSentence(rs[k])) {
			i = j - 1
			continue
		}
		single := i+1 >= n || !isTerminal(rs[i+1])
		if rs[i] == '.' && single && s.isAbbrev(precedingWord(rs, start, i), l) {
			continue
		}

		if sent := strings.TrimSpace(string(rs[start:j])); sent != "" {
			out = append(out, sent)
		}
		start = k
		i = k - 1
	}

	if tail := strings.TrimSpace(string(rs[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

func (s *Segmenter) isAbbrev(word string, l lang.Language) bool {
	word = strings.TrimLeftFunc(word, func(r rune) bool { return isOpening(r) })
	if word == "" {
		return false
	}
	lw := strings.ToLower(word)
	rs := []rune(lw)
	if len(rs) == 1 && unicode.IsLetter(rs[0]) {
		return true
	}
	set, ok := s.abbrev[l]
	if !ok {
		set = s.abbrev[lang.English]
	}
	if _, found := set[lw]; found {
		return true
	}
	if !strings.Contains(lw, ".") {
		return false
	}
	// dotted initialisms: every part is a letter or a listed abbreviation
	for _, part := range strings.Split(lw, ".") {
		prs := []rune(part)
		if len(prs) == 1 && unicode.IsLetter(prs[0]) {
			continue
		}
		if _, found := set[part]; !found {
			return false
		}
	}
	return true
}

// precedingWord returns the run of non-space runes in rs[from:end].
func precedingWord(rs []rune, from, end int) string {
	b := end
	for b > from && !unicode.IsSpace(rs[b-1]) {
		b--
	}
	return string(rs[b:end])
}

// strongStop reports whether a terminal run contains '!' or '?'.
func strongStop(run []rune) bool {
	for _, r := range run {
		if r == '!' || r == '?' {
			return true
		}
	}
	return false
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '»', '”', '’':
		return true
	}
	return false
}

func isOpening(r rune) bool {
	switch r {
	case '"', '\'', '(', '[', '{', '«', '“', '‘', '¿', '¡':
		return true
	}
	return false
}

func startsSentence(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || isOpening(r)
}
