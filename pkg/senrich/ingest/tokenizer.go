package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// WordTokenizer splits one sentence into word-level tokens.
type WordTokenizer interface {
	Tokenize(sentence string) []string
}

// Tokenizer is a Treebank-style WordTokenizer: punctuation is split from
// words, numbers like "3.14" and "1,000" and hyphenated words stay whole,
// English clitics are split ("don't" -> "do n't") and straight double quotes
// become `` and ''. Only the final period of the sentence is split off, so
// abbreviations inside a sentence keep their periods.
type Tokenizer struct{}

// NewTokenizer creates a tokenizer
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits sentence into tokens.
func (t *Tokenizer) Tokenize(sentence string) []string {
	fields := strings.Fields(sentence)
	var tokens []string
	for i, f := range fields {
		tokens = append(tokens, t.splitField(f, i == len(fields)-1)...)
	}
	return tokens
}

// splitField peels leading and trailing punctuation off one
// whitespace-delimited field and splits what remains.
func (t *Tokenizer) splitField(f string, last bool) []string {
	var lead, trail []string

	for f != "" {
		r, size := utf8.DecodeRuneInString(f)
		if !isLeadPunct(r) {
			break
		}
		lead = append(lead, quoteToken(r, true))
		f = f[size:]
	}

	for f != "" {
		if strings.HasSuffix(f, "...") {
			trail = append(trail, "...")
			f = f[:len(f)-3]
			continue
		}
		r, size := utf8.DecodeLastRuneInString(f)
		if r == '.' {
			// Only the sentence-final period, and not the period of a
			// lone initial like "A." in the middle of text.
			if !last || f == "." {
				break
			}
			trail = append(trail, ".")
			f = f[:len(f)-size]
			last = false
			continue
		}
		if r == '\'' || r == '’' {
			if hasClitic(f) || len([]rune(f)) == 1 {
				break
			}
			trail = append(trail, string(r))
			f = f[:len(f)-size]
			continue
		}
		if !isTrailPunct(r) {
			break
		}
		trail = append(trail, quoteToken(r, false))
		f = f[:len(f)-size]
	}

	out := lead
	for _, piece := range splitMiddle(f) {
		out = append(out, splitClitics(piece)...)
	}
	for i := len(trail) - 1; i >= 0; i-- {
		out = append(out, trail[i])
	}
	return out
}

// splitMiddle splits on punctuation inside a word: commas and colons unless
// between digits, and always on ";", "!", "?", "&" and "--".
func splitMiddle(w string) []string {
	if w == "" {
		return nil
	}
	rs := []rune(w)
	var out []string
	start := 0
	flush := func(end int) {
		if end > start {
			out = append(out, string(rs[start:end]))
		}
	}
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			flush(i)
			out = append(out, "--")
			i++
			start = i + 1
		case r == ',' || r == ':':
			if i > 0 && i+1 < len(rs) && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]) {
				continue
			}
			flush(i)
			out = append(out, string(r))
			start = i + 1
		case r == ';' || r == '!' || r == '?' || r == '&':
			flush(i)
			out = append(out, string(r))
			start = i + 1
		}
	}
	flush(len(rs))
	return out
}

var cliticSuffixes = []string{"n't", "'ll", "'re", "'ve", "'s", "'m", "'d"}

// splitClitics separates English clitics from the word they attach to.
func splitClitics(w string) []string {
	lw := strings.ToLower(strings.ReplaceAll(w, "’", "'"))
	if lw == "cannot" {
		return []string{w[:3], w[3:]}
	}
	for _, suf := range cliticSuffixes {
		if strings.HasSuffix(lw, suf) && len(lw) > len(suf) {
			cut := len(w) - byteLenOfSuffix(w, len([]rune(suf)))
			return []string{w[:cut], w[cut:]}
		}
	}
	return []string{w}
}

func hasClitic(w string) bool {
	lw := strings.ToLower(strings.ReplaceAll(w, "’", "'"))
	for _, suf := range cliticSuffixes {
		if strings.HasSuffix(lw, suf) {
			return true
		}
	}
	return false
}

// byteLenOfSuffix returns the byte length of the last n runes of w.
func byteLenOfSuffix(w string, n int) int {
	rs := []rune(w)
	return len(string(rs[len(rs)-n:]))
}

func quoteToken(r rune, opening bool) string {
	if r == '"' {
		if opening {
			return "``"
		}
		return "''"
	}
	return string(r)
}

func isLeadPunct(r rune) bool {
	switch r {
	case '"', '(', '[', '{', '<', '«', '“', '‘', '¿', '¡', '$', '#', '@', '`':
		return true
	}
	return false
}

func isTrailPunct(r rune) bool {
	switch r {
	case '"', ')', ']', '}', '>', '»', '”', ',', ';', ':', '!', '?', '%', '…':
		return true
	}
	return false
}
