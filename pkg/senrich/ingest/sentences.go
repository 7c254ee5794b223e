package ingest

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/text/cases"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
	"github.com/cognicore/senrich/pkg/senrich/lang"
)

// FileStats counts what the sentence stage saw in one file.
type FileStats struct {
	Paragraphs int
	Sentences  int
}

// SentenceStage turns normalized paragraphs into one token line per sentence.
type SentenceStage struct {
	splitter   SentenceSplitter
	tokenizer  WordTokenizer
	lang       lang.Language
	ignoreCase bool
	lower      cases.Caser
}

// NewSentenceStage wires a splitter and tokenizer for one language. Nil
// collaborators fall back to the rule-based Segmenter and Tokenizer.
func NewSentenceStage(splitter SentenceSplitter, tokenizer WordTokenizer, l lang.Language, ignoreCase bool) *SentenceStage {
	if splitter == nil {
		splitter = NewSegmenter()
	}
	if tokenizer == nil {
		tokenizer = NewTokenizer()
	}
	return &SentenceStage{
		splitter:   splitter,
		tokenizer:  tokenizer,
		lang:       l,
		ignoreCase: ignoreCase,
		lower:      cases.Lower(l.Tag()),
	}
}

// Paragraph segments and tokenizes one paragraph, returning one
// space-joined token line per sentence.
func (s *SentenceStage) Paragraph(p string) []string {
	sentences := s.splitter.Split(p, s.lang)
	lines := make([]string, 0, len(sentences))
	for _, sent := range sentences {
		tokens := s.tokenizer.Tokenize(sent)
		if s.ignoreCase {
			for i, tok := range tokens {
				tokens[i] = s.lower.String(tok)
			}
		}
		lines = append(lines, strings.Join(tokens, " "))
	}
	return lines
}

// Process reads the normalized file src and writes its sentences to dst,
// whose directory must already exist.
func (s *SentenceStage) Process(src, dst string) (FileStats, error) {
	f, err := os.Open(src)
	if err != nil {
		return FileStats{}, internalerr.IOf(err, "open")
	}
	paragraphs, err := Normalizer{}.Paragraphs(f)
	f.Close()
	if err != nil {
		return FileStats{}, internalerr.IOf(err, "read")
	}

	var stats FileStats
	var lines []string
	for _, p := range paragraphs {
		sents := s.Paragraph(p)
		stats.Paragraphs++
		stats.Sentences += len(sents)
		lines = append(lines, sents...)
	}

	out, err := os.Create(dst)
	if err != nil {
		return FileStats{}, internalerr.IOf(err, "create %s", dst)
	}
	w := bufio.NewWriter(out)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return FileStats{}, internalerr.IOf(err, "write %s", dst)
	}
	if err := out.Close(); err != nil {
		return FileStats{}, internalerr.IOf(err, "close %s", dst)
	}
	return stats, nil
}
