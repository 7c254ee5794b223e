package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
	"github.com/cognicore/senrich/pkg/senrich/lang"
)

// pipeSplitter splits on "|" so tests control sentence boundaries exactly.
type pipeSplitter struct{ calls []lang.Language }

func (p *pipeSplitter) Split(paragraph string, l lang.Language) []string {
	p.calls = append(p.calls, l)
	var out []string
	for _, s := range strings.Split(paragraph, "|") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func TestSentenceStageProcess(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("One. | Two!\nThree?\n"), 0o644))

	splitter := &pipeSplitter{}
	stage := NewSentenceStage(splitter, nil, lang.Italian, false)

	stats, err := stage.Process(src, dst)
	require.NoError(t, err)
	assert.Equal(t, FileStats{Paragraphs: 2, Sentences: 3}, stats)
	assert.Equal(t, []lang.Language{lang.Italian, lang.Italian}, splitter.calls)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "One .\nTwo !\nThree ?\n", string(data))
}

func TestSentenceCountMatchesLines(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	content := "Dr. Who arrived. He left.\nA short one.\n\"Quoted.\" Then more. And more!\n"
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	stage := NewSentenceStage(nil, nil, lang.English, false)
	stats, err := stage.Process(src, dst)
	require.NoError(t, err)

	want := 0
	seg := NewSegmenter()
	for _, p := range strings.Split(strings.TrimSpace(content), "\n") {
		want += len(seg.Split(p, lang.English))
	}
	assert.Equal(t, want, stats.Sentences)
	assert.Equal(t, 3, stats.Paragraphs)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, stats.Sentences, strings.Count(string(data), "\n"))
}

func TestSentenceStageCaseFolding(t *testing.T) {
	para := "Der STRASSE Name. Über ALLES!"

	folded := NewSentenceStage(nil, nil, lang.German, true).Paragraph(para)
	exact := NewSentenceStage(nil, nil, lang.German, false).Paragraph(para)
	require.Len(t, folded, 2)
	require.Len(t, exact, 2)

	tokenizer := NewTokenizer()
	seg := NewSegmenter()
	for i, sent := range seg.Split(para, lang.German) {
		assert.Equal(t, strings.Join(tokenizer.Tokenize(sent), " "), exact[i], "tokens written exactly as produced")
		for _, tok := range strings.Fields(folded[i]) {
			assert.Equal(t, strings.ToLower(tok), tok)
		}
	}
	assert.Equal(t, "der strasse name .", folded[0])
	assert.Equal(t, "über alles !", folded[1])
}

func TestSentenceStageMissingSource(t *testing.T) {
	dir := t.TempDir()
	stage := NewSentenceStage(nil, nil, lang.English, false)
	_, err := stage.Process(filepath.Join(dir, "nope.txt"), filepath.Join(dir, "out.txt"))
	assert.ErrorIs(t, err, internalerr.ErrIO)
}

func TestSentenceStageMissingDestDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("x.\n"), 0o644))

	stage := NewSentenceStage(nil, nil, lang.English, false)
	_, err := stage.Process(src, filepath.Join(dir, "missing", "out.txt"))
	assert.ErrorIs(t, err, internalerr.ErrIO)
}
