package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
)

func TestNormalizerParagraphs(t *testing.T) {
	in := "  First paragraph.  \n\n\t\nSecond\tone.\r\n   \nlast line without newline"
	got, err := Normalizer{}.Paragraphs(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"First paragraph.", "Second\tone.", "last line without newline"}, got)
}

func TestNormalizeFileInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n  a  \n\n b\n\n"), 0o600))

	n, err := Normalizer{}.NormalizeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "mode is preserved")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestNormalizeFileIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(" x \n\n\ty z\t\n"), 0o644))

	_, err := Normalizer{}.NormalizeFile(path)
	require.NoError(t, err)
	once, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = Normalizer{}.NormalizeFile(path)
	require.NoError(t, err)
	twice, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(once), string(twice))
	for _, line := range strings.Split(strings.TrimSuffix(string(once), "\n"), "\n") {
		assert.NotEmpty(t, line)
		assert.Equal(t, strings.TrimSpace(line), line)
	}
}

func TestNormalizeFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n \n\t\n"), 0o644))

	n, err := Normalizer{}.NormalizeFile(path)
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNormalizeFileMissing(t *testing.T) {
	_, err := Normalizer{}.NormalizeFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, internalerr.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNormalizerStripMarkup(t *testing.T) {
	n := Normalizer{StripMarkup: true}
	assert.Equal(t, "Hello world", n.Line("<p>Hello <b>world</b></p>"))
	assert.Equal(t, "Fish & Chips", n.Line(" Fish &amp; Chips "))
	assert.Equal(t, "ok", n.Line("<script>x()</script>ok"))
	assert.Equal(t, "plain text", n.Line("plain text"))
	assert.Equal(t, "", n.Line("<br/>"))
}

func TestNormalizerNFC(t *testing.T) {
	decomposed := "cafe\u0301"
	assert.Equal(t, "caf\u00e9", Normalizer{NFC: true}.Line(decomposed))
	assert.Equal(t, decomposed, Normalizer{}.Line(decomposed))
}
