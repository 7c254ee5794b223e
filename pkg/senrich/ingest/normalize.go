package ingest

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
)

// Normalizer trims every line of a document and drops the blank ones.
type Normalizer struct {
	// NFC composes each line into Unicode normalization form C.
	NFC bool
	// StripMarkup replaces each line by the text content of its HTML parse.
	StripMarkup bool
}

// Line normalizes a single line; an empty result means the line is dropped.
func (n Normalizer) Line(s string) string {
	if n.StripMarkup {
		s = stripHTML(s)
	}
	if n.NFC {
		s = norm.NFC.String(s)
	}
	return strings.TrimSpace(s)
}

// Paragraphs reads r and returns its non-blank normalized lines in order.
func (n Normalizer) Paragraphs(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var out []string
	for {
		line, err := br.ReadString('\n')
		if p := n.Line(line); p != "" {
			out = append(out, p)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// NormalizeFile rewrites path in place with one normalized paragraph per
// line, each newline-terminated, and returns the number of lines kept. The
// new content is written to a sibling temp file and renamed over path.
func (n Normalizer) NormalizeFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, internalerr.IOf(err, "open")
	}
	paragraphs, err := n.Paragraphs(f)
	f.Close()
	if err != nil {
		return 0, internalerr.IOf(err, "read")
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, internalerr.IOf(err, "stat")
	}
	if err := writeLines(path, paragraphs, info.Mode().Perm()); err != nil {
		return 0, err
	}
	return len(paragraphs), nil
}

// writeLines atomically replaces path with lines, each followed by '\n'.
func writeLines(path string, lines []string, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return internalerr.IOf(err, "create temp")
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	w := bufio.NewWriter(tmp)
	for _, l := range lines {
		if _, err := w.WriteString(l); err != nil {
			cleanup()
			return internalerr.IOf(err, "write")
		}
		if err := w.WriteByte('\n'); err != nil {
			cleanup()
			return internalerr.IOf(err, "write")
		}
	}
	if err := w.Flush(); err != nil {
		cleanup()
		return internalerr.IOf(err, "flush")
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return internalerr.IOf(err, "chmod")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return internalerr.IOf(err, "close")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return internalerr.IOf(err, "replace")
	}
	return nil
}

// stripHTML returns the concatenated text nodes of s. Input that does not
// look like markup is returned unchanged.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return buf.String()
}
