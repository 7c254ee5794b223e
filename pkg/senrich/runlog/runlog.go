// Package runlog writes the human-readable record of one pipeline run.
//
// Every call writes straight to the file so that a run which fails midway
// still leaves the parameters and the files processed so far on disk.
package runlog

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/cognicore/senrich/pkg/senrich/corpus"
	"github.com/cognicore/senrich/pkg/senrich/internalerr"
	"github.com/cognicore/senrich/pkg/senrich/lang"
	"github.com/cognicore/senrich/pkg/senrich/progress"
)

// Title heads every run log.
const Title = "Semantic enrichment of text collections: NER ('word') and WSD ('id') procedures"

const timeLayout = "2006-01-02_15-04-05"

// Parameters are the run options echoed at the top of the log.
type Parameters struct {
	Language   lang.Language
	IgnoreCase bool
}

// Summary holds the final counters of a run.
type Summary struct {
	Elapsed    time.Duration
	Files      int
	Paragraphs int
	Sentences  int
	Requests   int
	Wait       time.Duration
}

// Log is an append-only run log file.
type Log struct {
	f        *os.File
	path     string
	sections int
	closed   bool
}

// Name returns the log file name for a run of tool started at now.
func Name(tool string, now time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s-log_%s_%s.txt", tool, now.Format(timeLayout), hex.EncodeToString(id[:]))
}

// Create opens a fresh log in dir (the working directory when empty).
func Create(dir, tool string, now time.Time) (*Log, error) {
	if dir == "" {
		dir = "."
	}
	if err := corpus.EnsureDir(dir); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, Name(tool, now, uuid.New()))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, internalerr.IOf(err, "create run log %s", path)
	}
	return &Log{f: f, path: path}, nil
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Header writes the title block.
func (l *Log) Header() error {
	rule := strings.Repeat("=", utf8.RuneCountInString(Title))
	return l.write("\n%s\n%s\n\n\n", Title, rule)
}

// Parameters writes the parameter block.
func (l *Log) Parameters(p Parameters) error {
	ignore := "no"
	if p.IgnoreCase {
		ignore = "yes"
	}
	return l.write("> Parameters:\n\t- Language:\t\t%s\n\t- Ignore case:\t\t%s\n\n\n", p.Language, ignore)
}

// Section opens a file listing of count entries under title.
func (l *Log) Section(title, location string, count int) error {
	sep := ""
	if l.sections > 0 {
		sep = "\n\n"
	}
	l.sections++
	return l.write("%s> %s: %s\n\t# Files: %d\n\n", sep, title, location, count)
}

// File appends one entry to the open section.
func (l *Log) File(path string) error {
	return l.write("\t%s\n", path)
}

// Files writes a complete section with its entries sorted.
func (l *Log) Files(title, location string, paths []string) error {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	if err := l.Section(title, location, len(sorted)); err != nil {
		return err
	}
	for _, p := range sorted {
		if err := l.File(p); err != nil {
			return err
		}
	}
	return nil
}

// Summary writes the closing counters.
func (l *Log) Summary(s Summary) error {
	return l.write("\n\n> Log:\n"+
		"\t- Time:\t\t\t%s\n"+
		"\t- Input files:\t\t%d\n"+
		"\t- Input paragraphs:\t\t%d\n"+
		"\t- Input sentences:\t\t%d\n"+
		"\t- Babelfy requests:\t%d\n"+
		"\t- Babelfy wait time:\t%s\n",
		progress.FormatDuration(s.Elapsed), s.Files, s.Paragraphs, s.Sentences, s.Requests,
		progress.FormatDuration(s.Wait))
}

// Failed records the error that ended the run.
func (l *Log) Failed(cause error) error {
	return l.write("\n\n> Failed: %v\n", cause)
}

// Close closes the file. Calling it more than once is a no-op.
func (l *Log) Close() error {
	if l == nil || l.closed {
		return nil
	}
	l.closed = true
	if err := l.f.Close(); err != nil {
		return internalerr.IOf(err, "close run log %s", l.path)
	}
	return nil
}

func (l *Log) write(format string, args ...any) error {
	if l.closed {
		return fmt.Errorf("%w: run log %s is closed", internalerr.ErrIO, l.path)
	}
	if _, err := fmt.Fprintf(l.f, format, args...); err != nil {
		return internalerr.IOf(err, "write run log %s", l.path)
	}
	return nil
}
