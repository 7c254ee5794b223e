// Package enrich delegates named-entity recognition and disambiguation of
// token files to an external tool and collects its request accounting.
package enrich

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cognicore/senrich/pkg/senrich/corpus"
	"github.com/cognicore/senrich/pkg/senrich/internalerr"
	"github.com/cognicore/senrich/pkg/senrich/lang"
)

// Status is what the tool reports for one file: remote lookups performed and
// seconds spent waiting on rate limits.
type Status struct {
	Requests    int
	WaitSeconds int
}

// Disambiguator processes one token file into a recognized-words file and a
// disambiguated-ids file.
type Disambiguator interface {
	Invoke(ctx context.Context, l lang.Language, in, words, ids string) (Status, error)
}

// ParseStatus reads the status protocol from the tool's standard output:
// the last non-blank line must hold exactly two non-negative integers.
func ParseStatus(stdout string) (Status, error) {
	lines := strings.Split(strings.TrimRight(stdout, " \t\r\n"), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return Status{}, fmt.Errorf("%w: no status line in output", internalerr.ErrExternalTool)
	}

	fields := strings.Fields(last)
	if len(fields) != 2 {
		return Status{}, fmt.Errorf("%w: malformed status line %q", internalerr.ErrExternalTool, last)
	}
	requests, err := strconv.Atoi(fields[0])
	if err != nil || requests < 0 {
		return Status{}, fmt.Errorf("%w: bad request count in %q", internalerr.ErrExternalTool, last)
	}
	wait, err := strconv.Atoi(fields[1])
	if err != nil || wait < 0 {
		return Status{}, fmt.Errorf("%w: bad wait time in %q", internalerr.ErrExternalTool, last)
	}
	return Status{Requests: requests, WaitSeconds: wait}, nil
}

// Result records the artifacts produced for one input file.
type Result struct {
	TokenPath string
	WordsPath string
	IDsPath   string
	Status    Status
}

// Stage runs the Disambiguator over the token tree, mirroring each input
// path into the words and ids trees.
type Stage struct {
	tool   Disambiguator
	lang   lang.Language
	tokens corpus.Mirror
	words  corpus.Mirror
	ids    corpus.Mirror
}

// NewStage builds a Stage whose mirrors all map from the same input root.
func NewStage(tool Disambiguator, l lang.Language, tokens, words, ids corpus.Mirror) *Stage {
	return &Stage{tool: tool, lang: l, tokens: tokens, words: words, ids: ids}
}

// Process invokes the tool for the token file mirrored from input.
func (s *Stage) Process(ctx context.Context, input string) (Result, error) {
	tokenPath, err := s.tokens.Path(input)
	if err != nil {
		return Result{}, err
	}
	wordsPath, err := s.words.Ensure(input)
	if err != nil {
		return Result{}, err
	}
	idsPath, err := s.ids.Ensure(input)
	if err != nil {
		return Result{}, err
	}

	status, err := s.tool.Invoke(ctx, s.lang, tokenPath, wordsPath, idsPath)
	if err != nil {
		return Result{}, err
	}
	return Result{TokenPath: tokenPath, WordsPath: wordsPath, IDsPath: idsPath, Status: status}, nil
}
