// Package pipeline runs the three enrichment stages over one corpus:
// normalize every file in place, split every file into tokenized sentences,
// then hand every token file to the disambiguation tool.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/senrich/pkg/senrich/enrich"
	"github.com/cognicore/senrich/pkg/senrich/ingest"
	"github.com/cognicore/senrich/pkg/senrich/internalerr"
	"github.com/cognicore/senrich/pkg/senrich/lang"
	"github.com/cognicore/senrich/pkg/senrich/ledger"
	"github.com/cognicore/senrich/pkg/senrich/progress"
	"github.com/cognicore/senrich/pkg/senrich/runlog"
)

// DefaultToolName prefixes run log file names.
const DefaultToolName = "S-Enrich"

// Output subdirectories, one per stage that writes new files.
const (
	RawTextsDir         = "raw_texts"
	RecognizedWordsDir  = "recognized_words"
	DisambiguatedIDsDir = "disambiguated_ids"
)

// Stage names used in errors, logs and the ledger.
const (
	StageNormalize = "normalize"
	StageTokenize  = "tokenize"
	StageEnrich    = "enrich"
)

// Counters accumulate over the whole run.
type Counters struct {
	Files       int
	Paragraphs  int
	Sentences   int
	Requests    int
	WaitSeconds int
}

// Wait returns the accumulated rate-limit wait as a duration.
func (c Counters) Wait() time.Duration {
	return time.Duration(c.WaitSeconds) * time.Second
}

// Options configure a Controller. Input, Output and Tool are required.
type Options struct {
	Input      string
	Output     string
	Language   lang.Language
	IgnoreCase bool
	Tool       enrich.Disambiguator

	Normalizer ingest.Normalizer
	Splitter   ingest.SentenceSplitter
	Tokenizer  ingest.WordTokenizer

	// Console receives stage banners and the progress line. Nil silences both.
	Console       io.Writer
	ProgressWidth int

	ToolName string
	LogDir   string
	Ledger   ledger.Recorder
	Logger   *zap.Logger
	Now      func() time.Time
}

// Controller owns the run state machine and every counter.
type Controller struct {
	opts    Options
	console io.Writer
	bar     *progress.Bar
	logger  *zap.Logger
	ledger  ledger.Recorder
	now     func() time.Time

	state    State
	runID    string
	log      *runlog.Log
	files    []string
	counters Counters
	words    []string
	ids      []string
}

// New validates opts and returns a Controller in the Init state.
func New(opts Options) (*Controller, error) {
	if opts.Input == "" || opts.Output == "" {
		return nil, fmt.Errorf("%w: input and output directories are required", internalerr.ErrInvalidConfig)
	}
	if opts.Tool == nil {
		return nil, fmt.Errorf("%w: disambiguation tool is required", internalerr.ErrInvalidConfig)
	}
	if opts.ToolName == "" {
		opts.ToolName = DefaultToolName
	}
	if opts.Ledger == nil {
		opts.Ledger = ledger.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Language = lang.Parse(opts.Language.String())

	console := opts.Console
	if console == nil {
		console = io.Discard
	}
	return &Controller{
		opts:    opts,
		console: console,
		bar:     progress.New(opts.Console, opts.Console != nil, opts.ProgressWidth),
		logger:  opts.Logger.With(zap.String("input", opts.Input), zap.String("output", opts.Output)),
		ledger:  opts.Ledger,
		now:     opts.Now,
		state:   Init,
	}, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Counters returns a snapshot of the run counters.
func (c *Controller) Counters() Counters { return c.counters }

// RunID returns the ledger id of the run, empty before Run starts.
func (c *Controller) RunID() string { return c.runID }

// LogPath returns the run log location, empty before Run starts.
func (c *Controller) LogPath() string {
	if c.log == nil {
		return ""
	}
	return c.log.Path()
}

// Transition moves the controller to state to, recording it in the ledger.
func (c *Controller) Transition(ctx context.Context, to State) error {
	if err := next(c.state, to); err != nil {
		return err
	}
	from := c.state
	c.state = to
	c.logger.Debug("pipeline: state change", zap.Stringer("from", from), zap.Stringer("to", to))
	if c.runID == "" || to.Terminal() {
		return nil
	}
	if err := c.ledger.SetState(ctx, c.runID, to.String()); err != nil {
		c.logger.Warn("pipeline: failed to record state", zap.Stringer("state", to), zap.Error(err))
	}
	return nil
}

// Run executes every stage in order. On failure the run log records the
// cause and is closed, and the returned error names the stage and file.
func (c *Controller) Run(ctx context.Context) (Counters, error) {
	if c.state != Init {
		return c.counters, fmt.Errorf("%w: run already started (%s)", internalerr.ErrInvalidTransition, c.state)
	}
	start := c.now()
	c.logger.Info("pipeline: starting", zap.Stringer("language", c.opts.Language), zap.Bool("ignore_case", c.opts.IgnoreCase))

	if err := c.begin(ctx, start); err != nil {
		return c.counters, c.fail(ctx, err)
	}

	steps := []struct {
		to  State
		run func(context.Context) error
	}{
		{Enumerated, c.enumerate},
		{Normalized, c.normalize},
		{Tokenized, c.tokenize},
		{Enriched, c.disambiguate},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return c.counters, c.fail(ctx, err)
		}
		if err := c.Transition(ctx, step.to); err != nil {
			return c.counters, c.fail(ctx, err)
		}
	}

	if err := c.finish(ctx, c.now().Sub(start)); err != nil {
		return c.counters, c.fail(ctx, err)
	}
	return c.counters, nil
}

func (c *Controller) begin(ctx context.Context, start time.Time) error {
	c.runID = ledger.NewRunID()
	c.logger = c.logger.With(zap.String("run_id", c.runID))
	run := ledger.Run{
		ID:         c.runID,
		Tool:       c.opts.ToolName,
		Language:   c.opts.Language.String(),
		IgnoreCase: c.opts.IgnoreCase,
		Input:      c.opts.Input,
		Output:     c.opts.Output,
		State:      c.state.String(),
		StartedAt:  start,
	}
	if err := c.ledger.CreateRun(ctx, run); err != nil {
		c.logger.Warn("pipeline: failed to create ledger run", zap.Error(err))
	}

	log, err := runlog.Create(c.opts.LogDir, c.opts.ToolName, start)
	if err != nil {
		return err
	}
	c.log = log
	c.logger.Info("pipeline: run log created", zap.String("path", log.Path()))

	c.title()
	if err := c.log.Header(); err != nil {
		return err
	}
	return c.log.Parameters(runlog.Parameters{Language: c.opts.Language, IgnoreCase: c.opts.IgnoreCase})
}

func (c *Controller) finish(ctx context.Context, elapsed time.Duration) error {
	summary := runlog.Summary{
		Elapsed:    elapsed,
		Files:      c.counters.Files,
		Paragraphs: c.counters.Paragraphs,
		Sentences:  c.counters.Sentences,
		Requests:   c.counters.Requests,
		Wait:       c.counters.Wait(),
	}
	c.summary(summary)
	if err := c.log.Summary(summary); err != nil {
		return err
	}
	if err := c.log.Close(); err != nil {
		return err
	}
	if err := c.Transition(ctx, Finalized); err != nil {
		return err
	}
	if err := c.ledger.FinishRun(ctx, c.runID, Finalized.String(), nil); err != nil {
		c.logger.Warn("pipeline: failed to finish ledger run", zap.Error(err))
	}
	c.logger.Info("pipeline: finished",
		zap.Duration("elapsed", elapsed),
		zap.Int("files", c.counters.Files),
		zap.Int("paragraphs", c.counters.Paragraphs),
		zap.Int("sentences", c.counters.Sentences),
		zap.Int("requests", c.counters.Requests),
		zap.Int("wait_seconds", c.counters.WaitSeconds))
	return nil
}

// fail ends the progress line, records err in the run log and ledger, and
// closes the log. It returns err unchanged.
func (c *Controller) fail(ctx context.Context, err error) error {
	c.bar.Break()
	c.logger.Error("pipeline: run failed", zap.Stringer("state", c.state), zap.Error(err))
	if c.state.Terminal() {
		return err
	}
	c.state = Failed

	if c.log != nil {
		if lerr := c.log.Failed(err); lerr != nil {
			c.logger.Warn("pipeline: failed to write run log", zap.Error(lerr))
		}
		if lerr := c.log.Close(); lerr != nil {
			c.logger.Warn("pipeline: failed to close run log", zap.Error(lerr))
		}
	}
	if c.runID != "" {
		if lerr := c.ledger.FinishRun(context.WithoutCancel(ctx), c.runID, Failed.String(), err); lerr != nil {
			c.logger.Warn("pipeline: failed to finish ledger run", zap.Error(lerr))
		}
	}
	return err
}

func (c *Controller) record(ctx context.Context, a ledger.Artifact) {
	a.RunID = c.runID
	if err := c.ledger.RecordArtifact(ctx, a); err != nil {
		c.logger.Warn("pipeline: failed to record artifact",
			zap.String("stage", a.Stage), zap.String("path", a.InputPath), zap.Error(err))
	}
}

// location renders an output root the way the run log lists it.
func location(dir string) string {
	return filepath.Clean(dir) + string(filepath.Separator)
}
