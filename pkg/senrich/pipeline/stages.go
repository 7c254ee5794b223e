package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/senrich/pkg/senrich/corpus"
	"github.com/cognicore/senrich/pkg/senrich/enrich"
	"github.com/cognicore/senrich/pkg/senrich/ingest"
	"github.com/cognicore/senrich/pkg/senrich/internalerr"
	"github.com/cognicore/senrich/pkg/senrich/ledger"
	"github.com/cognicore/senrich/pkg/senrich/progress"
)

func (c *Controller) enumerate(context.Context) error {
	files, err := corpus.Enumerate(c.opts.Input)
	if err != nil {
		return err
	}
	c.files = files
	c.counters.Files = len(files)
	c.logger.Info("pipeline: corpus enumerated", zap.Int("files", len(files)))
	return nil
}

func (c *Controller) normalize(ctx context.Context) error {
	c.banner("Removing empty lines")
	if err := c.log.Section("Raw texts", c.opts.Input, len(c.files)); err != nil {
		return err
	}

	elapsed, err := c.eachFile(ctx, StageNormalize, func(path string) error {
		if err := c.log.File(path); err != nil {
			return err
		}
		start := time.Now()
		n, err := c.opts.Normalizer.NormalizeFile(path)
		if err != nil {
			return err
		}
		c.record(ctx, ledger.Artifact{
			Stage:      StageNormalize,
			InputPath:  path,
			OutputPath: path,
			Paragraphs: n,
			Elapsed:    time.Since(start),
		})
		return nil
	})
	if err != nil {
		return err
	}
	c.endStage(StageNormalize, elapsed)
	return nil
}

func (c *Controller) tokenize(ctx context.Context) error {
	rawDir := filepath.Join(c.opts.Output, RawTextsDir)
	tokens := corpus.NewMirror(c.opts.Input, rawDir)
	sentences := ingest.NewSentenceStage(c.opts.Splitter, c.opts.Tokenizer, c.opts.Language, c.opts.IgnoreCase)

	c.banner("Tokenizing raw text by sentences")
	if err := c.log.Section("Raw texts (split by sentences)", location(rawDir), len(c.files)); err != nil {
		return err
	}

	elapsed, err := c.eachFile(ctx, StageTokenize, func(path string) error {
		start := time.Now()
		dst, err := tokens.Ensure(path)
		if err != nil {
			return err
		}
		if err := c.log.File(dst); err != nil {
			return err
		}
		stats, err := sentences.Process(path, dst)
		if err != nil {
			return err
		}
		c.counters.Paragraphs += stats.Paragraphs
		c.counters.Sentences += stats.Sentences
		c.record(ctx, ledger.Artifact{
			Stage:      StageTokenize,
			InputPath:  path,
			OutputPath: dst,
			Paragraphs: stats.Paragraphs,
			Sentences:  stats.Sentences,
			Elapsed:    time.Since(start),
		})
		return nil
	})
	if err != nil {
		return err
	}
	c.endStage(StageTokenize, elapsed)
	return nil
}

func (c *Controller) disambiguate(ctx context.Context) error {
	wordsDir := filepath.Join(c.opts.Output, RecognizedWordsDir)
	idsDir := filepath.Join(c.opts.Output, DisambiguatedIDsDir)
	stage := enrich.NewStage(c.opts.Tool, c.opts.Language,
		corpus.NewMirror(c.opts.Input, filepath.Join(c.opts.Output, RawTextsDir)),
		corpus.NewMirror(c.opts.Input, wordsDir),
		corpus.NewMirror(c.opts.Input, idsDir),
	)

	c.banner("Processing raw texts")
	elapsed, err := c.eachFile(ctx, StageEnrich, func(path string) error {
		start := time.Now()
		res, err := stage.Process(ctx, path)
		if err != nil {
			return err
		}
		c.counters.Requests += res.Status.Requests
		c.counters.WaitSeconds += res.Status.WaitSeconds
		c.words = append(c.words, res.WordsPath)
		c.ids = append(c.ids, res.IDsPath)
		c.record(ctx, ledger.Artifact{
			Stage:         StageEnrich,
			InputPath:     path,
			OutputPath:    res.WordsPath,
			SecondaryPath: res.IDsPath,
			Requests:      res.Status.Requests,
			WaitSeconds:   res.Status.WaitSeconds,
			Elapsed:       time.Since(start),
		})
		return nil
	})
	if err == nil {
		c.endStage(StageEnrich, elapsed-c.counters.Wait())
	}

	// The listings cover every file the tool finished, also when a later
	// file failed.
	if lerr := c.log.Files("Recognized words", location(wordsDir), c.words); lerr != nil && err == nil {
		err = lerr
	}
	if lerr := c.log.Files("Disambiguated ids", location(idsDir), c.ids); lerr != nil && err == nil {
		err = lerr
	}
	return err
}

// eachFile applies fn to every corpus file in order, driving the progress
// line with a last-sample ETA. It stops at the first error or when ctx is
// cancelled, and returns the stage's wall time.
func (c *Controller) eachFile(ctx context.Context, stage string, fn func(path string) error) (time.Duration, error) {
	total := len(c.files)
	c.logger.Info("pipeline: stage started", zap.String("stage", stage), zap.Int("files", total))
	c.bar.Update(0, total, 0)

	start := time.Now()
	for i, path := range c.files {
		if err := ctx.Err(); err != nil {
			return time.Since(start), fmt.Errorf("%s interrupted before %s: %w", stage, path, err)
		}
		fileStart := time.Now()
		if err := fn(path); err != nil {
			return time.Since(start), internalerr.WrapFile(stage, path, err)
		}
		last := time.Since(fileStart)
		c.logger.Debug("pipeline: file done", zap.String("stage", stage), zap.String("path", path), zap.Duration("elapsed", last))
		c.bar.Update(i+1, total, progress.ETA(total-i-1, last))
	}
	return time.Since(start), nil
}

func (c *Controller) endStage(stage string, eta time.Duration) {
	total := len(c.files)
	c.bar.Finish(total, total, eta)
	c.rule(true)
	c.logger.Info("pipeline: stage complete", zap.String("stage", stage), zap.Duration("elapsed", eta))
}
