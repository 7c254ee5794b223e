// Package ledger defines the persistent record of pipeline runs: one row per
// run, every state it passed through, and every artifact each stage wrote.
package ledger

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Run is one invocation of the pipeline.
type Run struct {
	ID         string
	Tool       string
	Language   string
	IgnoreCase bool
	Input      string
	Output     string
	State      string
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
}

// Transition is a state the run entered.
type Transition struct {
	State string
	At    time.Time
}

// Artifact is one file written by one stage. SecondaryPath is only set by
// stages with two outputs per input.
type Artifact struct {
	RunID         string
	Stage         string
	InputPath     string
	OutputPath    string
	SecondaryPath string
	Paragraphs    int
	Sentences     int
	Requests      int
	WaitSeconds   int
	Elapsed       time.Duration
}

// Recorder persists run progress.
type Recorder interface {
	CreateRun(ctx context.Context, run Run) error
	SetState(ctx context.Context, runID, state string) error
	RecordArtifact(ctx context.Context, a Artifact) error
	FinishRun(ctx context.Context, runID, state string, runErr error) error

	GetRun(ctx context.Context, runID string) (Run, bool, error)
	Transitions(ctx context.Context, runID string) ([]Transition, error)
	Artifacts(ctx context.Context, runID string) ([]Artifact, error)

	Close() error
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a lexicographically sortable run id.
func NewRunID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Nop is a Recorder that stores nothing.
type Nop struct{}

func (Nop) CreateRun(context.Context, Run) error                      { return nil }
func (Nop) SetState(context.Context, string, string) error            { return nil }
func (Nop) RecordArtifact(context.Context, Artifact) error            { return nil }
func (Nop) FinishRun(context.Context, string, string, error) error    { return nil }
func (Nop) GetRun(context.Context, string) (Run, bool, error)         { return Run{}, false, nil }
func (Nop) Transitions(context.Context, string) ([]Transition, error) { return nil, nil }
func (Nop) Artifacts(context.Context, string) ([]Artifact, error)     { return nil, nil }
func (Nop) Close() error                                              { return nil }
