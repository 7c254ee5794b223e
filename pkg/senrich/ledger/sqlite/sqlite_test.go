package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/senrich/pkg/senrich/ledger"
)

func openTest(t *testing.T) (ledger.Recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("Count tables: %v", err)
	}
	if count != 3 { // runs, run_states, artifacts
		t.Errorf("Expected 3 tables, got %d", count)
	}
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	l, _ := openTest(t)

	id := ledger.NewRunID()
	run := ledger.Run{
		ID:         id,
		Tool:       "S-Enrich",
		Language:   "ES",
		IgnoreCase: true,
		Input:      "/in/",
		Output:     "/out/",
		State:      "init",
	}
	if err := l.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	for _, st := range []string{"enumerated", "normalized", "tokenized", "enriched"} {
		if err := l.SetState(ctx, id, st); err != nil {
			t.Fatalf("SetState(%s): %v", st, err)
		}
	}
	if err := l.FinishRun(ctx, id, "finalized", nil); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, ok, err := l.GetRun(ctx, id)
	if err != nil || !ok {
		t.Fatalf("GetRun: ok=%v err=%v", ok, err)
	}
	if got.State != "finalized" || got.Error != "" {
		t.Errorf("unexpected final run: %+v", got)
	}
	if !got.IgnoreCase || got.Language != "ES" || got.Input != "/in/" {
		t.Errorf("run fields not preserved: %+v", got)
	}
	if got.StartedAt.IsZero() || got.FinishedAt.IsZero() {
		t.Errorf("timestamps missing: %+v", got)
	}

	trs, err := l.Transitions(ctx, id)
	if err != nil {
		t.Fatalf("Transitions: %v", err)
	}
	want := []string{"init", "enumerated", "normalized", "tokenized", "enriched", "finalized"}
	if len(trs) != len(want) {
		t.Fatalf("got %d transitions, want %d", len(trs), len(want))
	}
	for i, tr := range trs {
		if tr.State != want[i] {
			t.Errorf("transition %d = %s, want %s", i, tr.State, want[i])
		}
	}
}

func TestFinishRunFailed(t *testing.T) {
	ctx := context.Background()
	l, _ := openTest(t)

	id := ledger.NewRunID()
	if err := l.CreateRun(ctx, ledger.Run{ID: id, Tool: "S-Enrich", Language: "EN", State: "init"}); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := l.FinishRun(ctx, id, "failed", errors.New("enrich /in/a/2.txt: boom")); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, _, err := l.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.State != "failed" || got.Error != "enrich /in/a/2.txt: boom" {
		t.Errorf("unexpected run: %+v", got)
	}
}

func TestUnknownRun(t *testing.T) {
	ctx := context.Background()
	l, _ := openTest(t)

	if err := l.SetState(ctx, "missing", "enumerated"); err == nil {
		t.Error("SetState on unknown run should fail")
	}
	if _, ok, err := l.GetRun(ctx, "missing"); err != nil || ok {
		t.Errorf("GetRun(missing) = ok=%v err=%v", ok, err)
	}
	if err := l.CreateRun(ctx, ledger.Run{}); err == nil {
		t.Error("CreateRun without id should fail")
	}
}

func TestArtifactsPersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	l, path := openTest(t)

	id := ledger.NewRunID()
	if err := l.CreateRun(ctx, ledger.Run{ID: id, Tool: "S-Enrich", Language: "EN", State: "init"}); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	arts := []ledger.Artifact{
		{RunID: id, Stage: "normalize", InputPath: "/in/a/1.txt", OutputPath: "/in/a/1.txt", Paragraphs: 3},
		{RunID: id, Stage: "tokenize", InputPath: "/in/a/1.txt", OutputPath: "/out/raw_texts/a/1.txt", Paragraphs: 3, Sentences: 5},
		{RunID: id, Stage: "enrich", InputPath: "/in/a/1.txt", OutputPath: "/out/recognized_words/a/1.txt",
			SecondaryPath: "/out/disambiguated_ids/a/1.txt", Requests: 4, WaitSeconds: 2, Elapsed: 1500 * time.Millisecond},
	}
	for _, a := range arts {
		if err := l.RecordArtifact(ctx, a); err != nil {
			t.Fatalf("RecordArtifact: %v", err)
		}
	}
	// re-recording the same stage and input replaces the row
	arts[1].Sentences = 6
	if err := l.RecordArtifact(ctx, arts[1]); err != nil {
		t.Fatalf("RecordArtifact: %v", err)
	}
	l.Close()

	l2, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer l2.Close()

	got, err := l2.Artifacts(ctx, id)
	if err != nil {
		t.Fatalf("Artifacts: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d artifacts, want 3", len(got))
	}
	if got[1].Sentences != 6 {
		t.Errorf("tokenize sentences = %d, want 6", got[1].Sentences)
	}
	if got[2] != arts[2] {
		t.Errorf("enrich artifact = %+v, want %+v", got[2], arts[2])
	}
}

func TestNewRunIDSortable(t *testing.T) {
	a := ledger.NewRunID()
	b := ledger.NewRunID()
	if len(a) != 26 {
		t.Errorf("run id length = %d, want 26", len(a))
	}
	if a >= b {
		t.Errorf("run ids not increasing: %s >= %s", a, b)
	}
}
