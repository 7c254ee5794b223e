package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRenderHalfway(t *testing.T) {
	line := Render(50, 100, 0, 32)

	if !strings.Contains(line, "50.0%") {
		t.Fatalf("missing percentage: %q", line)
	}
	bar := line[strings.Index(line, "|")+1 : strings.LastIndex(line, "|")]
	if n := strings.Count(bar, fillRune); n != 16 {
		t.Errorf("filled = %d, want 16", n)
	}
	if n := strings.Count(bar, emptyRune); n != 16 {
		t.Errorf("empty = %d, want 16", n)
	}
}

func TestRenderBounds(t *testing.T) {
	tests := []struct {
		iteration, total int
		want             string
	}{
		{0, 10, " 0.0% |----------| 0:00:00"},
		{10, 10, "100.0% |" + strings.Repeat(fillRune, 10) + "|"},
		// an empty corpus is complete
		{0, 0, "100.0%"},
	}
	for _, tt := range tests {
		if got := Render(tt.iteration, tt.total, 0, 10); !strings.Contains(got, tt.want) {
			t.Errorf("Render(%d, %d) = %q, want it to contain %q", tt.iteration, tt.total, got, tt.want)
		}
	}
}

func TestRenderOddWidth(t *testing.T) {
	line := Render(1, 3, 0, 100)
	if !strings.Contains(line, "33.3%") {
		t.Errorf("missing percentage: %q", line)
	}
	if n := strings.Count(line, fillRune); n != 33 {
		t.Errorf("filled = %d, want 33", n)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00:00"},
		{-5 * time.Second, "0:00:00"},
		{1500 * time.Millisecond, "0:00:02"},
		{61 * time.Second, "0:01:01"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "3:04:05"},
		{25 * time.Hour, "1 day, 1:00:00"},
		{50 * time.Hour, "2 days, 2:00:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestETALastSample(t *testing.T) {
	if got := ETA(3, 10*time.Second); got != 30*time.Second {
		t.Errorf("ETA(3, 10s) = %s, want 30s", got)
	}
	if got := ETA(0, 10*time.Second); got != 0 {
		t.Errorf("ETA(0, 10s) = %s, want 0", got)
	}
}

func TestBarOverwritesAndEndsLine(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, true, 4)

	b.Update(0, 2, 0)
	b.Update(1, 2, time.Second)
	b.Finish(2, 2, 0)

	out := buf.String()
	if n := strings.Count(out, "\r"); n != 3 {
		t.Errorf("carriage returns = %d, want 3", n)
	}
	if n := strings.Count(out, "\n"); n != 1 {
		t.Errorf("newlines = %d, want 1", n)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("output does not end the line: %q", out)
	}
}

func TestBarDefaultWidth(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, true, 0)
	b.Finish(1, 2, 0)

	if n := strings.Count(buf.String(), fillRune) + strings.Count(buf.String(), emptyRune); n != DefaultWidth {
		t.Errorf("bar columns = %d, want %d", n, DefaultWidth)
	}
}

func TestBarDisabled(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, false, 0)
	b.Update(1, 2, 0)
	b.Finish(2, 2, 0)
	b.Break()
	if buf.Len() != 0 {
		t.Errorf("disabled bar wrote %q", buf.String())
	}

	var nilBar *Bar
	nilBar.Update(1, 2, 0)
	nilBar.Break()
}

func TestBarBreak(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, true, 4)
	b.Break()
	if buf.Len() != 0 {
		t.Fatalf("nothing drawn yet, got %q", buf.String())
	}

	b.Update(1, 2, 0)
	b.Break()
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Errorf("Break did not end the line: %q", buf.String())
	}
}

type failWriter struct{ calls int }

func (f *failWriter) Write(p []byte) (int, error) {
	f.calls++
	return 0, errors.New("closed")
}

func TestBarDisablesOnWriteError(t *testing.T) {
	w := &failWriter{}
	b := New(w, true, 4)
	b.Update(1, 2, 0)
	b.Update(2, 2, 0)
	if w.calls != 1 {
		t.Errorf("writes after failure = %d, want 1", w.calls)
	}
}
