// Package progress renders the single-line progress bar shown while a stage
// walks the corpus.
package progress

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// DefaultWidth is the bar width in columns.
const DefaultWidth = 32

const (
	fillRune  = "█"
	emptyRune = "-"
	prefix    = "   "
)

// Bar writes progress lines to w, each one overwriting the previous one.
// A nil or disabled Bar is a no-op; a failed write disables it.
type Bar struct {
	w       io.Writer
	enabled bool
	width   int
	lastLen int
}

// New returns a Bar of the given width (DefaultWidth when width <= 0).
func New(w io.Writer, enabled bool, width int) *Bar {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Bar{w: w, enabled: enabled && w != nil, width: width}
}

// Update overwrites the current line with the state for iteration of total.
func (b *Bar) Update(iteration, total int, eta time.Duration) {
	b.write(iteration, total, eta, false)
}

// Finish renders the last state of a stage and ends the line.
func (b *Bar) Finish(iteration, total int, eta time.Duration) {
	b.write(iteration, total, eta, true)
}

// Break ends a partially drawn line, e.g. before reporting an error.
func (b *Bar) Break() {
	if b == nil || !b.enabled || b.lastLen == 0 {
		return
	}
	if _, err := io.WriteString(b.w, "\n"); err != nil {
		b.enabled = false
	}
	b.lastLen = 0
}

func (b *Bar) write(iteration, total int, eta time.Duration, final bool) {
	if b == nil || !b.enabled {
		return
	}
	line := Render(iteration, total, eta, b.width)

	var sb strings.Builder
	sb.WriteByte('\r')
	sb.WriteString(line)
	if n := len([]rune(line)); b.lastLen > n {
		sb.WriteString(strings.Repeat(" ", b.lastLen-n))
	}
	if final {
		sb.WriteByte('\n')
		b.lastLen = 0
	} else {
		b.lastLen = len([]rune(line))
	}
	if _, err := io.WriteString(b.w, sb.String()); err != nil {
		b.enabled = false
	}
}

// Render formats one progress line without the leading carriage return:
// "   50.0% |████----| 0:00:12".
func Render(iteration, total int, eta time.Duration, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	ratio := 1.0
	if total > 0 {
		ratio = float64(iteration) / float64(total)
	}
	ratio = math.Max(0, math.Min(1, ratio))

	filled := int(math.Round(float64(width) * ratio))
	bar := strings.Repeat(fillRune, filled) + strings.Repeat(emptyRune, width-filled)
	return fmt.Sprintf("%s %.1f%% |%s| %s", prefix, 100*ratio, bar, FormatDuration(eta))
}

// ETA extrapolates the remaining time from the most recent item alone.
func ETA(remaining int, last time.Duration) time.Duration {
	if remaining <= 0 {
		return 0
	}
	return time.Duration(remaining) * last
}

// FormatDuration renders d rounded up to whole seconds as "H:MM:SS", with a
// "N day(s), " prefix past 24 hours. Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 0 {
		secs = 0
	}
	days := secs / 86400
	secs %= 86400
	hms := fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	switch {
	case days == 1:
		return "1 day, " + hms
	case days > 1:
		return fmt.Sprintf("%d days, %s", days, hms)
	default:
		return hms
	}
}
