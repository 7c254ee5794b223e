package enrich

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
	"github.com/cognicore/senrich/pkg/senrich/lang"
)

const stderrTail = 2048

// Process runs the disambiguation tool as a child process. A tool path
// ending in ".jar" is launched through the JVM; anything else is executed
// directly. The child's working directory is the tool's own directory.
type Process struct {
	tool     string
	javaBin  string
	javaHeap string
	stderr   io.Writer
	logger   *zap.Logger
}

// Option configures a Process.
type Option func(*Process)

// WithJava sets the java launcher and maximum heap (e.g. "5g").
func WithJava(bin, heap string) Option {
	return func(p *Process) {
		if bin != "" {
			p.javaBin = bin
		}
		if heap != "" {
			p.javaHeap = heap
		}
	}
}

// WithStderr mirrors the child's standard error to w.
func WithStderr(w io.Writer) Option {
	return func(p *Process) { p.stderr = w }
}

// WithLogger sets the logger for per-invocation debug events.
func WithLogger(l *zap.Logger) Option {
	return func(p *Process) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcess resolves tool to an absolute path and checks that it exists.
func NewProcess(tool string, opts ...Option) (*Process, error) {
	abs, err := filepath.Abs(tool)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", internalerr.ErrExternalTool, tool, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrExternalTool, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", internalerr.ErrExternalTool, abs)
	}

	p := &Process{tool: abs, javaBin: "java", javaHeap: "5g", logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Tool returns the absolute tool path.
func (p *Process) Tool() string { return p.tool }

// Command builds the child command for one invocation without starting it.
func (p *Process) Command(ctx context.Context, l lang.Language, in, words, ids string) (*exec.Cmd, error) {
	args := []string{l.String()}
	for _, path := range []string{in, words, ids} {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve %s: %w", internalerr.ErrExternalTool, path, err)
		}
		args = append(args, abs)
	}

	var cmd *exec.Cmd
	if strings.EqualFold(filepath.Ext(p.tool), ".jar") {
		jvm := append([]string{"-Xmx" + p.javaHeap, "-jar", p.tool}, args...)
		cmd = exec.CommandContext(ctx, p.javaBin, jvm...)
	} else {
		cmd = exec.CommandContext(ctx, p.tool, args...)
	}
	cmd.Dir = filepath.Dir(p.tool)
	return cmd, nil
}

// Invoke runs the tool once and parses its status line.
func (p *Process) Invoke(ctx context.Context, l lang.Language, in, words, ids string) (Status, error) {
	cmd, err := p.Command(ctx, l, in, words, ids)
	if err != nil {
		return Status{}, err
	}

	var stdout bytes.Buffer
	tail := &tailBuffer{max: stderrTail}
	cmd.Stdout = &stdout
	if p.stderr != nil {
		cmd.Stderr = io.MultiWriter(tail, p.stderr)
	} else {
		cmd.Stderr = tail
	}

	p.logger.Debug("enrich: invoking tool", zap.Strings("args", cmd.Args), zap.String("dir", cmd.Dir))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Status{}, fmt.Errorf("%w: %w", internalerr.ErrExternalTool, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Status{}, fmt.Errorf("%w: %s exited with status %d: %s",
				internalerr.ErrExternalTool, filepath.Base(cmd.Path), exitErr.ExitCode(), tail.String())
		}
		return Status{}, fmt.Errorf("%w: %w", internalerr.ErrExternalTool, err)
	}

	status, err := ParseStatus(stdout.String())
	if err != nil {
		return Status{}, err
	}
	p.logger.Debug("enrich: tool finished",
		zap.String("input", in),
		zap.Int("requests", status.Requests),
		zap.Int("wait_seconds", status.WaitSeconds))
	return status, nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}
