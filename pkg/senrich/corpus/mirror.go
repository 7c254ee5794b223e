package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
)

const dirPerm = 0o755

// Mirror maps paths under Root to the same relative paths under Out.
type Mirror struct {
	Root string
	Out  string
}

// NewMirror cleans both roots so that mapping is purely lexical.
func NewMirror(root, out string) Mirror {
	return Mirror{Root: filepath.Clean(root), Out: filepath.Clean(out)}
}

// Path returns Out joined with p's path relative to Root. Paths that are
// not under Root are rejected rather than passed through.
func (m Mirror) Path(p string) (string, error) {
	rel, err := filepath.Rel(m.Root, filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("%w: %s not under %s: %w", internalerr.ErrInputLayout, p, m.Root, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s not under %s", internalerr.ErrInputLayout, p, m.Root)
	}
	return filepath.Join(m.Out, rel), nil
}

// Ensure maps p and creates the parent directory of the result if missing.
func (m Mirror) Ensure(p string) (string, error) {
	dest, err := m.Path(p)
	if err != nil {
		return "", err
	}
	if err := EnsureDir(filepath.Dir(dest)); err != nil {
		return "", err
	}
	return dest, nil
}

// EnsureDir creates dir and its parents unless it already exists.
func EnsureDir(dir string) error {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return nil
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return internalerr.IOf(err, "create %s", dir)
	}
	return nil
}
