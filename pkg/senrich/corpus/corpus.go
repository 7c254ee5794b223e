// Package corpus enumerates the input collection and maps input files onto
// the mirrored output trees.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
)

// Enumerate lists every file at depth two under root (root/<dir>/<file>),
// sorted by full path. Files directly under root, deeper directories and
// dot-entries are ignored.
func Enumerate(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrInputLayout, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", internalerr.ErrInputLayout, root)
	}

	dirs, err := os.ReadDir(root)
	if err != nil {
		return nil, internalerr.IOf(err, "list %s", root)
	}

	var files []string
	for _, d := range dirs {
		if hidden(d.Name()) {
			continue
		}
		dir := filepath.Join(root, d.Name())
		if !isDir(dir, d) {
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, internalerr.IOf(err, "list %s", dir)
		}
		for _, e := range entries {
			if hidden(e.Name()) {
				continue
			}
			p := filepath.Join(dir, e.Name())
			if !isRegular(p, e) {
				continue
			}
			files = append(files, p)
		}
	}

	sort.Strings(files)
	return files, nil
}

func hidden(name string) bool { return strings.HasPrefix(name, ".") }

func isDir(path string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	t, err := os.Stat(path)
	return err == nil && t.IsDir()
}

func isRegular(path string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	t, err := os.Stat(path)
	return err == nil && t.Mode().IsRegular()
}
