package internalerr

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestWrapFileNil(t *testing.T) {
	if err := WrapFile("normalize", "a.txt", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestWrapFileKeepsChain(t *testing.T) {
	err := WrapFile("enrich", "in/a/1.txt", ErrExternalTool)

	var fe *FileError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FileError, got %T", err)
	}
	if fe.Stage != "enrich" || fe.Path != "in/a/1.txt" {
		t.Errorf("unexpected stage/path: %q %q", fe.Stage, fe.Path)
	}
	if !errors.Is(err, ErrExternalTool) {
		t.Error("expected chain to contain ErrExternalTool")
	}
	if got, want := err.Error(), "enrich in/a/1.txt: external tool failure"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIOfMatchesBoth(t *testing.T) {
	err := IOf(os.ErrNotExist, "read %s", "x.txt")
	if !errors.Is(err, ErrIO) {
		t.Error("expected ErrIO")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("expected os.ErrNotExist")
	}
	if !strings.Contains(err.Error(), "read x.txt") {
		t.Errorf("message %q lacks context", err.Error())
	}
	if errors.Is(err, ErrInputLayout) {
		t.Error("unexpected ErrInputLayout")
	}
	if err := IOf(nil, "noop"); err != nil {
		t.Errorf("IOf(nil) = %v, want nil", err)
	}
}
