package pathsafety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func TestValidateRejectsUnsafeShapes(t *testing.T) {
	v := New()
	base := t.TempDir()
	tests := []struct {
		name   string
		path   string
		base   string
		reason string
	}{
		{"empty", "  ", "", "empty path"},
		{"nul", "game\x00.iso", "", "NUL"},
		{"traversal", base + "/../etc/passwd", "", "parent-directory"},
		{"outside base", "/tmp/elsewhere/out.chd", base, "outside base directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.path, tt.base, false, false)
			if !errors.Is(err, ErrUnsafePath) {
				t.Fatalf("expected ErrUnsafePath, got %v", err)
			}
			var pathErr *PathError
			if !errors.As(err, &pathErr) || !strings.Contains(pathErr.Reason, tt.reason) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestValidateAcceptsPathsInsideBase(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "in", "game.iso")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	v := New()
	if err := v.Validate(src, base, true, false); err != nil {
		t.Fatalf("read validation failed: %v", err)
	}
	if err := v.Validate(filepath.Join(base, "out", "nested", "game.chd"), base, false, true); err != nil {
		t.Fatalf("write validation failed: %v", err)
	}
	if err := v.Validate(base, base, true, true); err != nil {
		t.Fatalf("base itself should validate: %v", err)
	}
}

func TestValidateSiblingPrefixIsOutside(t *testing.T) {
	parent := t.TempDir()
	base := filepath.Join(parent, "roms")
	err := New().Validate(filepath.Join(parent, "roms-extra", "a.iso"), base, false, false)
	if !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("expected sibling directory to be rejected, got %v", err)
	}
}

func TestValidateChecksAccessModes(t *testing.T) {
	dir := t.TempDir()
	var calls []string
	v := &Validator{access: func(path string, mode uint32) error {
		calls = append(calls, path)
		if mode == unix.W_OK {
			return unix.EACCES
		}
		return nil
	}}

	if err := v.Validate(filepath.Join(dir, "missing", "out.chd"), "", false, true); !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("expected write rejection, got %v", err)
	}
	if len(calls) != 1 || calls[0] != dir {
		t.Fatalf("expected access check on nearest existing ancestor %s, got %v", dir, calls)
	}

	if err := v.Validate(filepath.Join(dir, "missing.iso"), "", true, false); err != nil {
		t.Fatalf("stub allows reads: %v", err)
	}
}

func TestValidateUnreadableSource(t *testing.T) {
	err := New().Validate(filepath.Join(t.TempDir(), "absent.iso"), "", true, false)
	if !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("expected missing source to fail read check, got %v", err)
	}
}
