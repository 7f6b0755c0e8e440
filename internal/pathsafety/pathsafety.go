package pathsafety

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrUnsafePath is wrapped by every PathError.
var ErrUnsafePath = errors.New("unsafe path")

// PathError reports why a path was rejected.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("unsafe path %q: %s", e.Path, e.Reason)
}

func (e *PathError) Unwrap() error { return ErrUnsafePath }

// Validator checks paths against the safety rules. The zero value is ready
// to use.
type Validator struct {
	// access is replaced in tests; defaults to unix.Access.
	access func(path string, mode uint32) error
}

// New returns a Validator backed by access(2).
func New() *Validator {
	return &Validator{access: unix.Access}
}

// Validate returns nil when path is acceptable. A non-empty baseDir confines
// path to that directory. allowRead requires path to be readable;
// allowWrite requires the nearest existing ancestor (or path itself) to be
// writable.
func (v *Validator) Validate(path, baseDir string, allowRead, allowWrite bool) error {
	if strings.TrimSpace(path) == "" {
		return &PathError{Path: path, Reason: "empty path"}
	}
	if strings.ContainsRune(path, 0) {
		return &PathError{Path: path, Reason: "contains NUL byte"}
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return &PathError{Path: path, Reason: "contains parent-directory segment"}
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return &PathError{Path: path, Reason: fmt.Sprintf("resolve: %v", err)}
	}
	if strings.TrimSpace(baseDir) != "" {
		base, err := filepath.Abs(baseDir)
		if err != nil {
			return &PathError{Path: path, Reason: fmt.Sprintf("resolve base directory: %v", err)}
		}
		if !within(base, abs) {
			return &PathError{Path: path, Reason: fmt.Sprintf("outside base directory %s", base)}
		}
	}

	if allowRead {
		if err := v.accessFn()(abs, unix.R_OK); err != nil {
			return &PathError{Path: path, Reason: fmt.Sprintf("not readable: %v", err)}
		}
	}
	if allowWrite {
		target := nearestExisting(abs)
		if err := v.accessFn()(target, unix.W_OK); err != nil {
			return &PathError{Path: path, Reason: fmt.Sprintf("not writable (%s): %v", target, err)}
		}
	}
	return nil
}

func (v *Validator) accessFn() func(string, uint32) error {
	if v == nil || v.access == nil {
		return unix.Access
	}
	return v.access
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// nearestExisting walks up from path to the first entry that exists.
func nearestExisting(path string) string {
	current := path
	for {
		if _, err := os.Lstat(current); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}
