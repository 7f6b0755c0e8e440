package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"romnorm/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckConverters turns dependency statuses into results. Optional
// (disabled) converters pass regardless of availability.
func CheckConverters(statuses []deps.Status) []Result {
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		name := "Converter " + status.Name
		switch {
		case status.Available:
			results = append(results, Result{Name: name, Passed: true, Detail: status.Resolved})
		case status.Optional:
			results = append(results, Result{Name: name, Passed: true, Detail: "disabled; " + status.Detail})
		default:
			results = append(results, Result{Name: name, Detail: status.Detail})
		}
	}
	return results
}
