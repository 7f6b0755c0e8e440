package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultBufferSize is the chunk size used when CopyOptions.BufferSize is unset.
const DefaultBufferSize = 1 << 20

// partSuffix names the sibling temporary file a copy is staged in.
const partSuffix = ".part"

// ErrDestinationExists is returned when dst exists and replacement is off.
var ErrDestinationExists = errors.New("destination already exists")

// CopyOptions tunes AtomicCopy.
type CopyOptions struct {
	AllowReplace bool
	BufferSize   int
	// Progress, when set, is called after every chunk with the running total.
	Progress func(copied int64)
}

// AtomicCopy copies src to dst through a sibling dst+".part" file. ctx is
// checked before every chunk; the part file is synced and renamed over dst
// only after the last chunk, then source permissions and modification time
// are applied best-effort. The part file never outlives the call.
func AtomicCopy(ctx context.Context, src, dst string, opts CopyOptions) (err error) {
	if !opts.AllowReplace {
		if _, statErr := os.Lstat(dst); statErr == nil {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
	}
	bufSize := opts.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	part := dst + partSuffix
	out, err := os.OpenFile(part, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create part file: %w", err)
	}
	defer func() {
		_ = out.Close()
		if _, statErr := os.Lstat(part); statErr == nil {
			_ = os.Remove(part)
		}
	}()

	buf := make([]byte, bufSize)
	var copied int64
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("copy %s: %w", src, err)
		}
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return fmt.Errorf("write part file: %w", err)
			}
			copied += int64(n)
			if opts.Progress != nil {
				opts.Progress(copied)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read source: %w", readErr)
		}
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync part file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close part file: %w", err)
	}
	if !opts.AllowReplace {
		if _, statErr := os.Lstat(dst); statErr == nil {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
	}
	if err := os.Rename(part, dst); err != nil {
		return fmt.Errorf("rename part file: %w", err)
	}

	_ = os.Chmod(dst, info.Mode().Perm())
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}
