package logs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"romnorm/internal/logging"
)

const defaultPollInterval = 250 * time.Millisecond

// TailOptions controls Tail.
type TailOptions struct {
	// Lines is how many trailing lines to print first; zero prints none.
	Lines int
	// Follow keeps reading appended lines until ctx is done.
	Follow bool
	// PollInterval defaults to 250ms.
	PollInterval time.Duration
	// Match filters lines; nil accepts every line.
	Match func(line string) bool
}

// Tail emits the last opts.Lines matching lines of path and, in follow mode,
// every matching line appended afterwards. A missing file is treated as
// empty. Cancelling ctx ends a follow without error.
func Tail(ctx context.Context, path string, opts TailOptions, emit func(line string) error) error {
	match := opts.Match
	if match == nil {
		match = func(string) bool { return true }
	}

	offset, err := emitLast(path, opts.Lines, match, emit)
	if err != nil || !opts.Follow {
		return err
	}

	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		offset, err = emitFrom(path, offset, match, emit)
		if err != nil {
			return err
		}
	}
}

func emitLast(path string, limit int, match func(string) bool, emit func(string) error) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var ring []string
	if limit > 0 {
		ring = make([]string, 0, limit)
	}
	offset, err := scanLines(file, func(line string) error {
		if limit <= 0 || !match(line) {
			return nil
		}
		if len(ring) == limit {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, line := range ring {
		if err := emit(line); err != nil {
			return offset, err
		}
	}
	return offset, nil
}

func emitFrom(path string, offset int64, match func(string) bool, emit func(string) error) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < offset {
		// Truncated or rotated; start over.
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	read, err := scanLines(file, func(line string) error {
		if !match(line) {
			return nil
		}
		return emit(line)
	})
	return offset + read, err
}

// scanLines calls fn for every complete line and returns the bytes consumed.
// A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(string) error) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return consumed, nil
		}
		if err != nil {
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		if err := fn(strings.TrimRight(line, "\r\n")); err != nil {
			return consumed, err
		}
	}
}

// MatchRunID accepts lines logged for runID. JSON lines are matched on their
// run_id field; console lines on the short run label.
func MatchRunID(runID string) func(string) bool {
	runID = strings.TrimSpace(runID)
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return func(line string) bool {
		if runID == "" {
			return true
		}
		if strings.HasPrefix(line, "{") {
			var fields map[string]any
			if err := json.Unmarshal([]byte(line), &fields); err == nil {
				value, _ := fields[logging.FieldRunID].(string)
				return value == runID
			}
		}
		return strings.Contains(line, "Run "+short)
	}
}
