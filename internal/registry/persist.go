package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/sethvargo/go-retry"
)

const (
	lockRetryInterval = 50 * time.Millisecond
	lockRetryAttempts = 40
)

var errLockBusy = errors.New("definitions document lock held by another process")

// writeDocumentAtomic replaces path with data. Writers are serialized through
// a sibling .lock file and the content is swapped in with a rename so readers
// never observe a partial document.
func writeDocumentAtomic(ctx context.Context, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	backoff := retry.WithMaxRetries(lockRetryAttempts, retry.NewConstant(lockRetryInterval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		ok, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire document lock: %w", err)
		}
		if !ok {
			return retry.RetryableError(errLockBusy)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Unlock()
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp document: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
