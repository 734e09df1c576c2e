package duckdb

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// OpenRetry opens the database like Open, retrying with exponential backoff
// while another process holds the file lock. Other errors are returned
// immediately. A zero timeout disables retries.
func OpenRetry(ctx context.Context, path string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 || path == "" {
		return Open(path)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = timeout

	var store *Store
	err := backoff.Retry(func() error {
		s, err := Open(path)
		if err != nil {
			if isLockConflict(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		store = s
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, err
	}
	return store, nil
}

// isLockConflict reports whether err is DuckDB refusing a file locked by
// another process.
func isLockConflict(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not set lock") || strings.Contains(msg, "conflicting lock")
}
