//go:build !unix

package store

import "context"

// lockFile is a no-op where flock is unavailable; FileStore then relies on
// its in-process lock only.
func lockFile(ctx context.Context, _ string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func() {}, nil
}
