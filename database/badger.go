package database

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// OpenBadger opens (creating if needed) an embedded BadgerDB at dir.
// Badger's own logger is silenced; the store reports its errors itself.
func OpenBadger(dir string) (*badger.DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create badger dir: %w", err)
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return db, nil
}
