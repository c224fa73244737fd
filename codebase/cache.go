package codebase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Cache persists, per source file, the content hash of the last
// successful scan. ScanAll/ScanFile consult it to skip re-parsing files
// whose bytes have not changed since the cache was last written,
// trading a parse for a bucket lookup; only files the same Codebase has
// already parsed are skipped, so a fresh process reparses every file.
//
// Grounded on mvp-scale-aOa's internal/adapters/bbolt/store.go: one
// bolt.DB, one bucket per root directory, Update/View transactions
// around plain Get/Put. That teacher file also serializes whole index
// structures through a bucket; the declaration graph this parser
// builds holds live *model.Type cross-references that do not survive a
// JSON round-trip cleanly, so this cache stores only the hash needed to
// decide whether to reparse, not the graph itself.
type Cache struct {
	db     *bolt.DB
	bucket []byte
}

var cacheBucket = []byte("hashes")

// OpenCache opens (or creates) a bbolt database at path, scoped to a
// single codebase root.
func OpenCache(path string, root string) (*Cache, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Cache{db: db, bucket: []byte(root)}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// hashOf returns the hex-encoded sha256 digest of content.
func hashOf(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Unchanged reports whether content's hash matches the value last
// recorded for path via Put.
func (c *Cache) Unchanged(path string, content []byte) (bool, error) {
	want := hashOf(content)
	var got []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(path)); v != nil {
			got = make([]byte, len(v))
			copy(got, v)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return got != nil && string(got) == want, nil
}

// Put records content's hash as the last-known state of path.
func (c *Cache) Put(path string, content []byte) error {
	hash := hashOf(content)
	return c.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(c.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(path), []byte(hash))
	})
}

// Delete removes path's recorded hash. Idempotent.
func (c *Cache) Delete(path string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(path))
	})
}
