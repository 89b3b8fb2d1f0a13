// Package bolt implements storage.KV on top of a bbolt database file.
package bolt

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
)

// openTimeout bounds how long Open waits for the file lock held by
// another process.
const openTimeout = time.Second

// Bolt is a storage.KV keeping every slot in one bucket.
type Bolt struct {
	Db       *bbolt.DB
	DbFile   string
	FileMode os.FileMode
	Bucket   string
}

// New opens (or creates) the bbolt file at cfg.Storage.Path and makes sure
// the configured bucket exists.
func New(cfg *config.Config, mode os.FileMode) (*Bolt, error) {
	db, err := bbolt.Open(cfg.Storage.Path, mode, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("bolt.New: open %s: %w: %w", cfg.Storage.Path, storage.ErrUnavailable, err)
	}

	b := &Bolt{
		Db:       db,
		DbFile:   cfg.Storage.Path,
		FileMode: mode,
		Bucket:   cfg.Storage.Bucket,
	}

	if err := b.createBucket(); err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt.New: create bucket %s: %w", b.Bucket, err)
	}
	slog.Debug("bolt bucket ready", slog.String("file", b.DbFile), slog.String("bucket", b.Bucket))

	return b, nil
}

func (b *Bolt) createBucket() error {
	return b.Db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(b.Bucket))
		return err
	})
}

// Get returns the value under key, or storage.ErrNoValue.
func (b *Bolt) Get(key string) (value string, err error) {
	err = b.Db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(b.Bucket))
		if bucket == nil {
			return storage.ErrNoValue
		}

		// The returned slice is only valid inside the transaction, so it
		// is copied into a string here.
		v := bucket.Get([]byte(key))
		if v == nil {
			return storage.ErrNoValue
		}
		value = string(v)
		return nil
	})
	if err != nil && err != storage.ErrNoValue {
		return "", fmt.Errorf("Get: %w: %w", storage.ErrUnavailable, err)
	}

	return value, err
}

// Set writes value under key, creating the bucket if it was removed.
func (b *Bolt) Set(key, value string) error {
	err := b.Db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(b.Bucket))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("Set: %w: %w", storage.ErrUnavailable, err)
	}

	return nil
}

// Close releases the file lock and closes the database.
func (b *Bolt) Close() error {
	return b.Db.Close()
}
