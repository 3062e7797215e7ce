// Package bolt adapts a bbolt database to the kv.Store contract. bbolt admits
// a single writer at a time, so every primitive runs inside one update
// transaction and is atomic without further coordination.
package bolt

import (
	"context"
	"strconv"

	"go.etcd.io/bbolt"

	"github.com/jacentio/arbor/kv"
)

var bucketName = []byte("arbor")

// Store wraps an open bbolt database. All keys share one bucket.
type Store struct {
	db *bbolt.DB
}

// New returns a Store backed by db, creating the bucket if needed.
func New(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

var _ kv.Store = (*Store)(nil)

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	var value string
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			// copy out: bbolt memory is only valid inside the transaction
			value = string(v)
			ok = true
		}
		return nil
	})
	return value, ok, err
}

func (s *Store) Set(_ context.Context, key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
}

func (s *Store) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

func (s *Store) Incr(_ context.Context, key string) (int64, error) {
	var next int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if v := b.Get([]byte(key)); v != nil {
			n, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return err
			}
			next = n
		}
		next++
		return b.Put([]byte(key), []byte(strconv.FormatInt(next, 10)))
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) SetIfAbsent(_ context.Context, key, value string) (bool, error) {
	var created bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(key)) != nil {
			return nil
		}
		created = true
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *Store) DeleteIfEquals(_ context.Context, key, value string) (bool, error) {
	var removed bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		v := b.Get([]byte(key))
		if v == nil || string(v) != value {
			return nil
		}
		removed = true
		return b.Delete([]byte(key))
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
