// Package boltdb stores records in a BoltDB bucket, and reads them back as a pre-sorted groupkit.Source.
// Records are kept in the order of their composite key, so a Store can feed a grouping traversal directly.
package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"

	"github.com/boltdb/bolt"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logging"

	"go.llib.dev/groupkit/pkg/groupkit"
)

const (
	ErrBucketNotFound errorkit.Error = "boltdb: bucket not found"
	ErrDecode         errorkit.Error = "boltdb: record decoding failed"
)

// Store keeps JSON encoded records of type R in a single bucket.
type Store[R any] struct {
	DB     *bolt.DB
	Bucket []byte
	// Key returns the composite key of a record.
	// Records are read back in the byte order of their keys.
	// Records with equal keys keep their insertion order.
	Key func(R) []byte
	// Logger is used for the store lifecycle logs.
	// When nil, the groupkit default logger is used.
	Logger *logging.Logger
}

func (s *Store[R]) logger() *logging.Logger {
	return groupkit.Config{Logger: s.Logger}.GetLogger()
}

// Open opens the database at cfg.Path and makes sure the bucket exists.
// Only the logger of the options is used.
func Open[R any](cfg Config, key func(R) []byte, opts ...groupkit.Option) (*Store[R], error) {
	logger := groupkit.ToConfig(opts).GetLogger()
	db, err := bolt.Open(cfg.Path, 0600, &bolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, err
	}
	bucket := []byte(cfg.Bucket)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		return nil, errorkit.Merge(err, db.Close())
	}
	logger.Debug(context.Background(), "bolt store opened",
		logging.Field("path", cfg.Path),
		logging.Field("bucket", cfg.Bucket))
	return &Store[R]{DB: db, Bucket: bucket, Key: key, Logger: logger}, nil
}

func (s *Store[R]) Close() error {
	err := s.DB.Close()
	if err != nil {
		s.logger().Warn(context.Background(), "bolt store close failed", logging.ErrField(err))
		return err
	}
	s.logger().Debug(context.Background(), "bolt store closed", logging.Field("path", s.DB.Path()))
	return nil
}

// Append stores the records in a single transaction.
func (s *Store[R]) Append(ctx context.Context, records ...R) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.Bucket)
		if b == nil {
			return ErrBucketNotFound.F("%s", s.Bucket)
		}
		for _, r := range records {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			value, err := json.Marshal(r)
			if err != nil {
				return err
			}
			key := append([]byte{}, s.Key(r)...)
			key = binary.BigEndian.AppendUint64(key, seq)
			if err := b.Put(key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger().Debug(ctx, "bolt store records appended",
		logging.Field("bucket", string(s.Bucket)),
		logging.Field("count", len(records)))
	return nil
}

// Source returns the stored records in key order.
// The source holds a read-only transaction until it is closed,
// and Append on the same goroutine blocks while it is open.
func (s *Store[R]) Source(ctx context.Context) (groupkit.Source[R], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := s.DB.Begin(false)
	if err != nil {
		return nil, err
	}
	b := tx.Bucket(s.Bucket)
	if b == nil {
		return nil, errorkit.Merge(ErrBucketNotFound.F("%s", s.Bucket), tx.Rollback())
	}
	return newCursorSource[R](b.Cursor(), tx.Rollback), nil
}

// KeyOf builds an order preserving composite key.
// Every part is terminated by a zero byte, so a part sorts before its own extensions.
func KeyOf(parts ...string) []byte {
	var key []byte
	for _, p := range parts {
		key = append(key, p...)
		key = append(key, 0)
	}
	return key
}
