// Package badger implements db.Store on an embedded BadgerDB instance.
//
// Redis data types are flattened onto badger keys:
//
//	k\x00<key>                 plain value
//	h\x00<key>\x00<field>      hash field
//	n\x00<key>                 list length, 8-byte big endian
//	l\x00<key>\x00<index>      list element, index 8-byte big endian
package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/db"
)

var _ db.Store = (*Store)(nil)

const maxTxnRetries = 16

// Config holds options for the embedded store.
type Config struct {
	// Path is the data directory; ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *zap.Logger
}

// Store implements db.Store via badger.
type Store struct {
	db *badger.DB
	// rmw serializes read-modify-write commands within the process.
	rmw sync.Mutex
}

type zapAdapter struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*zapAdapter)(nil)

func (a *zapAdapter) Errorf(msg string, args ...any)   { a.s.Errorf(msg, args...) }
func (a *zapAdapter) Warningf(msg string, args ...any) { a.s.Warnf(msg, args...) }
func (a *zapAdapter) Infof(msg string, args ...any)    { a.s.Debugf(msg, args...) }
func (a *zapAdapter) Debugf(msg string, args ...any)   { a.s.Debugf(msg, args...) }

// NewStore opens (or creates) a badger database.
func NewStore(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Logger = &zapAdapter{s: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: bdb}, nil
}

// Ping reports an error once the database is closed.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("ping: database closed")
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns immediately: an opened badger database is ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for range maxTxnRetries {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return badger.ErrConflict
}

func kvKey(key string) []byte { return []byte("k\x00" + key) }

func hashPrefix(key string) []byte { return []byte("h\x00" + key + "\x00") }

func hashKey(key, field string) []byte { return append(hashPrefix(key), field...) }

func listLenKey(key string) []byte { return []byte("n\x00" + key) }

func listPrefix(key string) []byte { return []byte("l\x00" + key + "\x00") }

func listItemKey(key string, idx uint64) []byte {
	return binary.BigEndian.AppendUint64(listPrefix(key), idx)
}

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		for f, v := range fields {
			if err := txn.Set(hashKey(key, f), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key yields an empty map.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	out := make(map[string]string)
	prefix := hashPrefix(key)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[string(item.Key()[len(prefix):])] = string(v)
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return out, nil
}

// HIncrBy atomically increments an integer hash field. Concurrent callers on
// the same field conflict at commit and are retried.
func (s *Store) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	s.rmw.Lock()
	defer s.rmw.Unlock()

	var result int64
	err := s.update(ctx, func(txn *badger.Txn) error {
		cur, err := readInt(txn, hashKey(key, field))
		if err != nil {
			return err
		}
		result = cur + delta
		return txn.Set(hashKey(key, field), []byte(strconv.FormatInt(result, 10)))
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpHIncrBy, Err: err}
	}
	return result, nil
}

func readInt(txn *badger.Txn, k []byte) (int64, error) {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, db.ErrWrongType
	}
	return n, nil
}

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(kvKey(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return out, nil
}

// Set stores a value at the given key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(kvKey(key), value)
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// RPush appends values to the tail of a list. Elements and the new length are
// committed together, so readers never observe a partial append.
func (s *Store) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	s.rmw.Lock()
	defer s.rmw.Unlock()

	var n uint64
	err := s.update(ctx, func(txn *badger.Txn) error {
		cur, err := readLen(txn, key)
		if err != nil {
			return err
		}
		for i, v := range values {
			if err := txn.Set(listItemKey(key, cur+uint64(i)), []byte(v)); err != nil {
				return err
			}
		}
		n = cur + uint64(len(values))
		return txn.Set(listLenKey(key), binary.BigEndian.AppendUint64(nil, n))
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpRPush, Err: err}
	}
	return int64(n), nil //nolint:gosec // list length never approaches MaxInt64
}

func readLen(txn *badger.Txn, key string) (uint64, error) {
	item, err := txn.Get(listLenKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, db.ErrWrongType
	}
	return binary.BigEndian.Uint64(v), nil
}

// LRange returns a slice of a list from a single read snapshot.
func (s *Store) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	var out []string
	err := s.db.View(func(txn *badger.Txn) error {
		n, err := readLen(txn, key)
		if err != nil {
			return err
		}
		lo, hi, ok := db.NormalizeRange(start, stop, int64(n)) //nolint:gosec // see RPush
		if !ok {
			out = []string{}
			return nil
		}

		out = make([]string, 0, hi-lo)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = listPrefix(key)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(listItemKey(key, uint64(lo))); it.Valid() && int64(len(out)) < hi-lo; it.Next() {
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, string(v))
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return out, nil
}

// LLen returns the list length; 0 for a missing key.
func (s *Store) LLen(_ context.Context, key string) (int64, error) {
	var n uint64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = readLen(txn, key)
		return err
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpLLen, Err: err}
	}
	return int64(n), nil //nolint:gosec // see RPush
}
