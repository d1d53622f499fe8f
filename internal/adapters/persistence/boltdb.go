package persistence

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

const (
	ValuesBucket = "values"
	ListsBucket  = "lists"

	DefaultDBPath = "./data/rfq-engine.db"

	expiryPrefixSize = 8
)

// BoltBackend keeps entries in a single bolt file. Every stored value is
// prefixed with its expiry in unix nanoseconds, big endian.
type BoltBackend struct {
	db     *bolt.DB
	dbPath string
	now    func() time.Time
	reaper *reaper
}

func NewBoltBackend(dbPath string, reapInterval time.Duration) (*BoltBackend, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{ValuesBucket, ListsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("[boltStore] opened database")

	b := &BoltBackend{db: db, dbPath: dbPath, now: time.Now}
	if reapInterval > 0 {
		b.reaper = startReaper(reapInterval, b.sweep)
	}
	return b, nil
}

func withExpiry(expiresAt time.Time, payload []byte) []byte {
	out := make([]byte, expiryPrefixSize+len(payload))
	binary.BigEndian.PutUint64(out, uint64(expiresAt.UnixNano()))
	copy(out[expiryPrefixSize:], payload)
	return out
}

// livePayload returns a copy of the payload when raw has not expired at now.
func livePayload(raw []byte, now time.Time) ([]byte, bool) {
	if len(raw) < expiryPrefixSize {
		return nil, false
	}
	expiresAt := int64(binary.BigEndian.Uint64(raw))
	if now.UnixNano() >= expiresAt {
		return nil, false
	}
	out := make([]byte, len(raw)-expiryPrefixSize)
	copy(out, raw[expiryPrefixSize:])
	return out, true
}

func (b *BoltBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ValuesBucket)).Put([]byte(key), withExpiry(b.now().Add(ttl), value))
	})
}

func (b *BoltBackend) Get(_ context.Context, key string) ([]byte, error) {
	var (
		out   []byte
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		out, found = livePayload(tx.Bucket([]byte(ValuesBucket)).Get([]byte(key)), b.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return out, nil
}

func (b *BoltBackend) MGet(_ context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	now := b.now()
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ValuesBucket))
		for i, key := range keys {
			if v, ok := livePayload(bucket.Get([]byte(key)), now); ok {
				out[i] = v
			}
		}
		return nil
	})
	return out, err
}

func (b *BoltBackend) PushFront(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := b.now()
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ListsBucket))

		var list [][]byte
		if raw, ok := livePayload(bucket.Get([]byte(key)), now); ok {
			if err := sonic.Unmarshal(raw, &list); err != nil {
				return fmt.Errorf("failed to decode list %s: %w", key, err)
			}
		}
		list = append([][]byte{value}, list...)

		data, err := sonic.Marshal(list)
		if err != nil {
			return fmt.Errorf("failed to encode list %s: %w", key, err)
		}
		return bucket.Put([]byte(key), withExpiry(now.Add(ttl), data))
	})
}

func (b *BoltBackend) Range(_ context.Context, key string) ([][]byte, error) {
	var list [][]byte
	err := b.db.View(func(tx *bolt.Tx) error {
		raw, ok := livePayload(tx.Bucket([]byte(ListsBucket)).Get([]byte(key)), b.now())
		if !ok {
			return nil
		}
		return sonic.Unmarshal(raw, &list)
	})
	return list, err
}

func (b *BoltBackend) sweep(now time.Time) {
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{ValuesBucket, ListsBucket} {
			bucket := tx.Bucket([]byte(name))
			var expired [][]byte
			c := bucket.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				if _, ok := livePayload(v, now); !ok {
					expired = append(expired, append([]byte{}, k...))
				}
			}
			for _, k := range expired {
				if err := bucket.Delete(k); err != nil {
					return err
				}
			}
			removed += len(expired)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("[boltStore] failed to sweep expired entries")
		return
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("[boltStore] swept expired entries")
	}
}

func (b *BoltBackend) Close() error {
	if b.reaper != nil {
		b.reaper.Stop()
		b.reaper = nil
	}
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
