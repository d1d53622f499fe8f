// Package persistence holds quotes and offers in an expiring key/value store.
package persistence

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("persistence: key not found")

// Backend is a key/value store where every key carries an expiry. Expired keys
// read as absent.
type Backend interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns one entry per key, nil where the key is absent.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	// PushFront prepends value to the list at key and sets the list expiry to ttl.
	PushFront(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Range returns the whole list at key, most recent first.
	Range(ctx context.Context, key string) ([][]byte, error)
	Close() error
}

// reaper removes expired entries on an interval until stopped.
type reaper struct {
	interval time.Duration
	sweep    func(now time.Time)
	stop     chan struct{}
	done     chan struct{}
}

func startReaper(interval time.Duration, sweep func(now time.Time)) *reaper {
	r := &reaper{
		interval: interval,
		sweep:    sweep,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *reaper) run() {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.sweep(now)
		}
	}
}

func (r *reaper) Stop() {
	close(r.stop)
	<-r.done
}
