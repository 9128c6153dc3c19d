// Package storage provides forecast snapshot storage implementations.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryStore keeps the latest snapshot per zone in a map. Safe for
// concurrent use. With a TTL configured, a background goroutine drops
// snapshots that were not refreshed in time; single-instance deployments
// rarely need more than this, multi-instance ones should use RedisStore.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot

	ttl     time.Duration
	ticker  *time.Ticker
	stop    chan struct{}
	done    chan struct{}
	stopOne sync.Once
}

// NewMemoryStore creates an in-memory snapshot store without expiration.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]Snapshot)}
}

// NewMemoryStoreWithTTL creates an in-memory store whose snapshots expire
// after ttl. cleanupInterval controls how often expired entries are swept;
// values <= 0 default to one minute. Callers must Stop() the store to release
// the sweep goroutine.
func NewMemoryStoreWithTTL(ttl, cleanupInterval time.Duration) *MemoryStore {
	if ttl <= 0 {
		panic("ttl must be positive")
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	s := &MemoryStore{
		snapshots: make(map[string]Snapshot),
		ttl:       ttl,
		ticker:    time.NewTicker(cleanupInterval),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Stop terminates the sweep goroutine. Safe to call repeatedly, and a no-op
// for stores created without TTL.
func (s *MemoryStore) Stop() {
	if s.ticker == nil {
		return
	}
	s.stopOne.Do(func() {
		close(s.stop)
		<-s.done
		s.ticker.Stop()
	})
}

func (s *MemoryStore) sweep() {
	defer close(s.done)
	for {
		select {
		case <-s.ticker.C:
			now := time.Now()
			s.mu.Lock()
			for zone, snapshot := range s.snapshots {
				if now.Sub(snapshot.GeneratedAt) > s.ttl {
					delete(s.snapshots, zone)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// Put stores a snapshot, replacing any previous one for the same zone.
func (s *MemoryStore) Put(ctx context.Context, snapshot Snapshot) error {
	if snapshot.Zone == "" {
		return errors.New("snapshot zone cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.Zone] = snapshot
	return nil
}

// GetLatest returns the stored snapshot for a zone, with found=false when the
// zone has none.
func (s *MemoryStore) GetLatest(ctx context.Context, zone string) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, found := s.snapshots[zone]
	return snapshot, found, nil
}

// Len reports the number of zones with a stored snapshot.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
