// Package memdb implements the nullifier registry in memory, for tests and
// ephemeral single-process usage.
package memdb

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/drand/kyber"

	"github.com/leopardracer/zk-nullifier-sig/registry"
)

// Store is an in-memory registry.Store implementation.
type Store struct {
	sync.Mutex
	records map[string]registry.Record
}

// NewStore returns an empty in-memory nullifier registry.
func NewStore() *Store {
	return &Store{records: make(map[string]registry.Record)}
}

// Seen returns whether the nullifier is already in the registry.
func (s *Store) Seen(ctx context.Context, nullifier kyber.Point) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	key, err := registry.Key(nullifier)
	if err != nil {
		return false, err
	}
	s.Lock()
	defer s.Unlock()
	_, ok := s.records[hex.EncodeToString(key)]
	return ok, nil
}

// Record stores the nullifier with its tag, failing with ErrNullifierSeen if
// it was presented before.
func (s *Store) Record(ctx context.Context, nullifier kyber.Point, tag string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	key, err := registry.Key(nullifier)
	if err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	id := hex.EncodeToString(key)
	if _, ok := s.records[id]; ok {
		return registry.ErrNullifierSeen
	}
	s.records[id] = registry.Record{Tag: tag, Time: time.Now().Unix()}
	return nil
}

// Close is a no-op for the in-memory registry.
func (s *Store) Close() error {
	return nil
}
