// Package registry persists nullifiers that have already been presented, so
// that a signature for a given (key, message) pair can only be redeemed once.
// The registry never learns which public key produced a nullifier.
package registry

import (
	"context"
	"errors"

	"github.com/drand/kyber"
)

// ErrNullifierSeen is returned by Record when the nullifier was already
// recorded. This is the double-spend signal, not a storage failure.
var ErrNullifierSeen = errors.New("registry: nullifier already recorded")

// Record is what a registry keeps per nullifier.
type Record struct {
	// Tag is free-form caller context, e.g. what the signature redeemed.
	Tag string
	// Time is the unix time the nullifier was recorded at.
	Time int64
}

// Store is the interface to store and query nullifiers.
type Store interface {
	// Seen returns whether the nullifier was recorded before.
	Seen(ctx context.Context, nullifier kyber.Point) (bool, error)
	// Record stores the nullifier, failing with ErrNullifierSeen when it
	// already is present.
	Record(ctx context.Context, nullifier kyber.Point, tag string) error
	Close() error
}

// Key returns the canonical byte key a nullifier is stored under.
func Key(nullifier kyber.Point) ([]byte, error) {
	return nullifier.MarshalBinary()
}
