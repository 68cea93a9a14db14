package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drand/kyber/util/random"

	"github.com/leopardracer/zk-nullifier-sig/common/testlogger"
	"github.com/leopardracer/zk-nullifier-sig/crypto"
	"github.com/leopardracer/zk-nullifier-sig/registry"
)

func TestBoltRegistry(t *testing.T) {
	l := testlogger.New(t)
	folder := t.TempDir()
	ctx := context.Background()

	store, err := NewBoltStore(l, folder, nil)
	require.NoError(t, err)

	sch := crypto.NewPlumeBLS12381G1()
	pp := sch.Parameters()
	pub, sec := sch.Keygen(pp, random.New())
	sig, err := sch.Sign(pp, random.New(), pub, sec, []byte("one shot"), crypto.V2)
	require.NoError(t, err)

	seen, err := store.Seen(ctx, sig.Nullifier)
	require.NoError(t, err)
	require.False(t, seen)

	require.NoError(t, store.Record(ctx, sig.Nullifier, "one shot"))

	seen, err = store.Seen(ctx, sig.Nullifier)
	require.NoError(t, err)
	require.True(t, seen)

	// signing again yields the same nullifier, so redeeming again must fail
	sig2, err := sch.Sign(pp, random.New(), pub, sec, []byte("one shot"), crypto.V2)
	require.NoError(t, err)
	err = store.Record(ctx, sig2.Nullifier, "replay")
	require.ErrorIs(t, err, registry.ErrNullifierSeen)

	require.NoError(t, store.Close())

	// the registry survives a reopen
	store, err = NewBoltStore(l, folder, nil)
	require.NoError(t, err)
	defer store.Close()

	seen, err = store.Seen(ctx, sig.Nullifier)
	require.NoError(t, err)
	require.True(t, seen)

	err = store.Record(ctx, sig.Nullifier, "replay after reopen")
	require.ErrorIs(t, err, registry.ErrNullifierSeen)
}

func TestBoltRegistryContextCancel(t *testing.T) {
	l := testlogger.New(t)
	store, err := NewBoltStore(l, t.TempDir(), nil)
	require.NoError(t, err)
	defer store.Close()

	sch := crypto.NewPlumeBLS12381G1()
	pp := sch.Parameters()
	pub, _ := sch.Keygen(pp, random.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Seen(ctx, pub)
	require.Error(t, err)
	require.Error(t, store.Record(ctx, pub, "tag"))
}
