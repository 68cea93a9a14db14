// Package boltdb implements the nullifier registry using the kv storage
// boltdb (native golang implementation). Internally, records are stored as
// JSON-encoded in the db file.
package boltdb

import (
	"context"
	"path"
	"sync"
	"time"

	json "github.com/nikkolasg/hexjson"
	bolt "go.etcd.io/bbolt"

	"github.com/drand/kyber"

	"github.com/leopardracer/zk-nullifier-sig/common/log"
	"github.com/leopardracer/zk-nullifier-sig/registry"
)

// BoltStore implements the registry.Store interface backed by a single
// boltdb file.
//
//nolint:gocritic// We do want to have a mutex here
type BoltStore struct {
	sync.Mutex
	db *bolt.DB

	log log.Logger
}

var nullifierBucket = []byte("nullifiers")

// BoltFileName is the name of the file boltdb writes to
const BoltFileName = "plume.db"

// BoltStoreOpenPerm is the permission we will use to read the bolt store file from disk
const BoltStoreOpenPerm = 0660

// NewBoltStore returns a registry implementation using the boltdb storage
// engine, writing to a db file under the given folder.
func NewBoltStore(l log.Logger, folder string, opts *bolt.Options) (registry.Store, error) {
	dbPath := path.Join(folder, BoltFileName)
	db, err := bolt.Open(dbPath, BoltStoreOpenPerm, opts)
	if err != nil {
		return nil, err
	}
	// create the bucket already
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(nullifierBucket)
		return err
	})

	return &BoltStore{
		log: l,
		db:  db,
	}, err
}

// Seen returns whether the nullifier is already in the registry.
func (b *BoltStore) Seen(ctx context.Context, nullifier kyber.Point) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	key, err := registry.Key(nullifier)
	if err != nil {
		return false, err
	}
	var seen bool
	err = b.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(nullifierBucket).Get(key) != nil
		return nil
	})
	return seen, err
}

// Record stores the nullifier with its tag, failing with ErrNullifierSeen if
// it was presented before.
func (b *BoltStore) Record(ctx context.Context, nullifier kyber.Point, tag string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	key, err := registry.Key(nullifier)
	if err != nil {
		return err
	}
	buff, err := json.Marshal(registry.Record{Tag: tag, Time: time.Now().Unix()})
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(nullifierBucket)
		if bucket.Get(key) != nil {
			b.log.Debugw("rejecting nullifier reuse", "tag", tag)
			return registry.ErrNullifierSeen
		}
		return bucket.Put(key, buff)
	})
}

// Close the underlying db file.
func (b *BoltStore) Close() error {
	err := b.db.Close()
	if err != nil {
		b.log.Errorw("closing bolt store", "err", err)
	}
	return err
}
