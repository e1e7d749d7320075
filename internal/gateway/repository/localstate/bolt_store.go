package localstate

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketState = "local_state"

// BoltStore keeps client state in an embedded bbolt file, one key per client.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketState))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(_ context.Context, clientID string) (State, error) {
	id, err := normalizeClientID(clientID)
	if err != nil {
		return State{}, err
	}
	var raw []byte
	err = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketState)).Get([]byte(id)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return State{}, err
	}
	return decode(raw)
}

func (s *BoltStore) Save(_ context.Context, clientID string, st State) error {
	id, err := normalizeClientID(clientID)
	if err != nil {
		return err
	}
	raw, err := encode(st)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketState)).Put([]byte(id), raw)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
