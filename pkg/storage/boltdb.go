package storage

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketConfigurations = []byte("configurations")

// BoltDatabase keeps several components' configurations in one BoltDB file.
// Deployments that manage many notaries on a single host use it in place of
// per-component files; each component still sees its own Store.
type BoltDatabase struct {
	db *bolt.DB
}

// OpenBoltDatabase opens (or creates) the database at the given path.
func OpenBoltDatabase(path string) (*BoltDatabase, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketConfigurations)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return &BoltDatabase{db: db}, nil
}

// Close closes the database.
func (d *BoltDatabase) Close() error {
	return d.db.Close()
}

// Store returns the store for the named configuration.
func (d *BoltDatabase) Store(name string) Store {
	return &BoltStore{db: d.db, key: []byte(name)}
}

// BoltStore implements Store on top of a shared BoltDatabase.
type BoltStore struct {
	db  *bolt.DB
	key []byte
}

func (s *BoltStore) Store(text string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketConfigurations).Put(s.key, []byte(text))
	})
	if err != nil {
		return fmt.Errorf("failed to store configuration %s: %w", s.key, err)
	}
	return nil
}

func (s *BoltStore) Load() (string, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketConfigurations).Get(s.key)
		if value != nil {
			data = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to load configuration %s: %w", s.key, err)
	}
	if data == nil {
		return "", false, nil
	}
	return string(data), true, nil
}

func (s *BoltStore) Delete() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketConfigurations).Delete(s.key)
	})
	if err != nil {
		return fmt.Errorf("failed to delete configuration %s: %w", s.key, err)
	}
	return nil
}
