package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketName = "credentials"
	tokenKey   = "sync-token"
)

// BoltStore persists the token in a bbolt database file readable only by
// the current user.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating credentials directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening credentials database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating credentials bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get() (string, bool, error) {
	var token []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		// Values are only valid inside the transaction.
		if v := b.Get([]byte(tokenKey)); v != nil {
			token = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("reading sync token: %w", err)
	}
	if token == nil {
		return "", false, nil
	}
	return string(token), true, nil
}

func (s *BoltStore) Set(token string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return b.Put([]byte(tokenKey), []byte(token))
	})
	if err != nil {
		return fmt.Errorf("writing sync token: %w", err)
	}
	return nil
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
