package credentials

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	credentialsBucket = []byte("credentials")
	tokenKey          = []byte("token")
	usernameKey       = []byte("username")
)

// Credentials is the durable pair needed to re-authenticate a returning
// user without login input.
type Credentials struct {
	Token    string
	Username string
}

type Store struct {
	db *bolt.DB
}

func Open(path string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening credentials database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(credentialsBucket)
		return createErr
	})
	if err != nil {
		return nil, fmt.Errorf("creating credentials bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists the credential pair. Repeated saves simply overwrite.
func (s *Store) Save(token, username string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(credentialsBucket)
		if err := b.Put(tokenKey, []byte(token)); err != nil {
			return err
		}
		return b.Put(usernameKey, []byte(username))
	})
}

// Clear removes any persisted credentials. Used on logout.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(credentialsBucket)
		if err := b.Delete(tokenKey); err != nil {
			return err
		}
		return b.Delete(usernameKey)
	})
}

// TryRestore reads the persisted pair. Absence of either key is a
// normal first-visit state and reports ok=false; re-authentication
// against the server is the caller's job.
func (s *Store) TryRestore() (Credentials, bool, error) {
	var creds Credentials
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(credentialsBucket)
		creds.Token = string(b.Get(tokenKey))
		creds.Username = string(b.Get(usernameKey))
		return nil
	})
	if err != nil {
		return Credentials{}, false, fmt.Errorf("reading credentials: %w", err)
	}

	if creds.Token == "" || creds.Username == "" {
		return Credentials{}, false, nil
	}
	return creds, true, nil
}
