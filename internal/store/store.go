package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"instapaperkobo/internal/crypto"
)

var (
	authBucket     = []byte("auth")
	exportedBucket = []byte("exported")

	tokenKey = []byte("token")
)

// ErrNoToken is returned by LoadToken when no token has been saved.
var ErrNoToken = errors.New("no cached token")

// Export records a bookmark written by the exporter.
type Export struct {
	BookmarkID int64     `json:"bookmark_id"`
	Hash       string    `json:"hash"`
	Title      string    `json:"title"`
	Path       string    `json:"path"`
	ExportedAt time.Time `json:"exported_at"`
}

// Store keeps local state between runs: the encrypted access token and the
// bookmarks already exported.
type Store struct {
	db     *bolt.DB
	serial string
}

// Open opens or creates the database at path. serial is the key material
// for token encryption.
func Open(path, serial string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{authBucket, exportedBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, serial: serial}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveToken stores the access token pair encrypted.
func (s *Store) SaveToken(token, secret string) error {
	v := url.Values{}
	v.Set("oauth_token", token)
	v.Set("oauth_token_secret", secret)
	sealed, err := crypto.Encrypt(v.Encode(), s.serial)
	if err != nil {
		return fmt.Errorf("encrypting token: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(authBucket).Put(tokenKey, []byte(sealed))
	})
}

// LoadToken returns the saved token pair or ErrNoToken.
func (s *Store) LoadToken() (token, secret string, err error) {
	var sealed []byte
	err = s.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(authBucket).Get(tokenKey); data != nil {
			sealed = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	if sealed == nil {
		return "", "", ErrNoToken
	}

	plain, err := crypto.Decrypt(string(sealed), s.serial)
	if err != nil {
		return "", "", fmt.Errorf("decrypting token: %w", err)
	}
	v, err := url.ParseQuery(plain)
	if err != nil {
		return "", "", fmt.Errorf("parsing token: %w", err)
	}
	return v.Get("oauth_token"), v.Get("oauth_token_secret"), nil
}

// ClearToken forgets the saved token.
func (s *Store) ClearToken() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(authBucket).Delete(tokenKey)
	})
}

func idKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

// MarkExported records an exported bookmark.
func (s *Store) MarkExported(e Export) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return tx.Bucket(exportedBucket).Put(idKey(e.BookmarkID), data)
	})
}

// Exports returns every export record, newest first.
func (s *Store) Exports() ([]Export, error) {
	var exports []Export
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(exportedBucket).ForEach(func(_ []byte, v []byte) error {
			var e Export
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			exports = append(exports, e)
			return nil
		})
	})
	sort.Slice(exports, func(i, j int) bool {
		return exports[i].ExportedAt.After(exports[j].ExportedAt)
	})
	return exports, err
}

// ExportedIDs returns the ids of exported bookmarks in ascending order.
func (s *Store) ExportedIDs() ([]int64, error) {
	var ids []int64
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(exportedBucket).ForEach(func(k []byte, _ []byte) error {
			ids = append(ids, int64(binary.BigEndian.Uint64(k)))
			return nil
		})
	})
	return ids, err
}
