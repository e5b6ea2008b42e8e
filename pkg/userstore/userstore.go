// Package userstore persists registered client accounts and verifies
// credentials.
//
// Password hashing uses PBKDF2-HMAC-SHA-256 (golang.org/x/crypto/pbkdf2)
// with a per-user 128-bit crypto/rand salt and 100,000 iterations. This is
// the one dependency this repo adds beyond the teacher's own require
// block: golang.org/x/crypto is already pulled in indirectly by the
// teacher's module graph, and pbkdf2 has no other idiomatic home in the
// standard library or the rest of the example pack (see DESIGN.md).
package userstore

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/pbkdf2"

	"github.com/cuemby/fenwick/pkg/apierr"
	"github.com/cuemby/fenwick/pkg/types"
)

const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLength  = 32
	saltLength       = 16 // 128 bits
)

var bucketUsers = []byte("users")

// Store persists User records in BoltDB, bucket "users", one JSON-marshaled
// record per username — the same idiom the dispatcher's task store uses.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bolt file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketUsers)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create users bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Register inserts a new user, failing with a Conflict error if the
// username is already present. The password is never stored: only a
// PBKDF2 hash and its salt are.
func (s *Store) Register(username, password string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		if b.Get([]byte(username)) != nil {
			return apierr.Conflict(fmt.Sprintf("user already exists: %s", username))
		}

		salt := make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		hash := derive(password, salt)

		user := &types.User{
			Username:     username,
			PasswordHash: hex.EncodeToString(hash),
			Salt:         hex.EncodeToString(salt),
			CreatedAt:    time.Now().UTC(),
		}
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return b.Put([]byte(username), data)
	})
}

// Authenticate re-derives the hash for the given password and compares it
// in constant time against the stored hash. It returns false (no error) on
// any credential mismatch — the exact same response as an unknown
// username, so the failure path never discloses account existence.
func (s *Store) Authenticate(username, password string) (bool, error) {
	var user types.User
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		data := b.Get([]byte(username))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &user)
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	salt, err := hex.DecodeString(user.Salt)
	if err != nil {
		return false, fmt.Errorf("decode stored salt: %w", err)
	}
	wantHash, err := hex.DecodeString(user.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("decode stored hash: %w", err)
	}

	gotHash := derive(password, salt)
	return subtle.ConstantTimeCompare(gotHash, wantHash) == 1, nil
}

func derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
}
