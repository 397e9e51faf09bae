// Package keyring tracks exported secret-key packet files on disk.
// The store itself holds no key material, only metadata and paths;
// registered key files must be mode 0600.
package keyring

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/pgpseckey/pkg/util/perm"
)

type Entry struct {
	KeyID     string    `json:"key_id"`
	Path      string    `json:"path"`
	Algorithm byte      `json:"algorithm"`
	Protected bool      `json:"protected"`
	Created   time.Time `json:"created"`
	Revoked   bool      `json:"revoked"`
}

type Store struct {
	Entries []Entry `json:"entries"`
}

func load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Store{}, nil
	}
	if err != nil {
		return nil, err
	}
	var s Store
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func save(path string, s *Store) error {
	b, _ := json.MarshalIndent(s, "", "  ")
	return os.WriteFile(path, b, 0600)
}

// Add registers a secret-key packet file, replacing any entry with the
// same key id.
func Add(path, keyID, keyPath string, algorithm byte, protected bool) error {
	if err := perm.Check0600(keyPath); err != nil {
		return err
	}
	s, err := load(path)
	if err != nil {
		return err
	}
	e := Entry{
		KeyID:     keyID,
		Path:      keyPath,
		Algorithm: algorithm,
		Protected: protected,
		Created:   time.Now().UTC(),
	}
	found := false
	for i := range s.Entries {
		if s.Entries[i].KeyID == keyID {
			s.Entries[i] = e
			found = true
		}
	}
	if !found {
		s.Entries = append(s.Entries, e)
	}
	logrus.WithFields(logrus.Fields{
		"key_id":    keyID,
		"path":      keyPath,
		"protected": protected,
	}).Info("keyring: registered secret key")
	return save(path, s)
}

// Revoke marks a key as revoked; the key file is left in place.
func Revoke(path, keyID string) error {
	s, err := load(path)
	if err != nil {
		return err
	}
	found := false
	for i := range s.Entries {
		if s.Entries[i].KeyID == keyID {
			s.Entries[i].Revoked = true
			found = true
		}
	}
	if !found {
		return errors.New("keyring: key not found")
	}
	logrus.WithField("key_id", keyID).Warn("keyring: revoked secret key")
	return save(path, s)
}

// Lookup returns the entry for keyID, if registered.
func Lookup(path, keyID string) (*Entry, error) {
	s, err := load(path)
	if err != nil {
		return nil, err
	}
	for i := range s.Entries {
		if s.Entries[i].KeyID == keyID {
			return &s.Entries[i], nil
		}
	}
	return nil, errors.New("keyring: key not found")
}
