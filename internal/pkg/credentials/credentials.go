// Package credentials loads the flat credentials file and verifies
// passwords against bcrypt hashes. The file is read-only configuration;
// nothing here ever writes it back.
package credentials

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"golang.org/x/crypto/bcrypt"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

// File layout:
//
//	credentials:
//	  users:
//	    Alice:
//	      name: "Alice Example"
//	      password: "$2b$12$...bcrypt-hash..."
type credentialsFile struct {
	Credentials struct {
		Users map[string]userEntry `yaml:"users"`
	} `yaml:"credentials"`
}

type userEntry struct {
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Store holds the loaded user set.
type Store struct {
	users map[string]entity.User
}

// Load reads the credentials file. A missing file yields an empty store so
// that every login fails instead of the service crashing.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{users: map[string]entity.User{}}, nil
		}
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return Parse(data)
}

// Parse decodes credential YAML into a store.
func Parse(data []byte) (*Store, error) {
	var file credentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	users := make(map[string]entity.User, len(file.Credentials.Users))
	for username, e := range file.Credentials.Users {
		users[username] = entity.User{
			Username:     username,
			Name:         e.Name,
			PasswordHash: e.Password,
		}
	}
	return &Store{users: users}, nil
}

// Len reports the number of loaded users.
func (s *Store) Len() int {
	return len(s.users)
}

// Verify compares the password against the stored bcrypt hash. Unknown
// users, empty hashes and malformed hashes all verify as false.
func (s *Store) Verify(username, password string) (entity.User, bool) {
	user, ok := s.users[username]
	if !ok || user.PasswordHash == "" {
		return entity.User{}, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return entity.User{}, false
	}
	return user, true
}
