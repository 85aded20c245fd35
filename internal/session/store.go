// Package session owns the persisted credential and the client-side
// authentication lifecycle.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenMaxAge mirrors the server cookie's max-age. A persisted token older
// than this is treated as absent.
const TokenMaxAge = 3600 * time.Second

// Store is the session-storage abstraction: get/set/clear of the bearer
// credential. Implementations must be safe to call repeatedly.
type Store interface {
	Token() (string, bool)
	SetToken(token string) error
	Clear() error
}

// FileStore persists the token at <dir>/token with 0600 permissions.
// The file's mtime doubles as the issued-at instant for expiry.
type FileStore struct {
	path   string
	maxAge time.Duration
}

// NewFileStore returns a store rooted at ~/.mia.
func NewFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	return NewFileStoreAt(filepath.Join(home, ".mia", "token")), nil
}

// NewFileStoreAt returns a store backed by the given token file path.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path, maxAge: TokenMaxAge}
}

// Token reads the persisted credential. An expired token file is removed
// and reported as absent.
func (s *FileStore) Token() (string, bool) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", false
	}
	if time.Since(info.ModTime()) > s.maxAge {
		os.Remove(s.path) //nolint:errcheck // stale file, best-effort cleanup
		return "", false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(data))
	return tok, tok != ""
}

// SetToken persists the credential, creating the parent directory when
// needed.
func (s *FileStore) SetToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the persisted credential. Clearing an absent token is not
// an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// DecodeUserID extracts the embedded user identifier from a bearer token.
// The token is parsed without signature verification: the client never
// holds the signing key; the server re-validates every request anyway.
// Malformed input yields an error, never a panic.
func DecodeUserID(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", errors.New("token vazio")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("token inválido: %w", err)
	}
	switch v := claims["userId"].(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	case json.Number:
		return v.String(), nil
	case string:
		if v != "" {
			return v, nil
		}
	}
	return "", errors.New("token inválido: claim userId ausente")
}
