package credstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	tokenKey   = "access_token"
	expiresKey = "expires_at"
)

// Store persists the bearer token and its expiry in a file in the user
// config dir, the process-wide credential store of the client. Reads go back
// to disk so concurrent processes observe each other's login/logout.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}

	return filepath.Join(dir, "vidshare", "credentials.json"), nil
}

func New(path string) (*Store, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create credential dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	return &Store{v: v, path: path}, nil
}

func (s *Store) Save(token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(tokenKey, token)
	if expiresAt.IsZero() {
		s.v.Set(expiresKey, "")
	} else {
		s.v.Set(expiresKey, expiresAt.Format(time.RFC3339))
	}

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}

	return nil
}

// Token returns the stored bearer token, or "" when absent or expired.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.v.ReadInConfig(); err != nil {
		return ""
	}

	token := s.v.GetString(tokenKey)
	if token == "" {
		return ""
	}

	if raw := s.v.GetString(expiresKey); raw != "" {
		expiresAt, err := time.Parse(time.RFC3339, raw)
		if err != nil || !time.Now().Before(expiresAt) {
			return ""
		}
	}

	return token
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(tokenKey, "")
	s.v.Set(expiresKey, "")

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}

	return nil
}
