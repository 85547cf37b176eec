package internal

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lychee-technology/formwave"
)

// DefaultTokenTTL is how long a stored session token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

var _ formwave.TokenStore = (*MemoryTokenStore)(nil)

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) ClearToken(ctx context.Context) error {
	return s.SetToken(ctx, "")
}

type tokenFile struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileTokenStore keeps the token in a JSON file readable only by its owner.
// Expired tokens read as absent and are removed.
type FileTokenStore struct {
	path string
	ttl  time.Duration
	now  func() time.Time
	mu   sync.Mutex
}

var _ formwave.TokenStore = (*FileTokenStore)(nil)

// NewFileTokenStore stores the token at path. A ttl of zero selects DefaultTokenTTL.
func NewFileTokenStore(path string, ttl time.Duration) *FileTokenStore {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &FileTokenStore{path: path, ttl: ttl, now: time.Now}
}

func (s *FileTokenStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", formwave.NewStorageError("read session file", err)
	}

	var stored tokenFile
	if err := json.Unmarshal(raw, &stored); err != nil {
		return "", formwave.NewStorageError("decode session file", err)
	}
	if !stored.ExpiresAt.IsZero() && !s.now().Before(stored.ExpiresAt) {
		if err := s.removeLocked(); err != nil {
			return "", err
		}
		return "", nil
	}
	return stored.Token, nil
}

func (s *FileTokenStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return formwave.NewStorageError("create session directory", err)
	}
	raw, err := json.Marshal(tokenFile{Token: token, ExpiresAt: s.now().Add(s.ttl).UTC()})
	if err != nil {
		return formwave.NewStorageError("encode session file", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return formwave.NewStorageError("write session file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return formwave.NewStorageError("write session file", err)
	}
	return nil
}

func (s *FileTokenStore) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked()
}

func (s *FileTokenStore) removeLocked() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return formwave.NewStorageError("remove session file", err)
	}
	return nil
}
