package token

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"wechatkf-golang/refactor/internal/config"
	jsonpkg "wechatkf-golang/refactor/internal/pkg/json"
)

// Store 持久化 access_token，使多个进程可以共享同一个 token。
// Load 在没有记录时返回 (nil, nil)。
type Store interface {
	Load(ctx context.Context, appID string) (*AccessToken, error)
	Save(ctx context.Context, appID string, token *AccessToken) error
}

func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.TokenStore {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		return NewFileStore(filepath.Join(cfg.DataDir, "tokens.json")), nil
	case "redis":
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}
}

type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]AccessToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]AccessToken)}
}

func (s *MemoryStore) Load(_ context.Context, appID string) (*AccessToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[appID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *MemoryStore) Save(_ context.Context, appID string, token *AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[appID] = *token
	return nil
}

// FileStore 以 {appid: token} 的形式把 token 写入 JSON 文件。
type FileStore struct {
	mu       sync.Mutex
	filePath string
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

func (s *FileStore) Load(_ context.Context, appID string) (*AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.readUnlocked()
	if err != nil {
		return nil, err
	}
	t, ok := tokens[appID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *FileStore) Save(_ context.Context, appID string, token *AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.readUnlocked()
	if err != nil {
		// 文件损坏时直接覆盖
		tokens = make(map[string]AccessToken)
	}
	tokens[appID] = *token

	data, err := jsonpkg.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0o600)
}

func (s *FileStore) readUnlocked() (map[string]AccessToken, error) {
	tokens := make(map[string]AccessToken)

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return tokens, nil
		}
		return nil, err
	}
	if err := jsonpkg.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	return tokens, nil
}
