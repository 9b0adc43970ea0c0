package token

import (
	"context"
	"sync"
	"time"

	"wechatkf-golang/refactor/internal/logger"
)

type fetcher interface {
	Fetch(ctx context.Context) (*AccessToken, error)
}

// Manager 维护单个公众号的 access_token：先用内存中的，再用 Store 中的，都不可用时重新获取。
// 所有调用方共用一把锁，因此同一时刻最多只有一个获取请求在进行。
type Manager struct {
	appID   string
	store   Store
	fetcher fetcher
	now     func() time.Time

	mu      sync.Mutex
	current *AccessToken
	// invalidated 记录被微信判定失效的 token，避免从 Store 里再读回来。
	invalidated string
}

func NewManager(appID string, store Store, f fetcher) *Manager {
	return &Manager{appID: appID, store: store, fetcher: f, now: time.Now}
}

// Token 实现 api.TokenSource。
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	nowMs := m.now().UnixMilli()
	if m.current.IsValid(nowMs) {
		return m.current.AccessToken, nil
	}

	stored, err := m.store.Load(ctx, m.appID)
	if err != nil {
		logger.Warn("读取已保存的 access_token 失败：%v", err)
	} else if stored.IsValid(nowMs) && stored.AccessToken != m.invalidated {
		m.current = stored
		return stored.AccessToken, nil
	}

	t, err := m.refreshLocked(ctx)
	if err != nil {
		return "", err
	}
	return t.AccessToken, nil
}

// Invalidate 丢弃被微信判定失效的 token，下一次 Token 调用会重新获取。
// 当前 token 已经换成别的值时不做任何事。
func (m *Manager) Invalidate(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token == "" {
		return
	}
	if m.current != nil && m.current.AccessToken != token {
		return
	}
	m.invalidated = token
	m.current = nil
}

// Refresh 无条件重新获取 token。
func (m *Manager) Refresh(ctx context.Context) (*AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.refreshLocked(ctx)
	if err != nil {
		return nil, err
	}
	copyToken := *t
	return &copyToken, nil
}

// Current 返回内存中的 token 副本，尚未获取时返回 nil。
func (m *Manager) Current() *AccessToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	copyToken := *m.current
	return &copyToken
}

func (m *Manager) refreshLocked(ctx context.Context) (*AccessToken, error) {
	t, err := m.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	m.current = t
	m.invalidated = ""

	if err := m.store.Save(ctx, m.appID, t); err != nil {
		logger.Warn("保存 access_token 失败：%v", err)
	}
	return t, nil
}
