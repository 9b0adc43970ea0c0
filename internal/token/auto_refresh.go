package token

import (
	"context"
	"time"

	"wechatkf-golang/refactor/internal/logger"
)

const refreshWindow = 5 * time.Minute

// StartAutoRefresh 启动后台刷新任务，每个 interval 检查一次，
// 在 token 过期前 5 分钟内主动刷新。ctx 取消后退出。
func (m *Manager) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("自动刷新任务已启动，每 %s 检查一次", interval)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.refreshExpiring(ctx)
			}
		}
	}()
}

// refreshExpiring 刷新即将过期的 token，返回是否发起了刷新。
func (m *Manager) refreshExpiring(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return false
	}

	remaining := time.Duration(m.current.ExpireTime-m.now().UnixMilli()) * time.Millisecond
	if remaining <= 0 || remaining > refreshWindow {
		return false
	}

	if _, err := m.refreshLocked(ctx); err != nil {
		logger.Warn("自动刷新失败 [%s]: %v", m.appID, err)
		return true
	}
	logger.Info("自动刷新成功 [%s]，距过期还有 %.1f 分钟", m.appID, remaining.Minutes())
	return true
}
