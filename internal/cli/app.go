package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"wechatkf-golang/refactor/internal/api"
	"wechatkf-golang/refactor/internal/config"
	"wechatkf-golang/refactor/internal/kfsession"
	"wechatkf-golang/refactor/internal/logger"
	"wechatkf-golang/refactor/internal/token"
)

const autoRefreshInterval = time.Minute

// app 持有一次命令执行所需的全部依赖。
type app struct {
	cfg      *config.Config
	store    token.Store
	tokens   *token.Manager
	sessions *kfsession.Service
	cancel   context.CancelFunc
}

func newApp(ctx context.Context, configFile, debug string) (*app, error) {
	cfg, err := config.Read(configFile)
	if err != nil {
		return nil, err
	}
	if debug != "" {
		cfg.Debug = strings.ToLower(strings.TrimSpace(debug))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Init(cfg)

	store, err := token.NewStore(cfg)
	if err != nil {
		return nil, err
	}

	transport := api.NewTransport(cfg)
	tokens := token.NewManager(cfg.AppID, store, token.NewFetcher(cfg, transport))

	ctx, cancel := context.WithCancel(ctx)
	if cfg.TokenAutoRefresh {
		tokens.StartAutoRefresh(ctx, autoRefreshInterval)
	}

	logger.Debug("使用接口前缀 %s，token 存储 %s", cfg.APIBase(), cfg.TokenStore)

	return &app{
		cfg:      cfg,
		store:    store,
		tokens:   tokens,
		sessions: kfsession.NewService(api.NewClient(transport, tokens, cfg.APIBase())),
		cancel:   cancel,
	}, nil
}

func (a *app) Close() {
	a.cancel()
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("关闭 token 存储失败：%v", err)
		}
	}
	logger.Sync()
}
