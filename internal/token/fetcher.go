package token

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"

	"wechatkf-golang/refactor/internal/api"
	"wechatkf-golang/refactor/internal/config"
	"wechatkf-golang/refactor/internal/logger"
)

const tokenPath = "cgi-bin/token"

// Fetcher 通过 cgi-bin/token 接口获取新的 access_token。
// 网络类失败按退避重试，微信返回的 errcode 不重试。
type Fetcher struct {
	transport *api.Transport
	prefix    string
	appID     string
	secret    string
	attempts  uint
	delay     time.Duration
	now       func() time.Time
}

func NewFetcher(cfg *config.Config, transport *api.Transport) *Fetcher {
	attempts := cfg.TokenRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Fetcher{
		transport: transport,
		prefix:    cfg.APIBase(),
		appID:     cfg.AppID,
		secret:    cfg.AppSecret,
		attempts:  uint(attempts),
		delay:     500 * time.Millisecond,
		now:       time.Now,
	}
}

func (f *Fetcher) Fetch(ctx context.Context) (*AccessToken, error) {
	reqURL := api.BuildURL(f.prefix, tokenPath, "", url.Values{
		"grant_type": {"client_credential"},
		"appid":      {f.appID},
		"secret":     {f.secret},
	})

	var resp tokenResponse
	err := retry.Do(func() error {
		resp = tokenResponse{}
		err := f.transport.Do(ctx, reqURL, api.RequestOptions{Method: http.MethodGet}, &resp)
		var remoteErr *api.RemoteError
		if errors.As(err, &remoteErr) {
			return retry.Unrecoverable(err)
		}
		return err
	},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("获取 access_token 失败（第 %d 次）：%v", n+1, err)
		}),
	)
	if err != nil {
		return nil, err
	}

	if resp.AccessToken == "" {
		return nil, &api.TransportError{Status: http.StatusOK, Err: errors.New("token response without access_token")}
	}

	logger.Info("已获取 access_token（appid=%s，有效期 %ds）", f.appID, resp.ExpiresIn)
	return newAccessToken(resp, f.now()), nil
}
