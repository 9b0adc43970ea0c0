package api

import (
	"context"
	"errors"
	"net/url"

	"wechatkf-golang/refactor/internal/logger"
)

// TokenSource 提供当前有效的 access_token。
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	// Invalidate 标记 token 失效，只在它仍是当前 token 时生效。
	Invalidate(token string)
}

// Client 在 Transport 之上附加 access_token 的获取与失效处理。
// 它不做重试：一次调用只对应一次 HTTP 往返。
type Client struct {
	transport *Transport
	tokens    TokenSource
	prefix    string
}

func NewClient(transport *Transport, tokens TokenSource, prefix string) *Client {
	return &Client{transport: transport, tokens: tokens, prefix: prefix}
}

func (c *Client) Prefix() string { return c.prefix }

// EnsureValidToken 返回可用的 access_token，必要时由 TokenSource 获取或刷新。
func (c *Client) EnsureValidToken(ctx context.Context) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errors.New("token source returned an empty access_token")
	}
	return token, nil
}

// Request 执行一次请求。微信报告 access_token 失效时，把本次请求携带的 token
// 标记为失效，下一次调用会重新获取；本次错误原样返回。
func (c *Client) Request(ctx context.Context, rawURL string, opts RequestOptions, out any) error {
	err := c.transport.Do(ctx, rawURL, opts, out)

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && remoteErr.IsTokenExpired() {
		logger.Warn("access_token 已失效（errcode=%d），下次调用将重新获取", remoteErr.ErrCode)
		c.tokens.Invalidate(sentToken(rawURL))
	}
	return err
}

// sentToken 取出请求 URL 中实际携带的 access_token。
func sentToken(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("access_token")
}
