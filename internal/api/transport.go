package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"wechatkf-golang/refactor/internal/config"
	"wechatkf-golang/refactor/internal/logger"
	"wechatkf-golang/refactor/internal/pkg/id"
	jsonpkg "wechatkf-golang/refactor/internal/pkg/json"
)

const maxResponseBytes = 4 << 20

// Transport 负责一次 HTTP 往返以及微信返回信封的归一化，不关心 access_token。
type Transport struct {
	httpClient *http.Client
	userAgent  string
}

func NewTransport(cfg *config.Config) *Transport {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if cfg.TimeoutMs <= 0 {
		timeout = 0
	}

	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     false,
	}

	if cfg.Proxy != "" {
		if proxyURL, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			logger.Warn("PROXY 无法解析，已忽略：%v", err)
		}
	}

	return &Transport{
		httpClient: &http.Client{
			Transport: &loggingRoundTripper{next: transport},
			Timeout:   timeout,
		},
		userAgent: cfg.UserAgent,
	}
}

// Do 发起请求并把成功的响应体解码到 out（out 可为 nil）。
//
// 网络失败、非 2xx 状态码、响应体不是合法 JSON 返回 *TransportError；
// errcode != 0 返回 *RemoteError。
func (t *Transport) Do(ctx context.Context, rawURL string, opts RequestOptions, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
		if opts.JSON != nil {
			method = http.MethodPost
		}
	}

	var body []byte
	var reader io.Reader
	if opts.JSON != nil {
		var err error
		body, err = jsonpkg.Marshal(opts.JSON)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return &TransportError{Err: err}
	}
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept-Encoding", "gzip")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	requestID := id.RequestID()
	logger.BackendRequest(requestID, method, rawURL, body)

	startTime := time.Now()
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	var respReader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return &TransportError{Status: resp.StatusCode, Err: err}
		}
		defer gzReader.Close()
		respReader = gzReader
	}

	respBody, err := io.ReadAll(io.LimitReader(respReader, maxResponseBytes+1))
	if err != nil {
		return &TransportError{Status: resp.StatusCode, Err: err}
	}
	if len(respBody) > maxResponseBytes {
		return &TransportError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("response body exceeds %d bytes", maxResponseBytes),
		}
	}
	logger.BackendResponse(requestID, resp.StatusCode, time.Since(startTime), respBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s: %s", resp.Status, snippet(respBody)),
		}
	}

	return decodeEnvelope(resp.StatusCode, respBody, out)
}

func decodeEnvelope(status int, body []byte, out any) error {
	if !gjson.ValidBytes(body) {
		return &TransportError{Status: status, Err: errors.New("response body is not valid JSON")}
	}

	if code := gjson.GetBytes(body, "errcode"); code.Exists() && code.Int() != 0 {
		return &RemoteError{
			ErrCode: int(code.Int()),
			ErrMsg:  gjson.GetBytes(body, "errmsg").String(),
		}
	}

	if out == nil {
		return nil
	}
	if err := jsonpkg.Unmarshal(body, out); err != nil {
		return &TransportError{Status: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func snippet(body []byte) string {
	const max = 256
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// loggingRoundTripper 输出请求行日志，例如 [GET] /customservice/kfsession/getwaitcase 200 35ms。
type loggingRoundTripper struct {
	next http.RoundTripper
}

func (rt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if logger.GetLevel() == logger.LogOff {
		return rt.next.RoundTrip(req)
	}

	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		logger.Debug("[%s] %s failed after %dms: %v", req.Method, req.URL.Path, time.Since(start).Milliseconds(), err)
		return nil, err
	}
	logger.Debug("[%s] %s %d %dms", req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Milliseconds())
	return resp, nil
}
