package api

import (
	"errors"
	"fmt"
)

// 微信返回的 access_token 失效类错误码。
const (
	CodeInvalidCredential  = 40001
	CodeInvalidAccessToken = 40014
	CodeAccessTokenExpired = 42001
)

// ArgumentError 表示必填参数缺失或格式不合法，总是在发起任何请求之前返回。
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Reason)
}

// TransportError 表示网络、HTTP 状态码或响应体解析层面的失败。
// Status 为 0 表示请求没有拿到 HTTP 响应。
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error (HTTP %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError 表示响应中 errcode != 0。
type RemoteError struct {
	ErrCode int
	ErrMsg  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("wechat api error %d: %s", e.ErrCode, e.ErrMsg)
}

func (e *RemoteError) IsTokenExpired() bool {
	switch e.ErrCode {
	case CodeInvalidCredential, CodeInvalidAccessToken, CodeAccessTokenExpired:
		return true
	}
	return false
}

// IsRemoteCode 判断 err 链上是否存在指定 errcode 的 RemoteError。
func IsRemoteCode(err error, code int) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr) && remoteErr.ErrCode == code
}
