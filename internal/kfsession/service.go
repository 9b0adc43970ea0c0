// Package kfsession 封装公众号多客服的会话控制接口：创建、关闭、查询会话，
// 以及客服会话列表和未接入会话列表。
//
// 每个方法对应一个远端接口、一次 HTTP 往返。参数校验失败时返回
// *api.ArgumentError 且不会发起任何请求；其余错误（*api.TransportError、
// *api.RemoteError）由 Dispatcher 原样返回。
package kfsession

import (
	"context"
	"net/http"
	"net/url"

	"wechatkf-golang/refactor/internal/api"
)

const (
	pathCreate         = "customservice/kfsession/create"
	pathClose          = "customservice/kfsession/close"
	pathGetSession     = "customservice/kfsession/getsession"
	pathGetSessionList = "customservice/kfsession/getsessionlist"
	pathGetWaitCase    = "customservice/kfsession/getwaitcase"
)

// Dispatcher 负责 access_token 和实际的 HTTP 请求，*api.Client 实现了它。
type Dispatcher interface {
	EnsureValidToken(ctx context.Context) (string, error)
	Request(ctx context.Context, rawURL string, opts api.RequestOptions, out any) error
	Prefix() string
}

type Service struct {
	dispatcher Dispatcher
}

func NewService(dispatcher Dispatcher) *Service {
	return &Service{dispatcher: dispatcher}
}

// CreateSession 为客户 openID 创建与客服 account 的会话，text 会展示在多客服客户端。
func (s *Service) CreateSession(ctx context.Context, openID, account, text string) (*api.Result, error) {
	return s.postSession(ctx, pathCreate, SessionRef{KfAccount: account, OpenID: openID, Text: text})
}

// CloseSession 关闭客户 openID 与客服 account 的会话。
func (s *Service) CloseSession(ctx context.Context, openID, account, text string) (*api.Result, error) {
	return s.postSession(ctx, pathClose, SessionRef{KfAccount: account, OpenID: openID, Text: text})
}

// GetSession 获取客户的会话状态。
func (s *Service) GetSession(ctx context.Context, openID string) (*SessionStatus, error) {
	if err := validateVar("openid", openID, "required"); err != nil {
		return nil, err
	}

	var out SessionStatus
	if err := s.call(ctx, pathGetSession, url.Values{"openid": {openID}}, api.RequestOptions{Method: http.MethodGet}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSessionList 获取客服 account 当前的会话列表。
func (s *Service) GetSessionList(ctx context.Context, account string) (*SessionList, error) {
	if err := validateVar("kf_account", account, "required,kfaccount"); err != nil {
		return nil, err
	}

	var out SessionList
	if err := s.call(ctx, pathGetSessionList, url.Values{"kf_account": {account}}, api.RequestOptions{Method: http.MethodGet}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWaitCase 获取未接入会话列表。
func (s *Service) GetWaitCase(ctx context.Context) (*WaitCaseList, error) {
	var out WaitCaseList
	if err := s.call(ctx, pathGetWaitCase, nil, api.RequestOptions{Method: http.MethodGet}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) postSession(ctx context.Context, path string, ref SessionRef) (*api.Result, error) {
	if err := validateStruct(&ref); err != nil {
		return nil, err
	}

	var out api.Result
	if err := s.call(ctx, path, nil, api.RequestOptions{Method: http.MethodPost, JSON: ref}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// call 先确保 access_token 可用，再拼接 URL 并发出唯一的一次请求。
func (s *Service) call(ctx context.Context, path string, query url.Values, opts api.RequestOptions, out any) error {
	token, err := s.dispatcher.EnsureValidToken(ctx)
	if err != nil {
		return err
	}
	return s.dispatcher.Request(ctx, api.BuildURL(s.dispatcher.Prefix(), path, token, query), opts, out)
}
