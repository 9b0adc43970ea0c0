package kfsession

import "wechatkf-golang/refactor/internal/api"

// SessionRef 是创建/关闭会话的请求体。
type SessionRef struct {
	KfAccount string `json:"kf_account" validate:"required,kfaccount"`
	OpenID    string `json:"openid" validate:"required"`
	// Text 为附加信息，会展示在多客服客户端，可为空。
	Text string `json:"text"`
}

// SessionRecord 是会话列表中的一项。
type SessionRecord struct {
	OpenID     string `json:"openid"`
	CreateTime int64  `json:"createtime"`
}

// SessionStatus 是客户当前的会话状态。客户没有进行中的会话时 KfAccount 为空。
type SessionStatus struct {
	api.Result
	CreateTime int64  `json:"createtime"`
	KfAccount  string `json:"kf_account"`
}

func (s *SessionStatus) Active() bool { return s.KfAccount != "" }

type SessionList struct {
	api.Result
	SessionList []SessionRecord `json:"sessionlist"`
}

// WaitCase 是未接入会话的一项，LatestTime 为客户最后一条消息的时间。
type WaitCase struct {
	OpenID     string `json:"openid"`
	LatestTime int64  `json:"latest_time"`
}

// WaitCaseList 兼容两种返回：文档中的 sessionlist，以及线上接口的 count + waitcaselist。
type WaitCaseList struct {
	api.Result
	Count        int             `json:"count"`
	SessionList  []SessionRecord `json:"sessionlist"`
	WaitCaseList []WaitCase      `json:"waitcaselist"`
}

// Records 按响应顺序返回未接入会话。
func (l *WaitCaseList) Records() []SessionRecord {
	if len(l.SessionList) > 0 || len(l.WaitCaseList) == 0 {
		return l.SessionList
	}
	records := make([]SessionRecord, 0, len(l.WaitCaseList))
	for _, w := range l.WaitCaseList {
		records = append(records, SessionRecord{OpenID: w.OpenID, CreateTime: w.LatestTime})
	}
	return records
}
