package token

import "time"

// 提前 10 秒视为过期，避免临界时刻拿着即将失效的 token 发请求。
const expirySkew = 10 * time.Second

type AccessToken struct {
	AccessToken string `json:"access_token"`
	ExpireTime  int64  `json:"expire_time"` // unix 毫秒
}

func (t *AccessToken) IsValid(nowMs int64) bool {
	return t != nil && t.AccessToken != "" && nowMs < t.ExpireTime
}

func (t *AccessToken) ExpiresAt() time.Time {
	return time.UnixMilli(t.ExpireTime)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func newAccessToken(resp tokenResponse, now time.Time) *AccessToken {
	lifetime := time.Duration(resp.ExpiresIn)*time.Second - expirySkew
	if lifetime < 0 {
		lifetime = 0
	}
	return &AccessToken{
		AccessToken: resp.AccessToken,
		ExpireTime:  now.Add(lifetime).UnixMilli(),
	}
}
