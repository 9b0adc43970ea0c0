package api

// Result 是微信接口统一的返回信封，errcode 为 0 表示成功。
type Result struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// RequestOptions 描述一次请求；JSON 非 nil 时以 application/json 发送。
type RequestOptions struct {
	Method string
	JSON   any
}
