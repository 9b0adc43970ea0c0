package api

import (
	"net/url"
	"strings"
)

// BuildURL 拼接接口地址：prefix + path + "?access_token=..."，其余查询参数按键名排序追加。
// token 为空时省略 access_token（例如获取 token 本身的接口）。
func BuildURL(prefix, path, token string, query url.Values) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(strings.TrimPrefix(path, "/"))

	sep := byte('?')
	if token != "" {
		b.WriteByte(sep)
		b.WriteString("access_token=")
		b.WriteString(url.QueryEscape(token))
		sep = '&'
	}
	if len(query) > 0 {
		b.WriteByte(sep)
		b.WriteString(query.Encode())
	}
	return b.String()
}
