package config

import (
	"sort"
	"strings"
)

type Endpoint struct {
	Key   string
	Label string
	Host  string
}

// APIEndpoints 微信公众平台公布的接口域名，进程内固定使用其中一个。
var APIEndpoints = map[string]Endpoint{
	"default": {
		Key:   "default",
		Label: "通用域名",
		Host:  "api.weixin.qq.com",
	},
	"backup": {
		Key:   "backup",
		Label: "通用异地容灾域名",
		Host:  "api2.weixin.qq.com",
	},
	"shanghai": {
		Key:   "shanghai",
		Label: "上海域名",
		Host:  "sh.api.weixin.qq.com",
	},
	"shenzhen": {
		Key:   "shenzhen",
		Label: "深圳域名",
		Host:  "sz.api.weixin.qq.com",
	},
	"hongkong": {
		Key:   "hongkong",
		Label: "香港域名",
		Host:  "hk.api.weixin.qq.com",
	},
}

// endpointChoices 按 Key 排序列出可选域名，例如 "backup（通用异地容灾域名）, default（通用域名）"。
func endpointChoices() string {
	keys := make([]string, 0, len(APIEndpoints))
	for key := range APIEndpoints {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	choices := make([]string, 0, len(keys))
	for _, key := range keys {
		ep := APIEndpoints[key]
		choices = append(choices, ep.Key+"（"+ep.Label+"）")
	}
	return strings.Join(choices, ", ")
}

func (e Endpoint) Prefix() string {
	return "https://" + e.Host + "/"
}

// APIBase 返回所有接口路径拼接的前缀，始终以 "/" 结尾。
func (c *Config) APIBase() string {
	if c.APIPrefix != "" {
		if strings.HasSuffix(c.APIPrefix, "/") {
			return c.APIPrefix
		}
		return c.APIPrefix + "/"
	}
	if ep, ok := APIEndpoints[c.Endpoint]; ok {
		return ep.Prefix()
	}
	return APIEndpoints["default"].Prefix()
}
