package json

import "github.com/bytedance/sonic"

// api 不转义 HTML 字符，且不对非 ASCII 字符做 \u 转义：
// 客服会话的附加信息 text 需要原样送达多客服客户端。
var api = sonic.Config{
	EscapeHTML:  false,
	SortMapKeys: false,
	UseInt64:    true,
	CopyString:  true, // 防止解码后的字符串引用原始 JSON 缓冲区，避免内存泄漏
}.Froze()

func Marshal(v any) ([]byte, error) { return api.Marshal(v) }

func Unmarshal(data []byte, v any) error { return api.Unmarshal(data, v) }

func MarshalString(v any) (string, error) { return api.MarshalToString(v) }

func UnmarshalString(data string, v any) error { return api.UnmarshalFromString(data, v) }

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

