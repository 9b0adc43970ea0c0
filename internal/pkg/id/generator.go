package id

import "github.com/google/uuid"

// RequestID 为每次发往微信后端的请求生成关联日志用的 ID。
func RequestID() string { return "kf-" + uuid.New().String() }
