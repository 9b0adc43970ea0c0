package logger

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"wechatkf-golang/refactor/internal/config"
)

// LogLevel 控制日志详细程度，取值来自 DEBUG 配置。
type LogLevel int

const (
	LogOff  LogLevel = 0 // basic logs only
	LogLow  LogLevel = 1 // + debug logs
	LogHigh LogLevel = 2 // + backend request/response
)

// 查询参数中需要打码的键。
var redactedParams = []string{"access_token", "secret"}

// 请求体、响应体中需要打码的 JSON 字段。
var redactedFields = []string{"access_token", "secret"}

var (
	currentLogLevel LogLevel
	base            = build(LogOff, "")
	sugar           = base.Sugar()
)

func Init(cfg *config.Config) {
	currentLogLevel = parseLogLevel(cfg.Debug)
	base = build(currentLogLevel, cfg.LogFile)
	sugar = base.Sugar()
}

// Sync 在进程退出前刷新缓冲的日志。
func Sync() {
	_ = base.Sync()
}

func build(level LogLevel, logFile string) *zap.Logger {
	zapLevel := zapcore.InfoLevel
	if level >= LogLow {
		zapLevel = zapcore.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), zapLevel),
	}

	if logFile != "" {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "time"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), writer, zapLevel))
	}

	return zap.New(zapcore.NewTee(cores...))
}

func parseLogLevel(debug string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(debug)) {
	case "low":
		return LogLow
	case "high":
		return LogHigh
	default:
		return LogOff
	}
}

func GetLevel() LogLevel {
	return currentLogLevel
}

func Info(format string, args ...any) {
	sugar.Infof(format, args...)
}

func Warn(format string, args ...any) {
	sugar.Warnf(format, args...)
}

func Error(format string, args ...any) {
	sugar.Errorf(format, args...)
}

func Debug(format string, args ...any) {
	if currentLogLevel < LogLow {
		return
	}
	sugar.Debugf(format, args...)
}

func BackendRequest(requestID, method, rawURL string, rawJSON []byte) {
	if currentLogLevel < LogHigh {
		return
	}
	fields := []any{"id", requestID, "method", method, "url", RedactURL(rawURL)}
	if len(rawJSON) > 0 {
		fields = append(fields, "body", RedactBody(rawJSON))
	}
	sugar.Debugw("后端请求", fields...)
}

func BackendResponse(requestID string, status int, duration time.Duration, body []byte) {
	if currentLogLevel < LogHigh {
		return
	}
	fields := []any{"id", requestID, "status", status, "cost", fmt.Sprintf("%dms", duration.Milliseconds())}
	if len(body) > 0 {
		fields = append(fields, "body", RedactBody(body))
	}
	if status >= 400 {
		sugar.Warnw("后端响应", fields...)
		return
	}
	sugar.Debugw("后端响应", fields...)
}

// RedactURL 隐藏 URL 中的 access_token 与 secret，解析失败时整体打码。
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "***"
	}
	q := u.Query()
	changed := false
	for _, key := range redactedParams {
		if q.Has(key) {
			q.Set(key, "***")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// RedactBody 隐藏 JSON 顶层的 access_token 与 secret 字段，非 JSON 内容原样返回。
func RedactBody(body []byte) string {
	if !gjson.ValidBytes(body) {
		return string(body)
	}
	// 在副本上修改，调用方之后还要解码原始响应体
	out := append([]byte(nil), body...)
	for _, field := range redactedFields {
		if !gjson.GetBytes(out, field).Exists() {
			continue
		}
		redacted, err := sjson.SetBytes(out, field, "***")
		if err != nil {
			return "***"
		}
		out = redacted
	}
	return string(out)
}
