package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	AppID     string `toml:"appid" validate:"required"`
	AppSecret string `toml:"appsecret" validate:"required"`

	// Endpoint 选择微信公布的 API 域名之一，见 APIEndpoints。
	Endpoint string `toml:"endpoint" validate:"required"`
	// APIPrefix 非空时覆盖 Endpoint，形如 "http://127.0.0.1:8080/"。
	APIPrefix string `toml:"api_prefix"`

	UserAgent string `toml:"user_agent"`
	TimeoutMs int    `toml:"timeout" validate:"gte=0"`
	Proxy     string `toml:"proxy" validate:"omitempty,url"`

	Debug   string `toml:"debug" validate:"omitempty,oneof=off low high"`
	LogFile string `toml:"log_file"`

	DataDir string `toml:"data_dir"`

	TokenStore         string `toml:"token_store" validate:"oneof=memory file redis"`
	TokenRetryAttempts int    `toml:"token_retry_attempts" validate:"gte=1"`
	TokenAutoRefresh   bool   `toml:"token_auto_refresh"`

	RedisAddr      string `toml:"redis_addr" validate:"required_if=TokenStore redis"`
	RedisPassword  string `toml:"redis_password"`
	RedisDB        int    `toml:"redis_db"`
	RedisKeyPrefix string `toml:"redis_key_prefix"`
}

func defaults() *Config {
	return &Config{
		Endpoint:           "default",
		UserAgent:          "wechatkf-golang/1.0",
		TimeoutMs:          30000,
		Debug:              "off",
		DataDir:            "./data",
		TokenStore:         "file",
		TokenRetryAttempts: 3,
		RedisAddr:          "127.0.0.1:6379",
		RedisKeyPrefix:     "wechat:access_token",
	}
}

// Read 按 默认值 < TOML 配置文件 < .env < 环境变量 的顺序构建配置。
// path 为空时读取 CONFIG_FILE 环境变量；两者都为空则跳过配置文件。
func Read(path string) (*Config, error) {
	loadDotEnv()

	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.AppID = getEnv("WECHAT_APPID", cfg.AppID)
	cfg.AppSecret = getEnv("WECHAT_APPSECRET", cfg.AppSecret)
	cfg.Endpoint = getEnv("WECHAT_ENDPOINT", cfg.Endpoint)
	cfg.APIPrefix = getEnv("WECHAT_API_PREFIX", cfg.APIPrefix)
	cfg.UserAgent = getEnv("API_USER_AGENT", cfg.UserAgent)
	cfg.TimeoutMs = getEnvInt("TIMEOUT", cfg.TimeoutMs)
	cfg.Proxy = getEnv("PROXY", cfg.Proxy)
	cfg.Debug = strings.ToLower(getEnv("DEBUG", cfg.Debug))
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.TokenStore = strings.ToLower(getEnv("TOKEN_STORE", cfg.TokenStore))
	cfg.TokenRetryAttempts = getEnvInt("TOKEN_RETRY_ATTEMPTS", cfg.TokenRetryAttempts)
	cfg.TokenAutoRefresh = getEnvBool("TOKEN_AUTO_REFRESH", cfg.TokenAutoRefresh)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisKeyPrefix = getEnv("REDIS_KEY_PREFIX", cfg.RedisKeyPrefix)

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 检查调用微信接口所需的最小配置。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.APIPrefix == "" {
		if _, ok := APIEndpoints[c.Endpoint]; !ok {
			return fmt.Errorf("invalid config: unknown endpoint %q, expected one of %s", c.Endpoint, endpointChoices())
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
