package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"wechatkf-golang/refactor/internal/api"
	"wechatkf-golang/refactor/internal/token"
)

func newWechatServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/cgi-bin/token":
			_, _ = io.WriteString(w, `{"access_token":"ACCESS_TOKEN_VALUE","expires_in":7200}`)
		case "/customservice/kfsession/create":
			_, _ = io.WriteString(w, `{"errcode":0,"errmsg":"ok"}`)
		case "/customservice/kfsession/getsession":
			_, _ = io.WriteString(w, `{"createtime":123456789,"kf_account":"test1@test"}`)
		case "/customservice/kfsession/getsessionlist":
			if r.URL.Query().Get("kf_account") == "busy@test" {
				_, _ = io.WriteString(w, `{"errcode":60011,"errmsg":"no privilege"}`)
				return
			}
			_, _ = io.WriteString(w, `{"sessionlist":[{"createtime":1,"openid":"o-`+r.URL.Query().Get("kf_account")+`"}]}`)
		case "/customservice/kfsession/getwaitcase":
			_, _ = io.WriteString(w, `{"count":1,"waitcaselist":[{"latest_time":5,"openid":"o9"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setTestEnv(t *testing.T, prefix string) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("WECHAT_APPID", "wx123")
	t.Setenv("WECHAT_APPSECRET", "s3cret")
	t.Setenv("WECHAT_API_PREFIX", prefix)
	t.Setenv("TOKEN_STORE", "memory")
	t.Setenv("TOKEN_RETRY_ATTEMPTS", "1")
	t.Setenv("TOKEN_AUTO_REFRESH", "false")
	t.Setenv("LOG_FILE", "")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestCreateCommand(t *testing.T) {
	setTestEnv(t, newWechatServer(t).URL)

	out, _, err := execute(t, "create", "o1", "test1@test", "你好")
	require.NoError(t, err)
	assert.JSONEq(t, `{"errcode":0,"errmsg":"ok"}`, out)
}

func TestGetCommand(t *testing.T) {
	setTestEnv(t, newWechatServer(t).URL)

	out, _, err := execute(t, "get", "o1")
	require.NoError(t, err)
	assert.Equal(t, "test1@test", gjson.Get(out, "kf_account").String())
	assert.Equal(t, int64(123456789), gjson.Get(out, "createtime").Int())
}

func TestListCommand_KeepsArgumentOrderAndReportsFailures(t *testing.T) {
	setTestEnv(t, newWechatServer(t).URL)

	out, stderr, err := execute(t, "list", "b@test", "busy@test", "a@test")
	require.True(t, errors.Is(err, errAlreadyHandled), "got %v", err)
	assert.Empty(t, stderr)

	entries := gjson.Parse(out).Array()
	require.Len(t, entries, 3)
	assert.Equal(t, "b@test", entries[0].Get("kf_account").String())
	assert.Equal(t, "o-b@test", entries[0].Get("sessionlist.0.openid").String())
	assert.Equal(t, "busy@test", entries[1].Get("kf_account").String())
	assert.Contains(t, entries[1].Get("error").String(), "60011")
	assert.Equal(t, "a@test", entries[2].Get("kf_account").String())
}

func TestWaitCaseCommand(t *testing.T) {
	setTestEnv(t, newWechatServer(t).URL)

	out, _, err := execute(t, "waitcase")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1,"waitcase":[{"openid":"o9","createtime":5}]}`, out)
}

func TestTokenCommand_MasksToken(t *testing.T) {
	setTestEnv(t, newWechatServer(t).URL)

	out, _, err := execute(t, "token", "--refresh")
	require.NoError(t, err)
	assert.Equal(t, "wx123", gjson.Get(out, "appid").String())
	assert.Equal(t, "ACCE***ALUE", gjson.Get(out, "access_token").String())
	assert.Greater(t, gjson.Get(out, "expires_in").Int(), int64(7000))
}

func TestArgumentErrorIsPrinted(t *testing.T) {
	setTestEnv(t, newWechatServer(t).URL)

	out, stderr, err := execute(t, "create", "o1", "not-an-account")

	var argErr *api.ArgumentError
	require.True(t, errors.As(err, &argErr), "got %v", err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "kf_account")
}

func TestConfigFlag(t *testing.T) {
	srv := newWechatServer(t)
	setTestEnv(t, "")
	t.Setenv("WECHAT_APPID", "")

	path := filepath.Join(t.TempDir(), "kfctl.toml")
	require.NoError(t, os.WriteFile(path, []byte("appid = \"wx-file\"\napi_prefix = \""+srv.URL+"\"\n"), 0o600))

	out, _, err := execute(t, "--config", path, "token")
	require.NoError(t, err)
	assert.Equal(t, "wx-file", gjson.Get(out, "appid").String())
}

func TestMissingCredentials(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:1")
	t.Setenv("WECHAT_APPSECRET", "")

	_, stderr, err := execute(t, "get", "o1")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid config")
}

func TestRootWithoutConfigPrintsHelp(t *testing.T) {
	t.Setenv("WECHAT_APPID", "")
	t.Setenv("WECHAT_APPSECRET", "")

	out, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "kfctl")
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "***", maskToken("short"))
	assert.Equal(t, "abcd***wxyz", maskToken("abcdefghwxyz"))
}

func TestDebugFlagIsCaseInsensitive(t *testing.T) {
	setTestEnv(t, newWechatServer(t).URL)

	out, _, err := execute(t, "--debug", "HIGH", "get", "o1")
	require.NoError(t, err)
	assert.Equal(t, "test1@test", gjson.Get(out, "kf_account").String())
}

type closingStore struct {
	token.Store
	closed int
}

func (s *closingStore) Close() error {
	s.closed++
	return nil
}

func TestAppCloseClosesStore(t *testing.T) {
	store := &closingStore{Store: token.NewMemoryStore()}
	a := &app{store: store, cancel: func() {}}

	a.Close()
	assert.Equal(t, 1, store.closed)
}
