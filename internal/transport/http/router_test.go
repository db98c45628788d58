package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inboxhub/backend/internal/auth"
	"inboxhub/backend/internal/auth/jwt"
	"inboxhub/backend/internal/authz"
	"inboxhub/backend/internal/config"
	"inboxhub/backend/internal/monitoring"
	"inboxhub/backend/internal/service"
	"inboxhub/backend/internal/storage/memory"
)

// 指标注册到全局注册表，整个测试进程只初始化一次。
var testMetrics = monitoring.NewMetrics()

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:8080"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
		Session: config.SessionConfig{
			Secret: strings.Repeat("a", 32),
			Issuer: "test",
			TTL:    24 * time.Hour,
		},
	}

	store := memory.NewStore()
	manager := jwt.NewManager(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TTL)
	log := zap.NewNop()

	return NewRouter(RouterDependencies{
		Config:         cfg,
		AuthService:    auth.NewService(store, manager, auth.NewMemoryRevocationStore()),
		UserService:    service.NewUserService(store),
		InboxService:   service.NewInboxService(store, cfg.Server.BaseURL),
		MessageService: service.NewMessageService(store),
		Policy:         authz.NewPolicy(),
		Metrics:        testMetrics,
		Logger:         log,
	})
}

// doJSON 发送一次 JSON 请求，token 非空时挂 Bearer 头。
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func registerUser(t *testing.T, router *gin.Engine, username, email, password string) map[string]any {
	t.Helper()
	recorder := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	return decodeBody(t, recorder)
}

func loginUser(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()
	recorder := doJSON(t, router, http.MethodPost, "/login", gin.H{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	token, _ := decodeBody(t, recorder)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestUserAndInboxLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// 注册 bob 并建立会话
	user := registerUser(t, router, "bob", "bob@x.com", "pw")
	userID, _ := user["id"].(string)
	require.NotEmpty(t, userID)
	// 密码散列不对外暴露
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "password")

	token := loginUser(t, router, "bob@x.com", "pw")

	// 创建收件箱 work，URL 由服务端派生
	recorder := doJSON(t, router, http.MethodPost, "/users/"+userID+"/inboxes",
		gin.H{"name": "work"}, token)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	inbox := decodeBody(t, recorder)
	inboxID, _ := inbox["id"].(string)
	require.NotEmpty(t, inboxID)
	assert.Equal(t, fmt.Sprintf("http://localhost:8080/inboxes/%s", inboxID), inbox["url"])

	// 同名收件箱冲突
	recorder = doJSON(t, router, http.MethodPost, "/users/"+userID+"/inboxes",
		gin.H{"name": "work"}, token)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, MsgInboxExists, decodeBody(t, recorder)["message"])

	// 列表里只有一条
	recorder = doJSON(t, router, http.MethodGet, "/users/"+userID+"/inboxes", nil, token)
	require.Equal(t, http.StatusOK, recorder.Code)
	var inboxes []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &inboxes))
	assert.Len(t, inboxes, 1)

	// 删除用户后，收件箱级联消失
	recorder = doJSON(t, router, http.MethodDelete, "/users/"+userID, nil, token)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/inboxes/"+inboxID, nil, token)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name    string
		body    gin.H
		message string
	}{
		{"missing email", gin.H{"username": "bob", "password": "pw"}, MsgEmailRequired},
		{"missing password", gin.H{"username": "bob", "email": "bob@x.com"}, MsgPasswordRequired},
		{"missing username", gin.H{"email": "bob@x.com", "password": "pw"}, MsgUsernameRequired},
		{"invalid email", gin.H{"username": "bob", "email": "nope", "password": "pw"}, "Invalid email format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := doJSON(t, router, http.MethodPost, "/register", tc.body, "")
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, tc.message, decodeBody(t, recorder)["message"])
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "bob", "bob@x.com", "pw")

	recorder := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"username": "other",
		"email":    "bob@x.com",
		"password": "pw",
	}, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, MsgEmailExists, decodeBody(t, recorder)["message"])
}

func TestRegister_WhileLoggedIn(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "bob", "bob@x.com", "pw")
	token := loginUser(t, router, "bob@x.com", "pw")

	recorder := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"username": "second",
		"email":    "second@x.com",
		"password": "pw",
	}, token)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, MsgAlreadyLoggedIn, decodeBody(t, recorder)["message"])
}

func TestLogin_SetsCookieAndAccount(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "bob", "bob@x.com", "pw")

	recorder := doJSON(t, router, http.MethodPost, "/login", gin.H{
		"email":    "bob@x.com",
		"password": "pw",
	}, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var cookie string
	for _, c := range recorder.Result().Cookies() {
		if c.Name == "session_token" {
			cookie = c.Value
		}
	}
	require.NotEmpty(t, cookie)

	// Cookie 也可以作为会话凭证
	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: cookie})
	accountRecorder := httptest.NewRecorder()
	router.ServeHTTP(accountRecorder, req)

	require.Equal(t, http.StatusOK, accountRecorder.Code)
	assert.Equal(t, "bob@x.com", decodeBody(t, accountRecorder)["email"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "bob", "bob@x.com", "pw")

	recorder := doJSON(t, router, http.MethodPost, "/login", gin.H{
		"email":    "bob@x.com",
		"password": "wrong",
	}, "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, MsgInvalidCredentials, decodeBody(t, recorder)["message"])
}

func TestLogout_InvalidatesSession(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "bob", "bob@x.com", "pw")
	token := loginUser(t, router, "bob@x.com", "pw")

	recorder := doJSON(t, router, http.MethodGet, "/account", nil, token)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/logout", nil, token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, MsgLogout, decodeBody(t, recorder)["message"])

	// 注销后的令牌不再可用
	recorder = doJSON(t, router, http.MethodGet, "/account", nil, token)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// 无会话时注销同样成功
	recorder = doJSON(t, router, http.MethodGet, "/logout", nil, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestInboxAccess_OwnerOnly(t *testing.T) {
	router := newTestRouter(t)

	alice := registerUser(t, router, "alice", "alice@x.com", "pw")
	registerUser(t, router, "mallory", "mallory@x.com", "pw")
	aliceToken := loginUser(t, router, "alice@x.com", "pw")
	malloryToken := loginUser(t, router, "mallory@x.com", "pw")

	aliceID, _ := alice["id"].(string)
	recorder := doJSON(t, router, http.MethodPost, "/users/"+aliceID+"/inboxes",
		gin.H{"name": "private"}, aliceToken)
	require.Equal(t, http.StatusCreated, recorder.Code)
	inboxID, _ := decodeBody(t, recorder)["id"].(string)

	// 所有者可以读
	recorder = doJSON(t, router, http.MethodGet, "/inboxes/"+inboxID, nil, aliceToken)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// 非所有者与未认证一律 401，单一信号
	for _, token := range []string{malloryToken, ""} {
		recorder = doJSON(t, router, http.MethodGet, "/inboxes/"+inboxID, nil, token)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, MsgUnauthorized, decodeBody(t, recorder)["message"])
	}

	recorder = doJSON(t, router, http.MethodDelete, "/inboxes/"+inboxID, nil, malloryToken)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	recorder = doJSON(t, router, http.MethodPut, "/inboxes/"+inboxID,
		gin.H{"name": "stolen"}, malloryToken)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestMessageFlow(t *testing.T) {
	router := newTestRouter(t)

	bob := registerUser(t, router, "bob", "bob@x.com", "pw")
	token := loginUser(t, router, "bob@x.com", "pw")
	bobID, _ := bob["id"].(string)

	recorder := doJSON(t, router, http.MethodPost, "/users/"+bobID+"/inboxes",
		gin.H{"name": "work"}, token)
	require.Equal(t, http.StatusCreated, recorder.Code)
	inboxID, _ := decodeBody(t, recorder)["id"].(string)

	// 投递开放：无需认证即可写入
	recorder = doJSON(t, router, http.MethodPost, "/inboxes/"+inboxID+"/messages",
		gin.H{"subject": "hello", "body": "first message"}, "")
	require.Equal(t, http.StatusCreated, recorder.Code)
	message := decodeBody(t, recorder)
	messageID, _ := message["id"].(string)
	assert.Equal(t, false, message["is_read"])

	// 正文必填
	recorder = doJSON(t, router, http.MethodPost, "/inboxes/"+inboxID+"/messages",
		gin.H{"subject": "no body"}, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, MsgBodyRequired, decodeBody(t, recorder)["message"])

	// 读取仅限所有者
	recorder = doJSON(t, router, http.MethodGet, "/inboxes/"+inboxID+"/messages", nil, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/inboxes/"+inboxID+"/messages", nil, token)
	require.Equal(t, http.StatusOK, recorder.Code)
	var messages []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &messages))
	assert.Len(t, messages, 1)

	// 标记已读返回更新后的消息
	recorder = doJSON(t, router, http.MethodPatch,
		"/inboxes/"+inboxID+"/messages/"+messageID+"/read", nil, token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, decodeBody(t, recorder)["is_read"])

	// 删除消息
	recorder = doJSON(t, router, http.MethodDelete,
		"/inboxes/"+inboxID+"/messages/"+messageID, nil, token)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet,
		"/inboxes/"+inboxID+"/messages/"+messageID, nil, token)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, MsgMessageNotFound, decodeBody(t, recorder)["message"])
}

func TestMessageCreate_UnknownInbox(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/inboxes/missing/messages",
		gin.H{"body": "lost"}, "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, MsgInboxNotFound, decodeBody(t, recorder)["message"])
}

func TestUserUpdate_RequiresAllFields(t *testing.T) {
	router := newTestRouter(t)
	user := registerUser(t, router, "bob", "bob@x.com", "pw")
	userID, _ := user["id"].(string)

	recorder := doJSON(t, router, http.MethodPut, "/users/"+userID,
		gin.H{"username": "robert"}, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, MsgEmailRequired, decodeBody(t, recorder)["message"])

	recorder = doJSON(t, router, http.MethodPut, "/users/"+userID,
		gin.H{"username": "robert", "email": "robert@x.com", "password": "pw2"}, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	updated := decodeBody(t, recorder)
	assert.Equal(t, "robert", updated["username"])
	assert.Equal(t, "robert@x.com", updated["email"])
}
