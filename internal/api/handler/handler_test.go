package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/anon-forum/config"
	"github.com/d60-Lab/anon-forum/internal/api/handler"
	"github.com/d60-Lab/anon-forum/internal/api/router"
	"github.com/d60-Lab/anon-forum/internal/repository"
	"github.com/d60-Lab/anon-forum/internal/service"
	"github.com/d60-Lab/anon-forum/pkg/database"
	"github.com/d60-Lab/anon-forum/pkg/session"
)

const cookieName = "forum_session"

type testServer struct {
	engine *gin.Engine
	auth   service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		Database: config.DatabaseConfig{Driver: database.DriverSQLite, DSN: ":memory:"},
		Session:  config.SessionConfig{Secret: "test-secret", CookieName: cookieName, TTL: time.Hour},
	}
	db, err := database.Open(cfg.Database, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	sqlDB, err := db.DB()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := repository.NewUserRepository(db)
	auth := service.NewAuthService(users, bcrypt.MinCost)
	sessions := service.NewSessionService(session.NewManager(cfg.Session.Secret, cfg.Session.TTL), session.NewRedisRevoker(client), users)
	forum := service.NewForumService(repository.NewPostRepository(db), repository.NewReplyRepository(db))

	h := handler.NewHandler(auth, sessions, forum, sqlDB, handler.CookieOptions{Name: cookieName})
	engine, err := router.Setup(cfg, h, sessions)
	require.NoError(t, err)
	return &testServer{engine: engine, auth: auth}
}

// client 保存会话 cookie
type client struct {
	t      *testing.T
	srv    *testServer
	cookie *http.Cookie
}

func (s *testServer) client(t *testing.T) *client { return &client{t: t, srv: s} }

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.srv.engine.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name != cookieName {
			continue
		}
		if ck.MaxAge < 0 || ck.Value == "" {
			c.cookie = nil
		} else {
			c.cookie = ck
		}
	}
	return w
}

func (c *client) login(username, password string) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, "/login", url.Values{"username": {username}, "password": {password}})
}

func (c *client) register(username, password string) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, "/register", url.Values{"username": {username}, "password": {password}})
}

type feedResponse struct {
	Code int `json:"code"`
	Data []struct {
		ID        uint   `json:"id"`
		Content   string `json:"content"`
		Author    string `json:"author"`
		CanDelete bool   `json:"can_delete"`
		Replies   []struct {
			Content string `json:"content"`
			Author  string `json:"author"`
		} `json:"replies"`
	} `json:"data"`
}

func (c *client) feed() feedResponse {
	c.t.Helper()
	w := c.do(http.MethodGet, "/api/v1/feed", nil)
	require.Equal(c.t, http.StatusOK, w.Code)
	var resp feedResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestIndex_Anonymous(t *testing.T) {
	srv := newTestServer(t)
	w := srv.client(t).do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Пока нет сообщений.")
	assert.Contains(t, body, `href="/login"`)
	assert.NotContains(t, body, `action="/post"`)
}

func TestProtectedRoutes_RedirectToLogin(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	cases := []struct{ method, path string }{
		{http.MethodPost, "/post"},
		{http.MethodPost, "/reply/1"},
		{http.MethodGet, "/delete_post/1"},
		{http.MethodGet, "/logout"},
	}
	for _, tc := range cases {
		w := c.do(tc.method, tc.path, url.Values{"content": {"x"}})
		assert.Equal(t, http.StatusFound, w.Code, tc.path)
		assert.Equal(t, "/login?next="+url.QueryEscape(tc.path), w.Header().Get("Location"), tc.path)
	}
	assert.Empty(t, c.feed().Data)
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	w := c.register("alice", "pw1")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = c.register("alice", "pw2")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Пользователь с таким именем уже существует.")

	w = c.register("", "pw")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Логин и пароль обязательны.")

	w = c.register(strings.Repeat("x", 51), "pw")
	assert.Contains(t, w.Body.String(), "не длиннее 50")

	// 原密码仍然有效
	w = c.login("alice", "pw1")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice", "pw1")

	wrongPw := c.login("alice", "nope")
	noUser := c.login("nobody", "pw1")
	assert.Equal(t, wrongPw.Code, noUser.Code)
	assert.Contains(t, wrongPw.Body.String(), "Неверный логин или пароль.")
	assert.Contains(t, noUser.Body.String(), "Неверный логин или пароль.")
	assert.Nil(t, c.cookie)
}

func TestLogin_NextContinuation(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice", "pw1")

	w := c.do(http.MethodPost, "/login?next=%2Fapi%2Fv1%2Ffeed", url.Values{"username": {"alice"}, "password": {"pw1"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/feed", w.Header().Get("Location"))
	require.NotNil(t, c.cookie)
	assert.True(t, c.cookie.HttpOnly)

	// 已登录访问登录/注册页跳回首页
	assert.Equal(t, "/", c.do(http.MethodGet, "/login", nil).Header().Get("Location"))
	assert.Equal(t, "/", c.do(http.MethodGet, "/register", nil).Header().Get("Location"))

	other := srv.client(t)
	w = other.do(http.MethodPost, "/login?next=%2F%2Fevil.example", url.Values{"username": {"alice"}, "password": {"pw1"}})
	assert.Equal(t, "/", w.Header().Get("Location"))

	page := srv.client(t).do(http.MethodGet, "/login?next=%2Fpost", nil)
	assert.Contains(t, page.Body.String(), `action="/login?next=`)
}

func TestForumFlow(t *testing.T) {
	srv := newTestServer(t)
	_, err := srv.auth.CreateAdmin(context.Background(), "root", "rootpw")
	require.NoError(t, err)

	alice := srv.client(t)
	alice.register("alice", "pw1")
	alice.login("alice", "pw1")

	w := alice.do(http.MethodPost, "/post", url.Values{"content": {"first post"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// 空内容静默忽略
	alice.do(http.MethodPost, "/post", url.Values{"content": {"   "}})

	feed := alice.feed()
	require.Len(t, feed.Data, 1)
	post := feed.Data[0]
	assert.Equal(t, "first post", post.Content)
	assert.Equal(t, "alice", post.Author)
	assert.True(t, post.CanDelete)

	bob := srv.client(t)
	bob.register("bob", "pw2")
	bob.login("bob", "pw2")
	idStr := strconv.FormatUint(uint64(post.ID), 10)
	w = bob.do(http.MethodPost, "/reply/"+idStr, url.Values{"content": {"nice"}})
	assert.Equal(t, http.StatusFound, w.Code)

	// 回复不存在的帖子同样跳回首页
	w = bob.do(http.MethodPost, "/reply/9999", url.Values{"content": {"lost"}})
	assert.Equal(t, http.StatusFound, w.Code)

	feed = bob.feed()
	require.Len(t, feed.Data, 1)
	assert.False(t, feed.Data[0].CanDelete)
	require.Len(t, feed.Data[0].Replies, 1)
	assert.Equal(t, "nice", feed.Data[0].Replies[0].Content)
	assert.Equal(t, "bob", feed.Data[0].Replies[0].Author)

	// 非作者删除无效果
	w = bob.do(http.MethodGet, "/delete_post/"+idStr, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Len(t, bob.feed().Data, 1)

	page := alice.do(http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, page, "/delete_post/"+idStr)
	assert.Contains(t, page, "nice")
	assert.NotContains(t, bob.do(http.MethodGet, "/", nil).Body.String(), "/delete_post/"+idStr)

	root := srv.client(t)
	root.login("root", "rootpw")
	assert.True(t, root.feed().Data[0].CanDelete)
	w = root.do(http.MethodGet, "/delete_post/"+idStr, nil)
	assert.Equal(t, http.StatusFound, w.Code)

	assert.Empty(t, alice.feed().Data)
}

func TestDeletePost_MalformedID(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice", "pw1")
	c.login("alice", "pw1")

	w := c.do(http.MethodGet, "/delete_post/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice", "pw1")
	c.login("alice", "pw1")
	require.NotNil(t, c.cookie)
	stolen := *c.cookie

	assert.Contains(t, c.do(http.MethodGet, "/", nil).Body.String(), "Привет, alice!")

	w := c.do(http.MethodGet, "/logout", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Nil(t, c.cookie)

	// 旧令牌已被吊销
	replay := srv.client(t)
	replay.cookie = &stolen
	w = replay.do(http.MethodPost, "/post", url.Values{"content": {"ghost"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login"))
	assert.Empty(t, replay.feed().Data)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	w := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestNoRoute(t *testing.T) {
	srv := newTestServer(t)
	w := srv.client(t).do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Страница не найдена.")
}
