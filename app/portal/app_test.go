package portal_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/memberportal/app/portal"
	"github.com/dmitrymomot/memberportal/core/cookie"
	"github.com/dmitrymomot/memberportal/core/guard"
	"github.com/dmitrymomot/memberportal/core/query"
	"github.com/dmitrymomot/memberportal/core/server"
	"github.com/dmitrymomot/memberportal/core/session"
	"github.com/dmitrymomot/memberportal/core/sessiontransport"
	"github.com/dmitrymomot/memberportal/integration/apiclient"
	"github.com/dmitrymomot/memberportal/integration/database/redis"
	"github.com/dmitrymomot/memberportal/pkg/ratelimiter"
)

// fakeAPI is a minimal stand-in for the remote portal API.
type fakeAPI struct {
	mu     sync.Mutex
	tokens map[string]map[string]any // token -> user

	newsLists atomic.Int32
	deleted   atomic.Int32
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{tokens: map[string]map[string]any{}}
}

var fakeUsers = map[string]struct {
	password string
	token    string
	user     map[string]any
}{
	"ann@example.org":  {"secret-pass", "tok-ann", map[string]any{"id": 1, "name": "Ann", "email": "ann@example.org", "role": "member"}},
	"root@example.org": {"root-pass", "tok-root", map[string]any{"id": 2, "name": "Root", "email": "root@example.org", "role": "admin"}},
}

func (f *fakeAPI) revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
}

func (f *fakeAPI) authorized(w http.ResponseWriter, r *http.Request) map[string]any {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	u, ok := f.tokens[tok]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
		return nil
	}
	return u
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		acct, ok := fakeUsers[in.Email]
		if !ok || acct.password != in.Password {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
			return
		}
		f.mu.Lock()
		f.tokens[acct.token] = acct.user
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"user": acct.user, "token": acct.token})
	})
	mux.HandleFunc("GET /api/news", func(w http.ResponseWriter, r *http.Request) {
		f.newsLists.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": 1, "title": "Hello", "content": "World"}}})
	})
	mux.HandleFunc("POST /api/news", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) == nil {
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": 2, "title": "New", "content": "Item"})
	})
	mux.HandleFunc("GET /api/payments", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) == nil {
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	})
	mux.HandleFunc("GET /api/publications", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") != "approved" && f.authorized(w, r) == nil {
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	})
	mux.HandleFunc("PUT /api/members/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) == nil {
			return
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "name": in["name"], "email": "ann@example.org", "role": "member"})
	})
	mux.HandleFunc("DELETE /api/members/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) == nil {
			return
		}
		f.deleted.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testConfig(apiURL string) portal.Config {
	cfg := portal.Config{
		Server:    server.Config{Addr: "127.0.0.1:0"},
		Cookie:    cookie.Config{Secrets: "test-secret-key-32-characters!!!", Path: "/", Secure: false},
		Session:   sessiontransport.DefaultConfig(),
		API:       apiclient.Config{BaseURL: apiURL + "/api", Timeout: 5 * time.Second},
		Guard:     guard.Config{},
		Query:     query.Config{StaleTime: time.Minute, MaxSize: 64},
		Env:       "test",
		BodyLimit: 1 << 20,
	}
	return cfg
}

func newPortal(t *testing.T, opts ...portal.AppOption) (*httptest.Server, *fakeAPI) {
	t.Helper()
	return newPortalWith(t, nil, opts...)
}

func newPortalWith(t *testing.T, mod func(*portal.Config), opts ...portal.AppOption) (*httptest.Server, *fakeAPI) {
	t.Helper()

	api := newFakeAPI()
	apiSrv := httptest.NewServer(api.handler())
	t.Cleanup(apiSrv.Close)

	cfg := testConfig(apiSrv.URL)
	if mod != nil {
		mod(&cfg)
	}
	opts = append([]portal.AppOption{portal.WithConfig(cfg)}, opts...)
	app, err := portal.NewApp(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return srv, api
}

// browser is an HTTP client with a cookie jar that does not follow redirects.
type browser struct {
	t    *testing.T
	base string
	c    *http.Client
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: srv.URL, c: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) do(method, path, contentType, body string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, strings.NewReader(body))
	require.NoError(b.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := b.c.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(raw)
}

func (b *browser) get(path string) (*http.Response, string) {
	return b.do(http.MethodGet, path, "", "")
}

func (b *browser) postJSON(path, body string) (*http.Response, string) {
	return b.do(http.MethodPost, path, "application/json", body)
}

func (b *browser) login(email, password string) {
	b.t.Helper()
	resp, body := b.postJSON("/login", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(b.t, http.StatusOK, resp.StatusCode, body)
}

func TestPortal_AnonymousRedirectedFromDashboard(t *testing.T) {
	t.Parallel()

	srv, _ := newPortal(t)
	resp, _ := newBrowser(t, srv).get("/dashboard")

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestPortal_LoginFlow(t *testing.T) {
	t.Parallel()

	srv, _ := newPortal(t)
	b := newBrowser(t, srv)

	resp, body := b.postJSON("/login", `{"email":"ann@example.org","password":"secret-pass"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var sess struct {
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Role string `json:"role"`
		} `json:"user"`
		IsAuthenticated bool `json:"isAuthenticated"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &sess))
	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, "1", sess.User.ID)
	assert.Equal(t, "member", sess.User.Role)

	resp, body = b.get("/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"name":"Ann"`)

	// Authenticated users are sent away from the login page.
	resp, _ = b.get("/login")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	// Members are kept out of the admin area.
	resp, _ = b.get("/admin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestPortal_LoginRejected(t *testing.T) {
	t.Parallel()

	srv, _ := newPortal(t)
	b := newBrowser(t, srv)

	resp, body := b.postJSON("/login", `{"email":"ann@example.org","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "invalid email or password")

	resp, body = b.postJSON("/login", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `"email":"required"`)

	resp, _ = b.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestPortal_FormLoginRedirects(t *testing.T) {
	t.Parallel()

	srv, _ := newPortal(t)
	b := newBrowser(t, srv)

	form := url.Values{"email": {"ann@example.org"}, "password": {"secret-pass"}}
	resp, _ := b.do(http.MethodPost, "/login", "application/x-www-form-urlencoded", form.Encode())

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestPortal_Logout(t *testing.T) {
	t.Parallel()

	srv, _ := newPortal(t)
	b := newBrowser(t, srv)
	b.login("ann@example.org", "secret-pass")

	resp, _ := b.do(http.MethodPost, "/logout", "", "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = b.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// A second logout is harmless.
	resp, _ = b.do(http.MethodPost, "/logout", "", "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestPortal_APIRejectionLogsOut(t *testing.T) {
	t.Parallel()

	srv, api := newPortal(t)
	b := newBrowser(t, srv)
	b.login("ann@example.org", "secret-pass")

	api.revoke("tok-ann")

	resp, body := b.get("/dashboard")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, body)

	resp, _ = b.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = b.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPortal_UpdateProfileRefreshesSession(t *testing.T) {
	t.Parallel()

	srv, _ := newPortal(t)
	b := newBrowser(t, srv)
	b.login("ann@example.org", "secret-pass")

	resp, body := b.do(http.MethodPut, "/dashboard/profile", "application/json", `{"name":"Annie"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	_, body = b.get("/")
	assert.Contains(t, body, `"name":"Annie"`)
	assert.Contains(t, body, `"role":"member"`)
}

func TestPortal_PublicListsAreCached(t *testing.T) {
	t.Parallel()

	srv, api := newPortal(t)
	anon := newBrowser(t, srv)

	for range 3 {
		resp, body := anon.get("/news")
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.Contains(t, body, `"title":"Hello"`)
	}
	assert.Equal(t, int32(1), api.newsLists.Load())

	admin := newBrowser(t, srv)
	admin.login("root@example.org", "root-pass")
	resp, body := admin.postJSON("/admin/news", `{"title":"New","content":"Item"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, _ = anon.get("/news")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), api.newsLists.Load())
}

func TestPortal_AdminValidation(t *testing.T) {
	t.Parallel()

	srv, _ := newPortal(t)
	admin := newBrowser(t, srv)
	admin.login("root@example.org", "root-pass")

	resp, body := admin.postJSON("/admin/news", `{"title":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `"title":"required"`)

	resp, _ = admin.postJSON("/admin/news", `{"title":"x","content":"y","unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPortal_StaticPages(t *testing.T) {
	t.Parallel()

	srv, _ := newPortal(t)
	b := newBrowser(t, srv)

	resp, body := b.get("/membership")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"fee":"45"`)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "max-age=60")

	resp, _ = b.get("/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = b.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, _ = b.get("/livez")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPortal_RedisSessionsRevokedOnMemberDelete(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	srv, api := newPortal(t, portal.WithRedis(client))

	member := newBrowser(t, srv)
	member.login("ann@example.org", "secret-pass")

	store := redis.NewCredentialStore(client, redis.WithKeyPrefix("portal"))
	ids, err := store.UserSessions(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	resp, _ := member.get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	admin := newBrowser(t, srv)
	admin.login("root@example.org", "root-pass")
	resp, body := admin.do(http.MethodDelete, "/admin/members/1", "", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode, body)
	assert.Equal(t, int32(1), api.deleted.Load())

	ids, err = store.UserSessions(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// The leftover bearer cookie is dropped instead of bouncing between guards.
	resp, _ = member.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	resp, _ = member.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = admin.get("/healthz")
	assert.JSONEq(t, `{"status":"ok","checks":{"redis":"ok"}}`, body)
}

func TestPortal_LoginThrottled(t *testing.T) {
	t.Parallel()

	srv, _ := newPortalWith(t, func(cfg *portal.Config) {
		cfg.LoginLimit = ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour}
	})
	b := newBrowser(t, srv)

	for range 2 {
		resp, _ := b.postJSON("/login", `{"email":"ann@example.org","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, body := b.postJSON("/login", `{"email":"ann@example.org","password":"secret-pass"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode, body)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// Other endpoints are not throttled.
	resp, _ = b.get("/about")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPortal_PublicListsUnreachableAPI(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	srv, _ := newPortalWith(t, func(cfg *portal.Config) {
		cfg.API.BaseURL = deadURL + "/api"
	})
	b := newBrowser(t, srv)

	for _, p := range []string{"/news", "/events/1", "/publications"} {
		resp, body := b.get(p)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode, p)
		assert.NotContains(t, body, deadURL, p)
		assert.NotContains(t, body, "cause", p)
	}
}

func TestPortal_SessionWithoutTokenIsSignedOut(t *testing.T) {
	t.Parallel()

	srv, _ := newPortal(t)
	b := newBrowser(t, srv)

	// Plant a session record that has a user but no bearer token.
	cfg := testConfig("")
	cm, err := cookie.NewFromConfig(cfg.Cookie)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	store := sessiontransport.NewCookieStore(cm, cfg.Session, rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, store.Write(context.Background(), session.Record{
		User: &session.User{ID: "7", Name: "Ann", Role: session.RoleMember},
	}))
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	b.c.Jar.SetCookies(u, rec.Result().Cookies())

	resp, body := b.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, _ = b.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, body = b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"isAuthenticated":false`)
}
