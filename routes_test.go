package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/mirage/config"
	"github.com/akinalp/mirage/database"
	"github.com/akinalp/mirage/store"
)

// ─── Test Fixture ───

// newAPIServer, tüm stack'i gerçek bileşenlerle ayağa kaldırır:
// temp SQLite + miniredis + production wire-up (init_* zinciri).
// mutate nil değilse server kurulmadan önce config'e uygulanır.
func newAPIServer(t *testing.T, mutate func(cfg *config.Config)) *httptest.Server {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")},
		API: config.APIConfig{
			SecretKey:     "test-secret-key",
			TokenTimeout:  10 * time.Minute,
			UploadMaxSize: 1 << 20,
		},
		Admin: config.AdminConfig{User: "admin", Password: "adminpass123"},
		RateLimit: config.RateLimitConfig{
			LoginMaxAttempts: 100, // testler birbirini bloke etmesin
			LoginWindow:      time.Minute,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	db, err := database.New(cfg.Database.Path, database.MigrationsFS())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessions, err := store.Connect(mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	repos := initRepositories(db.Conn)
	svcs, limiters := initServices(db.Conn, repos, sessions, cfg)
	t.Cleanup(limiters.Login.Stop)

	require.NoError(t, svcs.User.EnsureAdmin(t.Context(), cfg.Admin.User, cfg.Admin.Password))

	h := initHandlers(svcs, limiters, cfg)
	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// ─── HTTP Helpers ───

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerUser(t *testing.T, ts *httptest.Server, username, password string) {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/users", map[string]string{
		"username": username,
		"password": password,
		"email":    username + "@example.com",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// loginUser, form-encoded login yapar ve access token döner.
func loginUser(t *testing.T, ts *httptest.Server, username, password string) string {
	t.Helper()
	resp, err := http.PostForm(ts.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "bearer", body["token_type"])
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

// authRequest, bearer token'lı istek atar. token boşsa header eklenmez.
func authRequest(t *testing.T, method, url, token string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// ─── Tests ───

func TestHealthAndIndex(t *testing.T) {
	ts := newAPIServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", decodeBody(t, resp)["status"])

	// Index tüm route'ları listeler
	resp, err = http.Get(ts.URL + "/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(raw), "/login")
	require.Contains(t, string(raw), "/api/users/me")

	// Bilinmeyen path index'e DÜŞMEZ
	resp, err = http.Get(ts.URL + "/no-such-path")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	ts := newAPIServer(t, nil)

	registerUser(t, ts, "alice", "password123")
	token := loginUser(t, ts, "alice", "password123")

	// Token canlıyken protected erişilebilir
	resp := authRequest(t, http.MethodGet, ts.URL+"/protected", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Access granted", decodeBody(t, resp)["msg"])

	// Logout
	resp = authRequest(t, http.MethodPost, ts.URL+"/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Successfully logged out", decodeBody(t, resp)["msg"])

	// Aynı token artık ölü — imza geçerli olsa bile session yok
	resp = authRequest(t, http.MethodGet, ts.URL+"/protected", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
}

func TestLogin_WrongCredentials(t *testing.T) {
	ts := newAPIServer(t, nil)
	registerUser(t, ts, "alice", "password123")

	resp, err := http.PostForm(ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"wrong-password"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	require.Equal(t, "Incorrect username or password", decodeBody(t, resp)["detail"])
}

func TestProtected_WithoutToken(t *testing.T) {
	ts := newAPIServer(t, nil)

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer garbage.token.here"} {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/protected", nil)
		require.NoError(t, err)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header=%q", header)
		require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	}
}

func TestRegister_Duplicate(t *testing.T) {
	ts := newAPIServer(t, nil)
	registerUser(t, ts, "alice", "password123")

	resp := postJSON(t, ts.URL+"/api/users", map[string]string{
		"username": "alice",
		"password": "password123",
		"email":    "other@example.com",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	detail, _ := decodeBody(t, resp)["detail"].(string)
	require.Contains(t, detail, "username")
}

func TestRegister_InvalidBody(t *testing.T) {
	ts := newAPIServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/users", map[string]string{
		"username": "alice",
		"password": "short",
		"email":    "alice@example.com",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserMeFlow(t *testing.T) {
	ts := newAPIServer(t, nil)
	registerUser(t, ts, "alice", "password123")
	token := loginUser(t, ts, "alice", "password123")

	// Kendi kaydını görür — hash ve iç ID response'ta YOK
	resp := authRequest(t, http.MethodGet, ts.URL+"/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(raw), `"username":"alice"`)
	require.NotContains(t, string(raw), "$2a$", "bcrypt hash must never leak")

	// Email güncelle
	body := bytes.NewBufferString(`{"email": "new@example.com"}`)
	resp = authRequest(t, http.MethodPut, ts.URL+"/api/users/me", token, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "new@example.com", decodeBody(t, resp)["email"])
}

func TestProfileFlow(t *testing.T) {
	ts := newAPIServer(t, nil)
	registerUser(t, ts, "alice", "password123")
	token := loginUser(t, ts, "alice", "password123")

	// Kayıtla birlikte oluşan boş profil
	resp := authRequest(t, http.MethodGet, ts.URL+"/api/users/me/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "", decodeBody(t, resp)["first_name"])

	// Kısmi güncelleme
	body := bytes.NewBufferString(`{"first_name": "Ayşe", "phone": "+905551234567"}`)
	resp = authRequest(t, http.MethodPut, ts.URL+"/api/users/me/profile", token, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody(t, resp)
	require.Equal(t, "Ayşe", got["first_name"])
	require.Equal(t, "+905551234567", got["phone"])

	// Geçersiz telefon → 400
	body = bytes.NewBufferString(`{"phone": "not-a-phone"}`)
	resp = authRequest(t, http.MethodPut, ts.URL+"/api/users/me/profile", token, body)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteMe_RevokesToken(t *testing.T) {
	ts := newAPIServer(t, nil)
	registerUser(t, ts, "alice", "password123")
	token := loginUser(t, ts, "alice", "password123")

	resp := authRequest(t, http.MethodDelete, ts.URL+"/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "User deleted", decodeBody(t, resp)["msg"])

	// Token revoke edildi
	resp = authRequest(t, http.MethodGet, ts.URL+"/protected", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Tekrar login denemesi de başarısız — hesap yok
	loginResp, err := http.PostForm(ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"password123"},
	})
	require.NoError(t, err)
	loginResp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, loginResp.StatusCode)
}

func TestAdminEndpoints(t *testing.T) {
	ts := newAPIServer(t, nil)
	registerUser(t, ts, "alice", "password123")

	userToken := loginUser(t, ts, "alice", "password123")
	adminToken := loginUser(t, ts, "admin", "adminpass123")

	// Normal kullanıcı → 403 (401 değil: kimlik tamam, yetki yok)
	for _, path := range []string{"/api/users/", "/api/users/profiles"} {
		resp := authRequest(t, http.MethodGet, ts.URL+path, userToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode, path)
		require.Equal(t, "admin access required", decodeBody(t, resp)["detail"])
	}

	// Admin listeyi görür: bootstrap admin + alice
	resp := authRequest(t, http.MethodGet, ts.URL+"/api/users/", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	resp.Body.Close()
	require.Len(t, users, 2)

	// Token'sız admin endpoint'i → 401
	resp = authRequest(t, http.MethodGet, ts.URL+"/api/users/", "", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRateLimit(t *testing.T) {
	ts := newAPIServer(t, func(cfg *config.Config) {
		cfg.RateLimit.LoginMaxAttempts = 3
	})
	registerUser(t, ts, "alice", "password123")

	// 3 başarısız deneme limitin içinde — 401 döner
	for i := 0; i < 3; i++ {
		resp, err := http.PostForm(ts.URL+"/login", url.Values{
			"username": {"alice"},
			"password": {"wrong"},
		})
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}

	// 4. deneme — doğru şifre bile olsa 429
	resp, err := http.PostForm(ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"password123"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	require.NoError(t, err)
	require.Positive(t, retryAfter)
	detail, _ := decodeBody(t, resp)["detail"].(string)
	require.Contains(t, detail, "too many login attempts")
}

func TestImageProxy_EndToEnd(t *testing.T) {
	// Sahte inference backend: gelen dosyayı doğrular, JSON döner
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recognize-face", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "face.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"faces": 1}`)
	}))
	defer backend.Close()

	backendURL, err := url.Parse(backend.URL)
	require.NoError(t, err)
	backendPort, err := strconv.Atoi(backendURL.Port())
	require.NoError(t, err)

	ts := newAPIServer(t, func(cfg *config.Config) {
		cfg.API.DeepfaceHost = backendURL.Hostname()
		cfg.API.DeepfacePort = backendPort
	})
	registerUser(t, ts, "alice", "password123")
	token := loginUser(t, ts, "alice", "password123")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "face.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/image/recognize-face", &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.JSONEq(t, `{"faces": 1}`, string(raw))

	// Token'sız istek backend'e HİÇ ulaşmaz
	resp = authRequest(t, http.MethodPost, ts.URL+"/api/image/recognize-face", "", strings.NewReader(""))
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestImageProxy_UploadTooLarge(t *testing.T) {
	ts := newAPIServer(t, func(cfg *config.Config) {
		cfg.API.UploadMaxSize = 1024 // 1KB limit
	})
	registerUser(t, ts, "alice", "password123")
	token := loginUser(t, ts, "alice", "password123")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "big.jpg")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 4096))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/image/recognize-face", &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestForgotPassword_AlwaysOK(t *testing.T) {
	ts := newAPIServer(t, nil)
	registerUser(t, ts, "alice", "password123")

	// Kayıtlı ve kayıtsız email aynı cevabı alır — hesap varlığı sızmaz
	for _, email := range []string{"alice@example.com", "ghost@example.com"} {
		resp := postJSON(t, ts.URL+"/forgot-password", map[string]string{"email": email})
		require.Equal(t, http.StatusOK, resp.StatusCode, email)
		require.Equal(t, "if the email exists, a reset link has been sent", decodeBody(t, resp)["message"])
	}

	// Aynı email hemen tekrar isterse cooldown döner
	resp := postJSON(t, ts.URL+"/forgot-password", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody(t, resp)
	require.Equal(t, "cooldown active", got["message"])
	require.Positive(t, got["cooldown"])
}
