// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi çok basit ve "ince" (thin) olmalı:
// 1. Request body'yi parse et (form/JSON → struct)
// 2. Service katmanını çağır
// 3. Sonucu HTTP response olarak döndür
//
// Handler ASLA iş mantığı (business logic) içermez.
// Handler ASLA doğrudan DB'ye erişmez.
// Tüm akıl service'de, handler sadece köprü.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/akinalp/mirage/models"
	"github.com/akinalp/mirage/pkg"
	"github.com/akinalp/mirage/pkg/ratelimit"
	"github.com/akinalp/mirage/services"
)

// AuthHandler, auth endpoint'lerini yöneten struct.
// Service interface'i ve rate limiter constructor'dan alınır (DI).
type AuthHandler struct {
	authService  services.AuthService
	loginLimiter *ratelimit.LoginRateLimiter
}

// NewAuthHandler, constructor.
// loginLimiter: Login brute-force koruması. nil ise rate limiting devre dışı kalır.
func NewAuthHandler(authService services.AuthService, loginLimiter *ratelimit.LoginRateLimiter) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
	}
}

// Login godoc
// POST /login
// Body: form-encoded username/password (JSON DEĞİL — OAuth2 password
// flow'unun form kontratı korunur, mevcut istemciler kırılmaz).
// Başarı: {"access_token": "...", "token_type": "bearer"}
// Başarısızlık: 401 + WWW-Authenticate: Bearer
//
// Rate limiting: IP bazlı brute-force koruması.
// Limit aşıldığında 429 Too Many Requests + Retry-After döner.
// Başarılı login sayacı sıfırlar — meşru kullanıcı bloke olmaz.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ExtractIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		retryAfter := h.loginLimiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			fmt.Sprintf("too many login attempts, please try again in %s",
				ratelimit.FormatRetryMessage(retryAfter)))
		return
	}

	if err := r.ParseForm(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid form body")
		return
	}

	req := &models.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	token, err := h.authService.Login(r.Context(), req)
	if err != nil {
		// Kimlik reddi 401 + bearer challenge ile döner; diğer hatalar
		// (store down vb.) normal mapping'den geçer.
		if errors.Is(err, pkg.ErrUnauthorized) {
			pkg.Unauthenticated(w, "Incorrect username or password")
			return
		}
		pkg.Error(w, err)
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}

	pkg.JSON(w, http.StatusOK, token)
}

// Logout godoc
// POST /logout
// Bearer token zorunlu (middleware). Token session store'dan silinir —
// bu andan itibaren imzası hâlâ geçerli olsa da token ÖLÜDÜR.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	authUser := CurrentUser(r)
	if authUser == nil {
		pkg.Unauthenticated(w, "Not authenticated")
		return
	}

	username, err := h.authService.Logout(r.Context(), authUser.Token)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if username != "" {
		log.Printf("[auth] user %q logged out", username)
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"msg": "Successfully logged out"})
}

// Protected godoc
// GET /protected
// Auth smoke-test endpoint'i: middleware'den geçebildiyse yetkilisin.
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]string{"msg": "Access granted"})
}

// ForgotPassword godoc
// POST /forgot-password
// Body: { "email": "..." }
//
// Cevap her durumda 200: email kayıtlı olmasa bile "link gönderildi" denir,
// hesap varlığı dışarı sızdırılmaz. Cooldown aktifse kalan süre döner —
// frontend geri sayım gösterir.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	cooldown, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if cooldown > 0 {
		pkg.JSON(w, http.StatusOK, map[string]any{
			"message":  "cooldown active",
			"cooldown": cooldown,
		})
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{
		"message": "if the email exists, a reset link has been sent",
	})
}

// ResetPassword godoc
// POST /reset-password
// Body: { "token": "...", "new_password": "..." }
//
// Email'deki token ile şifre sıfırlar. Token doğrulanır, şifre güncellenir,
// kullanıcının tüm reset token'ları silinir (tek kullanımlık link).
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{
		"message": "password has been reset successfully",
	})
}

// contextKey, context.Value için özel key tipi.
//
// Go'da context.Value() any tip kabul eder — string key kullanmak çakışmaya
// neden olabilir. Özel bir tip tanımlayarak namespace collision'ı önleriz.
type contextKey string

// AuthUserContextKey, auth middleware'ın doğrulanmış kimliği koyduğu key.
const AuthUserContextKey contextKey = "auth_user"

// CurrentUser, context'teki doğrulanmış kimliği döner.
// Middleware'den geçmemiş bir istekte nil döner — handler 401 dönmelidir.
func CurrentUser(r *http.Request) *models.AuthUser {
	authUser, ok := r.Context().Value(AuthUserContextKey).(*models.AuthUser)
	if !ok {
		return nil
	}
	return authUser
}
