// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Bu projede zincir: Auth → (Admin) → Handler
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır.
// Middleware kendi işini yapar (token doğrula), sonra next'i çağırır.
// Eğer hata varsa next'i çağırmaz → request burada durur.
package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/akinalp/mirage/handlers"
	"github.com/akinalp/mirage/pkg"
	"github.com/akinalp/mirage/services"
)

// AuthMiddleware, bearer token doğrulama middleware'ı.
type AuthMiddleware struct {
	authService services.AuthService
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Require, geçerli bir bearer token zorunlu kılar.
//
// HTTP header formatı: Authorization: Bearer <token>
//
// Adımlar:
// 1. "Authorization" header'ını oku, "Bearer " prefix'ini ayıkla
// 2. AuthService.Authenticate ile uçtan uca doğrula (JWT + session store)
// 3. Geçerliyse AuthUser'ı context'e ekle → next handler'ı çağır
// 4. Geçersizse → 401 + WWW-Authenticate: Bearer, next ÇAĞRILMAZ
//
// Kritik ayrım: session store'a ulaşılamıyorsa cevap 401 DEĞİL 500'dür.
// "Token geçersiz" ile "token kontrol edilemedi" aynı şey değildir —
// Redis çökmesi tüm kullanıcıları yetkisiz yapmamalı.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r)
		if !ok {
			pkg.Unauthenticated(w, "Not authenticated")
			return
		}

		authUser, err := m.authService.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, pkg.ErrUnauthorized) {
				pkg.Unauthenticated(w, unauthorizedDetail(err))
				return
			}
			// Store down veya beklenmedik hata → 500 (opak body)
			log.Printf("[auth] authentication check failed: %v", err)
			pkg.Error(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), handlers.AuthUserContextKey, authUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken, Authorization header'ından raw token'ı ayıklar.
// Şema adı case-insensitive karşılaştırılır (RFC 7235).
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

// unauthorizedDetail, "unauthorized: token expired" zincirinden kullanıcıya
// gösterilecek kısmı ("token expired") çıkarır.
func unauthorizedDetail(err error) string {
	msg := err.Error()
	if detail, found := strings.CutPrefix(msg, pkg.ErrUnauthorized.Error()+": "); found {
		return detail
	}
	return msg
}
