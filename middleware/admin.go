// Package middleware — AdminMiddleware, admin rolü kontrolü.
//
// AuthMiddleware'den SONRA çalışır — context'te AuthUser mevcuttur.
// Rol "admins" değilse → 403 Forbidden. Gate salt-okunurdur: session
// store'a veya DB'ye DOKUNMAZ, karar token claims'inden verilir.
//
// Kullanım:
//
//	authMw.Require(adminMw.Require(http.HandlerFunc(userHandler.List)))
package middleware

import (
	"net/http"

	"github.com/akinalp/mirage/handlers"
	"github.com/akinalp/mirage/models"
	"github.com/akinalp/mirage/pkg"
)

// AdminMiddleware, admin rolü zorunlu kılan middleware.
type AdminMiddleware struct{}

// NewAdminMiddleware, constructor.
func NewAdminMiddleware() *AdminMiddleware {
	return &AdminMiddleware{}
}

// Require, admin rolü zorunlu kılar.
// Kimlik zaten doğrulanmıştır — buradaki ret 401 değil 403'tür:
// "kim olduğunu biliyorum, ama bunu yapamazsın".
func (m *AdminMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authUser, ok := r.Context().Value(handlers.AuthUserContextKey).(*models.AuthUser)
		if !ok {
			pkg.Unauthenticated(w, "Not authenticated")
			return
		}

		if authUser.Role != models.RoleAdmins {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
