package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/mirage/models"
	"github.com/akinalp/mirage/pkg"
	"github.com/akinalp/mirage/services"
)

// UserHandler, kullanıcı endpoint'lerini yöneten struct.
type UserHandler struct {
	userService services.UserService
	authService services.AuthService
}

// NewUserHandler, constructor.
func NewUserHandler(userService services.UserService, authService services.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// Register godoc
// POST /api/users
// Body: { "username": "...", "password": "...", "email": "..." }
// Kullanıcı + boş profil TEK transaction'da oluşturulur.
// Kullanıcı adı veya email kullanımdaysa → 409 Conflict.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.userService.Register(r.Context(), &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"msg": "User created"})
}

// Me godoc
// GET /api/users/me
// Token sahibinin kendi kaydını döner (password hash json:"-" ile gizli).
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	authUser := CurrentUser(r)
	if authUser == nil {
		pkg.Unauthenticated(w, "Not authenticated")
		return
	}

	user, err := h.userService.GetByUsername(r.Context(), authUser.Username)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}

// UpdateMe godoc
// PUT /api/users/me
// Body: { "username"?, "email"?, "password"? } — kısmi güncelleme,
// gönderilmeyen alanlar değişmez. Şifre değişirse yeniden hash'lenir.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	authUser := CurrentUser(r)
	if authUser == nil {
		pkg.Unauthenticated(w, "Not authenticated")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), authUser.Username, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}

// DeleteMe godoc
// DELETE /api/users/me
// Hesabı siler: profil FK cascade ile gider, sunulan token revoke edilir.
// Kullanıcının elinde başka aktif token varsa onlar JWT süresi dolana
// kadar store'da kalır ama sahipleri artık var olmayan bir hesaba işaret
// eder — /api/users/me gibi DB'ye dokunan her endpoint 404 döner.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	authUser := CurrentUser(r)
	if authUser == nil {
		pkg.Unauthenticated(w, "Not authenticated")
		return
	}

	if err := h.userService.Delete(r.Context(), authUser.Username); err != nil {
		pkg.Error(w, err)
		return
	}

	// Hesap gitti — sunulan token'ın yaşamasının anlamı yok
	h.authService.RevokeToken(r.Context(), authUser.Token)

	pkg.JSON(w, http.StatusOK, map[string]string{"msg": "User deleted"})
}

// List godoc
// GET /api/users/
// Tüm kullanıcılar — yalnızca admin (middleware zinciri: auth → admin).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	// Boş liste null değil [] olarak dönmeli
	if users == nil {
		users = []models.User{}
	}

	pkg.JSON(w, http.StatusOK, users)
}

// ListProfiles godoc
// GET /api/users/profiles
// Tüm profiller — yalnızca admin.
func (h *UserHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.userService.ListProfiles(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if profiles == nil {
		profiles = []models.Profile{}
	}

	pkg.JSON(w, http.StatusOK, profiles)
}
