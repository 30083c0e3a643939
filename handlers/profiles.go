package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/mirage/models"
	"github.com/akinalp/mirage/pkg"
	"github.com/akinalp/mirage/services"
)

// ProfileHandler, profil endpoint'lerini yöneten struct.
type ProfileHandler struct {
	userService services.UserService
}

// NewProfileHandler, constructor.
func NewProfileHandler(userService services.UserService) *ProfileHandler {
	return &ProfileHandler{userService: userService}
}

// Me godoc
// GET /api/users/me/profile
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	authUser := CurrentUser(r)
	if authUser == nil {
		pkg.Unauthenticated(w, "Not authenticated")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), authUser.Username)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, profile)
}

// UpdateMe godoc
// PUT /api/users/me/profile
// Body: { "first_name"?, "last_name"?, "phone"? } — kısmi güncelleme.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	authUser := CurrentUser(r)
	if authUser == nil {
		pkg.Unauthenticated(w, "Not authenticated")
		return
	}

	var req models.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), authUser.Username, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, profile)
}
