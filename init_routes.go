// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// Middleware chain helper'ları burada tanımlıdır:
//   - auth: bearer token doğrulaması (JWT + session store)
//   - authAdmin: auth + admin rol kontrolü
package main

import (
	"net/http"
	"strings"

	"github.com/akinalp/mirage/handlers"
	"github.com/akinalp/mirage/middleware"
	"github.com/akinalp/mirage/services"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Route tablosu tek listeden beslenir: mux kaydı da GET / index çıktısı da
// aynı tabloyu kullanır — endpoint listesi iki yerde tutulmaz, eklenen
// route otomatik olarak index'te görünür.
func initRoutes(mux *http.ServeMux, h *Handlers, authService services.AuthService) {
	// ─── Middleware ───
	authMw := middleware.NewAuthMiddleware(authService)
	adminMw := middleware.NewAdminMiddleware()

	// ─── Middleware Chain Helpers ───
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}
	authAdmin := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(adminMw.Require(http.HandlerFunc(handler)))
	}

	type route struct {
		info    handlers.RouteInfo
		handler http.Handler
	}

	healthHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Root.Health(w, r)
	})

	table := []route{
		// ─── Public ───
		{handlers.RouteInfo{Method: "GET", Path: "/api/health", Auth: "public"}, healthHandler},
		{handlers.RouteInfo{Method: "POST", Path: "/login", Auth: "public"}, http.HandlerFunc(h.Auth.Login)},
		{handlers.RouteInfo{Method: "POST", Path: "/forgot-password", Auth: "public"}, http.HandlerFunc(h.Auth.ForgotPassword)},
		{handlers.RouteInfo{Method: "POST", Path: "/reset-password", Auth: "public"}, http.HandlerFunc(h.Auth.ResetPassword)},
		{handlers.RouteInfo{Method: "POST", Path: "/api/users", Auth: "public"}, http.HandlerFunc(h.User.Register)},

		// ─── Bearer-gated ───
		{handlers.RouteInfo{Method: "POST", Path: "/logout", Auth: "bearer"}, auth(h.Auth.Logout)},
		{handlers.RouteInfo{Method: "GET", Path: "/protected", Auth: "bearer"}, auth(h.Auth.Protected)},
		{handlers.RouteInfo{Method: "GET", Path: "/api/users/me", Auth: "bearer"}, auth(h.User.Me)},
		{handlers.RouteInfo{Method: "PUT", Path: "/api/users/me", Auth: "bearer"}, auth(h.User.UpdateMe)},
		{handlers.RouteInfo{Method: "DELETE", Path: "/api/users/me", Auth: "bearer"}, auth(h.User.DeleteMe)},
		{handlers.RouteInfo{Method: "GET", Path: "/api/users/me/profile", Auth: "bearer"}, auth(h.Profile.Me)},
		{handlers.RouteInfo{Method: "PUT", Path: "/api/users/me/profile", Auth: "bearer"}, auth(h.Profile.UpdateMe)},
		{handlers.RouteInfo{Method: "POST", Path: "/api/image/recognize-face", Auth: "bearer"}, auth(h.Image.RecognizeFace)},
		{handlers.RouteInfo{Method: "POST", Path: "/api/image/compare-faces", Auth: "bearer"}, auth(h.Image.CompareFaces)},
		{handlers.RouteInfo{Method: "POST", Path: "/api/image/count-people", Auth: "bearer"}, auth(h.Image.CountPeople)},
		{handlers.RouteInfo{Method: "POST", Path: "/api/image/generate_image", Auth: "bearer"}, auth(h.Image.GenerateImage)},
		{handlers.RouteInfo{Method: "POST", Path: "/api/image/generate_avatar", Auth: "bearer"}, auth(h.Image.GenerateAvatar)},

		// ─── Admin-gated ───
		{handlers.RouteInfo{Method: "GET", Path: "/api/users/", Auth: "admin"}, authAdmin(h.User.List)},
		{handlers.RouteInfo{Method: "GET", Path: "/api/users/profiles", Auth: "admin"}, authAdmin(h.User.ListProfiles)},
	}

	routeList := make([]handlers.RouteInfo, 0, len(table)+1)
	for _, rt := range table {
		pattern := rt.info.Path
		// "/api/users/" gibi slash ile biten pattern'lar Go mux'ında prefix
		// match yapar — {$} ile tam eşleşmeye zorlanır, yoksa bu route
		// /api/users/me isteklerini de yutar
		if strings.HasSuffix(pattern, "/") {
			pattern += "{$}"
		}
		mux.Handle(rt.info.Method+" "+pattern, rt.handler)
		routeList = append(routeList, rt.info)
	}

	// Index en son kurulur: kendi dahil tüm route'ları listeler
	routeList = append(routeList, handlers.RouteInfo{Method: "GET", Path: "/", Auth: "public"})
	h.Root = handlers.NewRootHandler(routeList)
	mux.HandleFunc("GET /", h.Root.Index)
}
