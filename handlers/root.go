package handlers

import (
	"net/http"

	"github.com/akinalp/mirage/pkg"
)

// RouteInfo, GET / çıktısındaki tek bir endpoint tanımı.
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Auth   string `json:"auth"` // "public" | "bearer" | "admin"
}

// RootHandler, index ve health endpoint'leri.
type RootHandler struct {
	routes []RouteInfo
}

// NewRootHandler, constructor.
// routes: init_routes.go'da kurulan tablonun kendisi — route listesi
// İKİ yerde tutulmaz, mux'a kaydedilen tablo burada da gösterilir.
func NewRootHandler(routes []RouteInfo) *RootHandler {
	return &RootHandler{routes: routes}
}

// Index godoc
// GET /
// API'nin kendi kendini tanıttığı route dizini. Auth gerektirmez.
func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	// "GET /" pattern'ı Go 1.22 mux'ında her eşleşmeyen path'i de yakalar —
	// yalnızca gerçek kök istek index döner, gerisi 404
	if r.URL.Path != "/" {
		pkg.ErrorWithMessage(w, http.StatusNotFound, "not found")
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{
		"name":   "mirage",
		"routes": h.routes,
	})
}

// Health godoc
// GET /api/health
// Liveness probe — process ayaktaysa 200 döner, bağımlılıkları KONTROL ETMEZ.
func (h *RootHandler) Health(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
