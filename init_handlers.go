// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin"dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/akinalp/mirage/config"
	"github.com/akinalp/mirage/handlers"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Profile *handlers.ProfileHandler
	Image   *handlers.ImageHandler
	Root    *handlers.RootHandler
}

// initHandlers, tüm handler'ları service ve rate limiter dependency'leri ile oluşturur.
// Root handler'ın route tablosu initRoutes'ta doldurulur — sıralama:
// önce handler'lar, sonra route'lar.
func initHandlers(svcs *Services, limiters *RateLimiters, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:    handlers.NewAuthHandler(svcs.Auth, limiters.Login),
		User:    handlers.NewUserHandler(svcs.User, svcs.Auth),
		Profile: handlers.NewProfileHandler(svcs.User),
		Image:   handlers.NewImageHandler(svcs.Image, cfg.API.UploadMaxSize),
	}
}
