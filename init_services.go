// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
package main

import (
	"database/sql"
	"log"

	"github.com/akinalp/mirage/config"
	"github.com/akinalp/mirage/pkg/email"
	"github.com/akinalp/mirage/pkg/ratelimit"
	"github.com/akinalp/mirage/services"
	"github.com/akinalp/mirage/store"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth  services.AuthService
	User  services.UserService
	Image services.ImageService
}

// RateLimiters, rate limiter instance'larını tutan container.
type RateLimiters struct {
	Login *ratelimit.LoginRateLimiter
}

// initServices, tüm service'leri ve rate limiter'ları oluşturur.
//
// sessions, main.go'da store.Connect ile açılmış canlı bağlantıdır —
// bağlantı kurulamadıysa buraya hiç gelinmez (fatal).
func initServices(db *sql.DB, repos *Repositories, sessions store.SessionStore, cfg *config.Config) (*Services, *RateLimiters) {
	// ─── Email service (opsiyonel) ───
	var emailSender email.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		emailSender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
		log.Printf("[main] email service enabled (from=%s)", cfg.Email.FromEmail)
	} else {
		log.Printf("[main] RESEND_API_KEY not set, password reset emails disabled")
	}

	svcs := &Services{
		Auth: services.NewAuthService(
			repos.User, repos.ResetToken, sessions, emailSender,
			cfg.API.SecretKey, cfg.API.TokenTimeout,
		),
		User:  services.NewUserService(db, repos.User, repos.Profile),
		Image: services.NewImageService(cfg.API.DeepfaceURL(), cfg.API.KandinskyURL()),
	}

	limiters := &RateLimiters{
		Login: ratelimit.NewLoginRateLimiter(cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow),
	}

	return svcs, limiters
}
