// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern nedir?
// Handler (HTTP) ile Repository (DB) arasında oturan katmandır.
// Tüm iş kuralları burada yaşar:
//   - Şifre hash'leme ve doğrulama
//   - JWT token oluşturma / doğrulama
//   - Session store kayıtları (login/logout)
//   - Inference backend proxy mantığı
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz — Repository interface'i kullanır.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/akinalp/mirage/models"
	"github.com/akinalp/mirage/pkg"
	"github.com/akinalp/mirage/pkg/crypto"
	"github.com/akinalp/mirage/pkg/email"
	"github.com/akinalp/mirage/repository"
	"github.com/akinalp/mirage/store"
)

// resetTokenTTL, şifre sıfırlama linkinin geçerlilik süresi.
const resetTokenTTL = 20 * time.Minute

// resetCooldown, iki forgot-password isteği arasındaki minimum süre.
// Email spam'ini ve Resend kotasının tüketilmesini engeller.
const resetCooldown = 90 * time.Second

// AuthService interface'i — dışarıya açık API.
// Handler bu interface'e bağımlıdır, concrete struct'a değil.
type AuthService interface {
	// Login, kullanıcı adı/şifre doğrular, access token üretir ve
	// session store'a kaydeder.
	Login(ctx context.Context, req *models.LoginRequest) (*models.Token, error)

	// Logout, token'ı session store'dan siler ve sahibinin kullanıcı
	// adını döner. Kayıt zaten yoksa hata DÖNMEZ — tekrarlanan logout
	// da başarılıdır, yalnızca username boş kalır.
	Logout(ctx context.Context, token string) (string, error)

	// Authenticate, bearer token'ı uçtan uca doğrular: JWT imza + expiry,
	// ardından session store kaydı. İkisi birden geçerse AuthUser döner.
	Authenticate(ctx context.Context, token string) (*models.AuthUser, error)

	// ValidateAccessToken, yalnızca JWT katmanını doğrular (imza, expiry,
	// sub claim'i). Session store'a BAKMAZ — Authenticate'in ilk yarısıdır.
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)

	// RevokeToken, verilen token'ı iptal eder (hesap silme akışında
	// çağrılır; token yoksa sessizce geçer).
	RevokeToken(ctx context.Context, token string)

	// ForgotPassword, email'e şifre sıfırlama linki gönderir.
	// Cooldown aktifse kalan saniyeyi döner (0 = email gönderildi).
	// Email kayıtlı değilse de hata DÖNMEZ — hesap varlığı sızdırılmaz.
	ForgotPassword(ctx context.Context, emailAddr string) (int, error)

	// ResetPassword, email'deki token ile yeni şifre belirler.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// authService, AuthService interface'inin implementasyonu.
type authService struct {
	userRepo     repository.UserRepository
	resetRepo    repository.ResetTokenRepository
	sessions     store.SessionStore
	emailSender  email.EmailSender
	jwtSecret    []byte
	tokenTimeout time.Duration
}

// NewAuthService, constructor.
// emailSender nil olabilir — o durumda forgot-password linki sadece loglanmaz,
// akış yine enumeration-safe cevap döner (development ortamı).
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.ResetTokenRepository,
	sessions store.SessionStore,
	emailSender email.EmailSender,
	jwtSecret string,
	tokenTimeout time.Duration,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		resetRepo:    resetRepo,
		sessions:     sessions,
		emailSender:  emailSender,
		jwtSecret:    []byte(jwtSecret),
		tokenTimeout: tokenTimeout,
	}
}

// Login, kullanıcı girişi yapar.
//
// Başarısızlık nedenleri (yanlış kullanıcı adı / yanlış şifre) dışarıya
// AYNI mesajla döner — saldırgan hangi kısmın yanlış olduğunu öğrenemez.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.Token, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Kullanıcı yokken de bcrypt maliyeti ödenir — cevap süresi
			// "kullanıcı var mı" sorusuna cevap vermesin.
			crypto.VerifyPassword(req.Password, dummyHash)
			return nil, fmt.Errorf("%w: incorrect username or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) ||
		!crypto.VerifyUsername(req.Username, user.Username) {
		return nil, fmt.Errorf("%w: incorrect username or password", pkg.ErrUnauthorized)
	}

	tokenString, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	// Store kaydı token'ı "aktif" yapar — bu adım başarısızsa login de
	// başarısızdır, aksi halde logout edilemeyen bir token dağıtmış oluruz.
	if err := s.sessions.Add(ctx, tokenString, user.Username); err != nil {
		return nil, err
	}

	return &models.Token{AccessToken: tokenString, TokenType: "bearer"}, nil
}

// Logout, token'ı session store'dan siler.
func (s *authService) Logout(ctx context.Context, token string) (string, error) {
	username, err := s.sessions.Remove(ctx, token)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Kayıt yok — middleware'den sonra yarış durumunda olabilir
			// (aynı token'la eşzamanlı iki logout). İkincisi de başarılıdır.
			return "", nil
		}
		return "", err
	}
	return username, nil
}

// Authenticate, iki aşamalı doğrulama yapar.
//
// 1. JWT: imza bizim SECRET_KEY ile mi atılmış, süresi geçmiş mi?
// 2. Session store: token logout EDİLMEMİŞ mi?
//
// Store'a ulaşılamazsa pkg.ErrStoreUnavailable döner — bu 401 DEĞİL
// 500'dür, Redis çökmesi kullanıcıyı yetkisiz yapmaz.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.AuthUser, error) {
	claims, err := s.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	username, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: session not found", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	// Store'daki kullanıcı adı ile token'daki sub claim'i eşleşmeli.
	// Eşleşmiyorsa store bozulmuş demektir — token'a güvenilmez.
	if !crypto.VerifyUsername(username, claims.Subject) {
		return nil, fmt.Errorf("%w: session mismatch", pkg.ErrUnauthorized)
	}

	return &models.AuthUser{
		Username: claims.Subject,
		Role:     claims.Role,
		Token:    token,
	}, nil
}

// ValidateAccessToken, JWT'yi doğrular ve claims'i döner.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		// alg header'ına güvenme: yalnızca HMAC ailesi kabul edilir.
		// "alg: none" veya RS256 ile imzalanmış sahte token'lar burada düşer.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", pkg.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token missing subject", pkg.ErrUnauthorized)
	}

	return claims, nil
}

// RevokeToken, token'ı session store'dan siler, sonucu umursamaz.
// Hesap silme akışında kullanılır: kullanıcı zaten gidiyor, store hatası
// akışı durdurmamalı.
func (s *authService) RevokeToken(ctx context.Context, token string) {
	if _, err := s.sessions.Remove(ctx, token); err != nil && !errors.Is(err, pkg.ErrNotFound) {
		log.Printf("[auth] failed to revoke token: %v", err)
	}
}

// ForgotPassword, şifre sıfırlama akışını başlatır.
//
// Dönen int cooldown'dur (saniye): 0 ise email gönderildi (veya hesap yok —
// ikisi aynı görünür), >0 ise son istekten bu yana 90 saniye geçmemiş.
func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) (int, error) {
	// Fırsatçı temizlik: ayrı bir janitor goroutine yerine süresi geçmiş
	// token'lar her yeni istekte süpürülür. Expired bir token en az 20
	// dakikalıktır, cooldown ise son 90 saniyeye bakar — temizlik cooldown
	// kararını etkileyemez.
	if n, err := s.resetRepo.DeleteExpired(ctx, time.Now()); err != nil {
		log.Printf("[auth] failed to sweep expired reset tokens: %v", err)
	} else if n > 0 {
		log.Printf("[auth] swept %d expired reset tokens", n)
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Hesap yok — ama bunu söylemeyiz. Başarılı gibi dön.
			return 0, nil
		}
		return 0, err
	}

	// Cooldown: son token 90 saniyeden yeniyse yenisini üretme
	if last, err := s.resetRepo.GetLatestByUserID(ctx, user.ID); err == nil {
		elapsed := time.Since(last.CreatedAt)
		if elapsed < resetCooldown {
			return int((resetCooldown - elapsed).Seconds()) + 1, nil
		}
	} else if !errors.Is(err, pkg.ErrNotFound) {
		return 0, err
	}

	// Plaintext token yalnızca email'e gider — DB'ye SHA-256 hash'i yazılır
	plainToken := uuid.NewString()
	record := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(plainToken),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetRepo.Create(ctx, record); err != nil {
		return 0, err
	}

	if s.emailSender == nil {
		log.Printf("[auth] email sender not configured, skipping reset email for %s", user.Username)
		return 0, nil
	}

	if err := s.emailSender.SendPasswordReset(ctx, user.Email, plainToken); err != nil {
		// Email sağlayıcı hatası kullanıcıya sızmamalı — logla ve
		// enumeration-safe cevabı koru.
		log.Printf("[auth] failed to send reset email: %v", err)
	}

	return 0, nil
}

// ResetPassword, geçerli bir sıfırlama token'ı ile şifreyi değiştirir.
// Başarıda kullanıcının TÜM sıfırlama token'ları silinir — link tek kullanımlık.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	record, err := s.resetRepo.GetByTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
		}
		return err
	}

	if time.Now().After(record.ExpiresAt) {
		return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
	}

	newHash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, record.UserID, newHash); err != nil {
		return err
	}

	return s.resetRepo.DeleteByUserID(ctx, record.UserID)
}

// ─── Private Helpers ───

// dummyHash, var olmayan kullanıcılar için harcanan sahte bcrypt hash'i
// ("timing oracle" kapatma). Geçerli bir hash'tir ama şifresi bilinmez.
var dummyHash = func() string {
	h, _ := crypto.HashPassword(uuid.NewString())
	return h
}()

// issueToken, HS256 imzalı access token üretir.
// sub = username, role = kullanıcının rolü, exp = now + TOKEN_TIMEOUT.
func (s *authService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTimeout)),
			// jti olmadan aynı saniyedeki iki login AYNI token'ı üretirdi
			// (HS256 deterministiktir) — biri logout olunca diğeri de düşerdi.
			ID: uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

// hashResetToken, sıfırlama token'ının DB'de saklanan SHA-256 hex hash'i.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
