package repository

import (
	"context"
	"time"

	"github.com/akinalp/mirage/models"
)

// ResetTokenRepository, şifre sıfırlama token'larının saklanması.
// Token'ın kendisi asla saklanmaz — sadece SHA-256 hash'i (TokenHash).
type ResetTokenRepository interface {
	// Create, yeni sıfırlama token kaydı oluşturur.
	Create(ctx context.Context, token *models.PasswordResetToken) error

	// GetByTokenHash, hash'e göre token kaydını getirir.
	// Kayıt yoksa pkg.ErrNotFound döner — süresi dolmuş kayıtlar da döner,
	// süre kontrolü service katmanının işidir.
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)

	// GetLatestByUserID, kullanıcının en son oluşturulan token kaydını getirir.
	// Cooldown kontrolü için kullanılır.
	GetLatestByUserID(ctx context.Context, userID string) (*models.PasswordResetToken, error)

	// DeleteByUserID, kullanıcının tüm sıfırlama token'larını siler.
	// Şifre başarıyla sıfırlandığında çağrılır.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired, süresi geçmiş tüm token'ları temizler.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
