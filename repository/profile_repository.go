package repository

import (
	"context"

	"github.com/akinalp/mirage/models"
)

// ProfileRepository, profil verisine erişim sözleşmesi.
// Her kullanıcının tam olarak bir profili vardır (user_id UNIQUE).
type ProfileRepository interface {
	// Create, yeni profil kaydı oluşturur.
	Create(ctx context.Context, profile *models.Profile) error

	// GetByUserID, kullanıcı ID'sine göre profili getirir.
	// Profil yoksa pkg.ErrNotFound döner.
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)

	// Update, profili günceller. Profil yoksa pkg.ErrNotFound döner.
	Update(ctx context.Context, profile *models.Profile) error

	// GetAll, tüm profilleri döner (admin listesi için).
	GetAll(ctx context.Context) ([]models.Profile, error)
}
