// Package repository, veritabanı erişim katmanını tanımlar.
//
// Repository Pattern:
// Veritabanı işlemlerini (CRUD) soyutlayan bir tasarım kalıbıdır.
// Service katmanı doğrudan SQL yazmaz — repository interface'i üzerinden çalışır.
//
// Neden interface?
// 1. Test: Mock repository yazarak DB olmadan test edebilirsin
// 2. Esneklik: SQLite'tan başka bir DB'ye geçiş sadece yeni implementasyon ister
// 3. Dependency Inversion: Service, concrete struct'a değil interface'e bağımlı
//
// Go'da interface "implicit"tır — struct, interface'deki tüm method'ları
// implement ediyorsa otomatik olarak o interface'i sağlar.
package repository

import (
	"context"

	"github.com/akinalp/mirage/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
//
// Kullanıcılar dış dünyaya username ile açılır — GetByUsername login ve
// tüm /me endpoint'lerinin ana sorgusudur. ID sadece iç FK ilişkileri
// (profiles, password_reset_tokens) için kullanılır.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	// Update, username/email/password_hash alanlarını günceller.
	// Username değişebilir — caller yeni username ile devam etmelidir.
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error
	// DeleteByUsername, kullanıcıyı siler. FK cascade ile profili ve
	// reset token'ları da silinir.
	DeleteByUsername(ctx context.Context, username string) error
}
