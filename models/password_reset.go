package models

import "time"

// PasswordResetToken, şifre sıfırlama token kaydı.
//
// Plaintext token yalnızca emaile gömülür — DB'de SHA-256 hash'i saklanır.
// DB sızsa bile saldırgan hash'ten token'ı geri üretemez.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
