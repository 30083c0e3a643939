// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Veritabanındaki bir tablonun Go karşılığıdır.
// Aynı zamanda API'den gelen/giden verilerin şeklini de belirler.
//
// `json:"username"` gibi tag'ler struct field'larının JSON'a nasıl
// serialize/deserialize edileceğini belirler.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Role, kullanıcının yetki seviyesini temsil eder.
// Go'da enum yoktur — typed constant'lar kullanılır.
// DB'deki CHECK constraint ile aynı iki değere sınırlıdır.
type Role string

const (
	// RoleUsers, sıradan kullanıcı.
	RoleUsers Role = "users"
	// RoleAdmins, yönetici — admin-gated endpoint'lere erişebilir.
	RoleAdmins Role = "admins"
)

// Valid, rolün bilinen bir değer olup olmadığını kontrol eder.
func (r Role) Valid() bool {
	return r == RoleUsers || r == RoleAdmins
}

// User, bir kullanıcıyı temsil eder.
type User struct {
	ID           string    `json:"-"` // İç anahtar — API dışarıya username'i açar
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // json:"-" → API response'a DAHİL ETME (güvenlik!)
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// emailRegex, basit email format kontrolü.
// Tam RFC 5322 validasyonu bilinçli olarak yapılmaz — gerçek doğrulama
// zaten şifre sıfırlama emailinin ulaşıp ulaşmamasıyla olur.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CreateUserRequest, kayıt olurken client'tan gelen veri.
// PasswordHash yerine Password alırız — hash'leme service katmanında yapılır.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Validate, CreateUserRequest'in geçerli olup olmadığını kontrol eder.
// Kurallar:
//   - Username: 3-32 karakter, alfanumerik + alt çizgi
//   - Password: minimum 8 karakter
//   - Email: basit format kontrolü
func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	usernameLen := utf8.RuneCountInString(r.Username)
	if usernameLen < 3 || usernameLen > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}

	for _, ch := range r.Username {
		if !isValidUsernameChar(ch) {
			return fmt.Errorf("username can only contain letters, numbers, and underscores")
		}
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	r.Email = strings.TrimSpace(r.Email)
	if !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// LoginRequest, giriş yaparken client'tan gelen veri (form body).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// UpdateUserRequest, kullanıcı bilgisi güncellemesi için.
// Pointer field'lar kısmi güncellemeyi sağlar: nil → "bu alanı değiştirme",
// non-nil → yeni değer. Password verilirse yeniden hash'lenir.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Validate, verilen alanları CreateUserRequest ile aynı kurallara göre
// kontrol eder. Hiçbir alan verilmemişse güncelleme anlamsızdır → hata.
func (r *UpdateUserRequest) Validate() error {
	if r.Username == nil && r.Email == nil && r.Password == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	if r.Username != nil {
		trimmed := strings.TrimSpace(*r.Username)
		r.Username = &trimmed
		l := utf8.RuneCountInString(trimmed)
		if l < 3 || l > 32 {
			return fmt.Errorf("username must be between 3 and 32 characters")
		}
		for _, ch := range trimmed {
			if !isValidUsernameChar(ch) {
				return fmt.Errorf("username can only contain letters, numbers, and underscores")
			}
		}
	}

	if r.Email != nil {
		trimmed := strings.TrimSpace(*r.Email)
		r.Email = &trimmed
		if !emailRegex.MatchString(trimmed) {
			return fmt.Errorf("invalid email format")
		}
	}

	if r.Password != nil && utf8.RuneCountInString(*r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	return nil
}

// ForgotPasswordRequest, şifre sıfırlama isteği.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate, email format kontrolü yapar.
func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ResetPasswordRequest, emaildeki token ile şifre sıfırlama isteği.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate, token ve yeni şifreyi kontrol eder.
func (r *ResetPasswordRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return fmt.Errorf("token is required")
	}
	if utf8.RuneCountInString(r.NewPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// isValidUsernameChar, username'de izin verilen karakterleri kontrol eder.
func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
