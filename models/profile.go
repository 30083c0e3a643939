package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Profile, kullanıcının profil bilgilerini temsil eder.
// Her kullanıcının en fazla bir profili vardır (user_id UNIQUE).
// Kullanıcı silinince FK cascade ile profili de silinir.
type Profile struct {
	ID        string    `json:"-"`
	UserID    string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileRequest, profil oluşturma/güncelleme için client'tan gelen veri.
// Pointer field'lar kısmi güncellemeyi sağlar: nil olan alan değiştirilmez.
type ProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// Validate, verilen alanları kontrol eder.
// Kurallar:
//   - FirstName / LastName: max 30 karakter
//   - Phone: 5-15 karakter, '+' ile başlayan uluslararası format
func (r *ProfileRequest) Validate() error {
	if r.FirstName != nil && utf8.RuneCountInString(*r.FirstName) > 30 {
		return fmt.Errorf("first name must be at most 30 characters")
	}
	if r.LastName != nil && utf8.RuneCountInString(*r.LastName) > 30 {
		return fmt.Errorf("last name must be at most 30 characters")
	}
	if r.Phone != nil {
		phone := strings.TrimSpace(*r.Phone)
		r.Phone = &phone
		l := utf8.RuneCountInString(phone)
		if l < 5 || l > 15 {
			return fmt.Errorf("phone must be between 5 and 15 characters")
		}
		if !strings.HasPrefix(phone, "+") {
			return fmt.Errorf("phone must start with '+' (international format)")
		}
		for _, ch := range phone[1:] {
			if ch < '0' || ch > '9' {
				return fmt.Errorf("phone can only contain digits after '+'")
			}
		}
	}
	return nil
}
