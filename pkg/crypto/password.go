// Package crypto, şifre hash'leme ve doğrulama fonksiyonlarını barındırır.
//
// Neden ayrı paket?
// Şifre karşılaştırma mantığı hem AuthService (login) hem UserService
// (kayıt/güncelleme) tarafından kullanılır. Tek bir yerde toplanması
// hem tekrarı önler hem de bu fonksiyonların bağımsız test edilmesini sağlar.
package crypto

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost, bcrypt hash'leme maliyeti.
// Her artış hesaplama süresini ikiye katlar — 12, brute-force'u
// anlamlı derecede yavaşlatırken login gecikmesini kabul edilebilir tutar.
const bcryptCost = 12

// HashPassword, şifreyi bcrypt ile hash'ler.
//
// bcrypt her çağrıda rastgele salt üretir — aynı şifre için iki çağrı
// iki FARKLI hash üretir. Bu bilinçlidir: rainbow table saldırılarını
// engeller. Karşılaştırma her zaman VerifyPassword ile yapılmalıdır,
// hash'leri string olarak karşılaştırmak her zaman false verir.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword, plaintext şifrenin verilen bcrypt hash'inden üretilip
// üretilmediğini kontrol eder. Salt hash'in içinde gömülüdür — farklı
// salt/cost parametreleriyle üretilmiş hash'ler de doğru karşılaştırılır.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyUsername, iki kullanıcı adının birebir eşit olup olmadığını
// kontrol eder. subtle.ConstantTimeCompare kullanılır — karşılaştırma
// süresi eşleşen prefix uzunluğuna bağlı değildir (timing saldırısı
// yüzeyini küçültür). Uzunluklar farklıysa false döner.
func VerifyUsername(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
