package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, JWT token'ın içindeki veriler (payload).
//
// JWT (JSON Web Token): kimlik doğrulamak için kullanılan imzalanmış token.
// 3 parçadan oluşur: header.payload.signature
//
// Payload'da username (standart "sub" claim'i) ve rol bulunur.
// Server her request'te imzayı ve expiry'yi doğrular — ama tek başına bu
// yetmez: token'ın session store'da HALA aktif olması da gerekir
// (logout'un gerçekten erişimi kesmesini sağlayan şey budur).
//
// Bu struct models paketinde tanımlanır çünkü services ve middleware
// tarafından ortak kullanılır — circular dependency'yi önler.
type TokenClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Token, POST /login yanıtının body'si.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthUser, auth middleware'ın request context'ine eklediği kimlik bilgisi.
// Sadece gate'in doğruladığı alanları taşır — handler'lar tam User kaydına
// ihtiyaç duyarsa repository'den kendileri çeker.
type AuthUser struct {
	Username string
	Role     Role
	Token    string // Sunulan bearer token — logout ve hesap silme revoke için kullanır
}
