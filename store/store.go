// Package store, aktif oturumların (token → kullanıcı adı) tutulduğu
// Session Store katmanıdır.
//
// JWT tek başına yeterli değildir: imzası geçerli ama logout edilmiş bir
// token'ı reddedebilmek için sunucu tarafında bir kayıt gerekir. Bu kayıt
// Redis'te tutulur — logout, ilgili anahtarı silmekten ibarettir.
//
// Anahtar TOKEN'dır, kullanıcı adı değil: aynı kullanıcının iki ayrı
// login'i iki ayrı anahtar üretir, biri logout olunca diğeri çalışmaya
// devam eder.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akinalp/mirage/pkg"
)

// SessionStore, aktif oturum kayıtlarına erişim sözleşmesi.
//
// Hata ayrımı kritik: kayıt yoksa pkg.ErrNotFound (→ 401), store'a
// ulaşılamıyorsa pkg.ErrStoreUnavailable (→ 500). İkisi asla
// karıştırılmamalı — Redis çökmesi kullanıcıyı "yetkisiz" yapmaz.
type SessionStore interface {
	// Add, token → kullanıcı adı kaydı ekler. Aynı token tekrar
	// eklenirse üzerine yazar.
	Add(ctx context.Context, token, username string) error

	// Get, token'a karşılık gelen kullanıcı adını döner.
	// Kayıt yoksa pkg.ErrNotFound.
	Get(ctx context.Context, token string) (string, error)

	// Remove, kaydı siler ve silinen kullanıcı adını döner.
	// Kayıt yoksa pkg.ErrNotFound — tekrarlanan logout güvenlidir.
	Remove(ctx context.Context, token string) (string, error)

	// Close, store bağlantısını kapatır.
	Close() error
}

// redisSessionStore, SessionStore'un go-redis implementasyonu.
type redisSessionStore struct {
	client *redis.Client
}

// Connect, Redis'e bağlanır ve PING ile bağlantıyı doğrular.
// 3 saniye içinde cevap gelmezse hata döner — uygulama başlangıcında
// çağrılır ve başarısızlık fatal'dır: session store olmadan hiçbir
// korumalı endpoint güvenli çalışamaz.
func Connect(addr string, db int) (SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis ping failed: %v", pkg.ErrStoreUnavailable, err)
	}

	return &redisSessionStore{client: client}, nil
}

func (s *redisSessionStore) Add(ctx context.Context, token, username string) error {
	// TTL yok: token'ın ömrü JWT exp claim'i ile sınırlı, store kaydı
	// sadece revocation için var. Expired bir token store'da kalsa bile
	// JWT doğrulaması onu zaten reddeder.
	if err := s.client.Set(ctx, token, username, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", pkg.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *redisSessionStore) Get(ctx context.Context, token string) (string, error) {
	username, err := s.client.Get(ctx, token).Result()
	if errors.Is(err, redis.Nil) {
		return "", pkg.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", pkg.ErrStoreUnavailable, err)
	}
	return username, nil
}

func (s *redisSessionStore) Remove(ctx context.Context, token string) (string, error) {
	// GET + DEL: silinen kaydın kullanıcı adını logout logu için döneriz.
	// İki adım arasında yarış teorik olarak mümkün ama zararsız —
	// en kötü ihtimalle iki logout da "başarılı" döner.
	username, err := s.client.Get(ctx, token).Result()
	if errors.Is(err, redis.Nil) {
		return "", pkg.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", pkg.ErrStoreUnavailable, err)
	}

	if err := s.client.Del(ctx, token).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", pkg.ErrStoreUnavailable, err)
	}

	return username, nil
}

func (s *redisSessionStore) Close() error {
	return s.client.Close()
}
