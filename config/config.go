// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar — her yerde ayrı ayrı
// os.Getenv() çağırmak yerine tek bir Config nesnesi taşırız.
// SECRET_KEY process başında bir kez yüklenir, runtime'da rotate edilmez.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — her struct tek bir concern'ü temsil eder.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	API       APIConfig
	Admin     AdminConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/mirage.db)
}

// RedisConfig, session store olarak kullanılan Redis'in ayarları.
type RedisConfig struct {
	Host string
	Port int
	DB   int // Redis database index'i (0-15)
}

// APIConfig, token imzalama ve inference backend adresleri.
type APIConfig struct {
	SecretKey      string        // Token imzalama anahtarı — GİZLİ TUTULMALI
	TokenTimeout   time.Duration // Access token ömrü (varsayılan: 600s)
	DeepfaceHost   string
	DeepfacePort   int
	KandinskyHost  string
	KandinskyPort  int
	UploadMaxSize  int64 // Multipart body limiti, byte (varsayılan: 25MB)
}

// AdminConfig, başlangıçta oluşturulan admin hesabının bilgileri.
type AdminConfig struct {
	User     string
	Password string
}

// EmailConfig, şifre sıfırlama emaili için Resend ayarları.
// APIKey boşsa email gönderimi devre dışı kalır (forgot-password 500 dönmez,
// sessizce loglanır — development ortamı için).
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AppURL       string
}

// RateLimitConfig, login brute-force koruması ayarları.
type RateLimitConfig struct {
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
// Production'da bu dosya olmaz, gerçek env variable'lar kullanılır.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisPort, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	tokenTimeout, err := strconv.Atoi(getEnv("TOKEN_TIMEOUT_SECONDS", "600"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TIMEOUT_SECONDS: %w", err)
	}

	deepfacePort, err := strconv.Atoi(getEnv("DEEPFACE_PORT", "8001"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEEPFACE_PORT: %w", err)
	}

	kandinskyPort, err := strconv.Atoi(getEnv("KANDINSKY_PORT", "8002"))
	if err != nil {
		return nil, fmt.Errorf("invalid KANDINSKY_PORT: %w", err)
	}

	maxSize, err := strconv.ParseInt(getEnv("UPLOAD_MAX_SIZE", "26214400"), 10, 64) // 25MB
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_SIZE: %w", err)
	}

	loginAttempts, err := strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %w", err)
	}

	loginWindow, err := strconv.Atoi(getEnv("LOGIN_WINDOW_SECONDS", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_WINDOW_SECONDS: %w", err)
	}

	secretKey := getEnv("SECRET_KEY", "")
	if secretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/mirage.db"),
		},
		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: redisPort,
			DB:   redisDB,
		},
		API: APIConfig{
			SecretKey:     secretKey,
			TokenTimeout:  time.Duration(tokenTimeout) * time.Second,
			DeepfaceHost:  getEnv("DEEPFACE_HOST", "localhost"),
			DeepfacePort:  deepfacePort,
			KandinskyHost: getEnv("KANDINSKY_HOST", "localhost"),
			KandinskyPort: kandinskyPort,
			UploadMaxSize: maxSize,
		},
		Admin: AdminConfig{
			User:     getEnv("ADMIN_USER", "admin"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("EMAIL_FROM", "noreply@mirage.local"),
			AppURL:       getEnv("APP_URL", "http://localhost:8000"),
		},
		RateLimit: RateLimitConfig{
			LoginMaxAttempts: loginAttempts,
			LoginWindow:      time.Duration(loginWindow) * time.Second,
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:8000").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr, Redis server adresini döner (ör: "localhost:6379").
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DeepfaceURL, DeepFace backend'inin base URL'ini döner.
func (c *APIConfig) DeepfaceURL() string {
	return fmt.Sprintf("http://%s:%d", c.DeepfaceHost, c.DeepfacePort)
}

// KandinskyURL, Kandinsky backend'inin base URL'ini döner.
func (c *APIConfig) KandinskyURL() string {
	return fmt.Sprintf("http://%s:%d", c.KandinskyHost, c.KandinskyPort)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
