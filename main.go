// Package main, mirage gateway uygulamasının giriş noktasıdır.
//
// mirage, iki inference backend'inin (DeepFace yüz analizi + Kandinsky
// görüntü üretimi) önünde duran kimlik doğrulamalı API gateway'idir:
// kullanıcı/profil kayıtlarını SQLite'ta, aktif oturumları Redis'te tutar,
// doğrulanmış istekleri backend'lere iletir.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Database'i başlat (embedded migration'lar ile)
//  3. Session store'a (Redis) bağlan — başarısızlık FATAL
//  4. Repository'leri oluştur (DB bağlantısı ile)
//  5. Service'leri oluştur (repository'ler + store ile)
//  6. Admin hesabını bootstrap et
//  7. Handler'ları oluştur (service'ler ile)
//  8. HTTP router'ı kur, route'ları bağla
//  9. CORS yapılandır
// 10. HTTP Server'ı başlat
// 11. Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/mirage/config"
	"github.com/akinalp/mirage/database"
	"github.com/akinalp/mirage/store"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] mirage gateway starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	db, err := database.New(cfg.Database.Path, database.MigrationsFS())
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Session Store (Redis) ───
	//
	// Bağlantı burada doğrulanır (PING, 3sn timeout). Başarısızlık fatal:
	// session store olmadan login/logout çalışamaz, korumalı endpoint'ler
	// güvenli karar veremez. "Sonra bağlanır" diye ayakta kalmak, tüm
	// auth kararlarını 500'e çevirmekten başka işe yaramaz.
	sessions, err := store.Connect(cfg.Redis.Addr(), cfg.Redis.DB)
	if err != nil {
		log.Fatalf("[main] failed to connect session store: %v", err)
	}
	defer sessions.Close()
	log.Printf("[main] session store connected (%s db=%d)", cfg.Redis.Addr(), cfg.Redis.DB)

	// ─── 4. Repository Layer ───
	repos := initRepositories(db.Conn)

	// ─── 5. Service Layer ───
	svcs, limiters := initServices(db.Conn, repos, sessions, cfg)
	defer limiters.Login.Stop()

	// ─── 6. Admin Bootstrap ───
	if err := svcs.User.EnsureAdmin(context.Background(), cfg.Admin.User, cfg.Admin.Password); err != nil {
		log.Fatalf("[main] failed to bootstrap admin account: %v", err)
	}

	// ─── 7. Handler Layer ───
	h := initHandlers(svcs, limiters, cfg)

	// ─── 8. HTTP Router ───
	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth)

	// ─── 9. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := corsHandler.Handler(mux)

	// ─── 10. HTTP Server ───
	//
	// WriteTimeout inference proxy'sinden uzun olmalı: Kandinsky bir
	// görüntüyü dakikaya yakın sürede üretebilir. Gateway timeout'u
	// backend timeout'undan (120s) kısa olursa istemci hep boş cevap görür.
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 11. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] gateway listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Yeni request kabul etmeyi durdur, mevcut request'lerin bitmesini
	// bekle. Timeout uzun: devam eden bir inference isteği yarıda kesilmesin.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] gateway stopped gracefully")
}
