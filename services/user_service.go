package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/akinalp/mirage/database"
	"github.com/akinalp/mirage/models"
	"github.com/akinalp/mirage/pkg"
	"github.com/akinalp/mirage/pkg/crypto"
	"github.com/akinalp/mirage/repository"
)

// UserService, kullanıcı ve profil yönetimi iş kuralları.
type UserService interface {
	// Register, yeni kullanıcı + boş profil kaydını TEK transaction'da
	// oluşturur. Kullanıcı adı veya email kullanımdaysa pkg.ErrAlreadyExists.
	Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)

	// GetByUsername, kullanıcı kaydını getirir.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Update, kullanıcının kendi hesabını kısmi günceller (nil alan = dokunma).
	Update(ctx context.Context, username string, req *models.UpdateUserRequest) (*models.User, error)

	// Delete, hesabı siler. Profil FK cascade ile birlikte gider.
	Delete(ctx context.Context, username string) error

	// GetProfile, kullanıcının profilini getirir.
	GetProfile(ctx context.Context, username string) (*models.Profile, error)

	// UpdateProfile, profili kısmi günceller.
	UpdateProfile(ctx context.Context, username string, req *models.ProfileRequest) (*models.Profile, error)

	// ListUsers, tüm kullanıcıları döner (yalnızca admin).
	ListUsers(ctx context.Context) ([]models.User, error)

	// ListProfiles, tüm profilleri döner (yalnızca admin).
	ListProfiles(ctx context.Context) ([]models.Profile, error)

	// EnsureAdmin, konfigürasyondaki admin hesabını yoksa oluşturur.
	// Idempotent — her başlangıçta güvenle çağrılır.
	EnsureAdmin(ctx context.Context, username, password string) error
}

type userService struct {
	db          *sql.DB
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

func NewUserService(db *sql.DB, userRepo repository.UserRepository, profileRepo repository.ProfileRepository) UserService {
	return &userService{db: db, userRepo: userRepo, profileRepo: profileRepo}
}

// Register, kullanıcı + profil kaydını atomik oluşturur.
//
// İki INSERT tek transaction'dadır: profil insert'i patlarsa kullanıcı
// kaydı da geri alınır. "Profilsiz kullanıcı" diye bir ara durum yoktur.
func (s *userService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUsers,
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txUserRepo := repository.NewSQLiteUserRepo(tx)
		txProfileRepo := repository.NewSQLiteProfileRepo(tx)

		if err := txUserRepo.Create(ctx, user); err != nil {
			return err // ErrAlreadyExists olabilir
		}
		return txProfileRepo.Create(ctx, &models.Profile{UserID: user.ID})
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// Update, kısmi güncelleme yapar: yalnızca gönderilen (non-nil) alanlar değişir.
func (s *userService) Update(ctx context.Context, username string, req *models.UpdateUserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	return s.userRepo.DeleteByUsername(ctx, username)
}

func (s *userService) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUserID(ctx, user.ID)
}

func (s *userService) UpdateProfile(ctx context.Context, username string, req *models.ProfileRequest) (*models.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAll(ctx)
}

func (s *userService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	return s.profileRepo.GetAll(ctx)
}

// EnsureAdmin, admin hesabını bootstrap eder.
//
// Migration'a gömmek yerine kod tarafında yapılır: admin şifresi
// environment'tan gelir, SQL dosyasına yazılamaz. Hesap zaten varsa
// hiçbir şey yapılmaz — şifre değişikliği mevcut hesabı ezmez.
func (s *userService) EnsureAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		log.Printf("[users] ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil // zaten var
	}
	if !errors.Is(err, pkg.ErrNotFound) {
		return err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     username,
		Email:        username + "@mirage.local",
		PasswordHash: hash,
		Role:         models.RoleAdmins,
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txUserRepo := repository.NewSQLiteUserRepo(tx)
		txProfileRepo := repository.NewSQLiteProfileRepo(tx)

		if err := txUserRepo.Create(ctx, admin); err != nil {
			return err
		}
		return txProfileRepo.Create(ctx, &models.Profile{UserID: admin.ID})
	})
	if err != nil {
		return err
	}

	log.Printf("[users] admin account %q created", username)
	return nil
}
