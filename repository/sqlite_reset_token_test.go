package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/mirage/models"
	"github.com/akinalp/mirage/pkg"
)

func TestResetTokenCreateAndGet(t *testing.T) {
	db := setupDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	resetRepo := NewSQLiteResetTokenRepo(db.Conn)
	ctx := context.Background()

	user := newUser("alice", "alice@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: "abc123hash",
		ExpiresAt: time.Now().Add(20 * time.Minute),
	}
	require.NoError(t, resetRepo.Create(ctx, token))
	require.NotEmpty(t, token.ID)
	require.False(t, token.CreatedAt.IsZero())

	got, err := resetRepo.GetByTokenHash(ctx, "abc123hash")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.UserID)

	_, err = resetRepo.GetByTokenHash(ctx, "no-such-hash")
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestResetTokenGetLatest(t *testing.T) {
	db := setupDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	resetRepo := NewSQLiteResetTokenRepo(db.Conn)
	ctx := context.Background()

	user := newUser("alice", "alice@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	_, err := resetRepo.GetLatestByUserID(ctx, user.ID)
	require.ErrorIs(t, err, pkg.ErrNotFound)

	older := &models.PasswordResetToken{UserID: user.ID, TokenHash: "older", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, resetRepo.Create(ctx, older))

	// created_at saniye çözünürlüklü — sıralamanın deterministik olması için
	// ikinci kaydın created_at'i ileri bir zamana yazılır
	newer := &models.PasswordResetToken{UserID: user.ID, TokenHash: "newer", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, resetRepo.Create(ctx, newer))
	_, err = db.Conn.ExecContext(ctx,
		`UPDATE password_reset_tokens SET created_at = ? WHERE id = ?`,
		time.Now().Add(time.Hour), newer.ID)
	require.NoError(t, err)

	latest, err := resetRepo.GetLatestByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "newer", latest.TokenHash)
}

func TestResetTokenDeleteByUserID(t *testing.T) {
	db := setupDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	resetRepo := NewSQLiteResetTokenRepo(db.Conn)
	ctx := context.Background()

	user := newUser("alice", "alice@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	for _, hash := range []string{"h1", "h2"} {
		require.NoError(t, resetRepo.Create(ctx, &models.PasswordResetToken{
			UserID: user.ID, TokenHash: hash, ExpiresAt: time.Now().Add(time.Minute),
		}))
	}

	require.NoError(t, resetRepo.DeleteByUserID(ctx, user.ID))

	_, err := resetRepo.GetByTokenHash(ctx, "h1")
	require.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = resetRepo.GetByTokenHash(ctx, "h2")
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestResetTokenDeleteExpired(t *testing.T) {
	db := setupDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	resetRepo := NewSQLiteResetTokenRepo(db.Conn)
	ctx := context.Background()

	user := newUser("alice", "alice@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	expired := &models.PasswordResetToken{UserID: user.ID, TokenHash: "expired", ExpiresAt: time.Now().Add(-time.Minute)}
	live := &models.PasswordResetToken{UserID: user.ID, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, resetRepo.Create(ctx, expired))
	require.NoError(t, resetRepo.Create(ctx, live))

	deleted, err := resetRepo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, err = resetRepo.GetByTokenHash(ctx, "live")
	require.NoError(t, err)
}
