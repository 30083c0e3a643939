package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/mirage/pkg"
)

// newTestStore, miniredis üzerinde çalışan bir SessionStore kurar.
// Gerçek Redis process'i gerekmez — testler izole ve hızlı çalışır.
func newTestStore(t *testing.T) (*miniredis.Miniredis, SessionStore) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "miniredis.Run failed")
	t.Cleanup(mr.Close)

	s, err := Connect(mr.Addr(), 0)
	require.NoError(t, err, "Connect failed")
	t.Cleanup(func() { _ = s.Close() })

	return mr, s
}

func TestConnect_UnreachableServer(t *testing.T) {
	// Kimsenin dinlemediği bir port — PING 3sn içinde başarısız olmalı
	_, err := Connect("127.0.0.1:1", 0)
	require.Error(t, err)
	require.ErrorIs(t, err, pkg.ErrStoreUnavailable)
}

func TestAddAndGet(t *testing.T) {
	_, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "token-1", "alice"))

	username, err := s.Get(ctx, "token-1")
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestGet_MissingToken(t *testing.T) {
	_, s := newTestStore(t)

	_, err := s.Get(context.Background(), "no-such-token")
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestAdd_OverwritesExisting(t *testing.T) {
	_, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "token-1", "alice"))
	require.NoError(t, s.Add(ctx, "token-1", "bob"))

	username, err := s.Get(ctx, "token-1")
	require.NoError(t, err)
	require.Equal(t, "bob", username)
}

func TestRemove_ReturnsOwnerAndDeletes(t *testing.T) {
	_, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "token-1", "alice"))

	username, err := s.Remove(ctx, "token-1")
	require.NoError(t, err)
	require.Equal(t, "alice", username)

	// Kayıt gitti — ikinci Get bulamamalı
	_, err = s.Get(ctx, "token-1")
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestRemove_MissingToken(t *testing.T) {
	_, s := newTestStore(t)

	_, err := s.Remove(context.Background(), "no-such-token")
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestRemove_OnlyTargetToken(t *testing.T) {
	// Aynı kullanıcının iki ayrı oturumu: birinin logout'u diğerini düşürmez
	_, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "token-1", "alice"))
	require.NoError(t, s.Add(ctx, "token-2", "alice"))

	_, err := s.Remove(ctx, "token-1")
	require.NoError(t, err)

	username, err := s.Get(ctx, "token-2")
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestStoreDown_IsUnavailableNotNotFound(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "token-1", "alice"))

	// Redis çöktü: hata "yetkisiz" DEĞİL "store'a ulaşılamadı" olmalı
	mr.Close()

	_, err := s.Get(ctx, "token-1")
	require.ErrorIs(t, err, pkg.ErrStoreUnavailable)
	require.NotErrorIs(t, err, pkg.ErrNotFound)

	err = s.Add(ctx, "token-2", "bob")
	require.ErrorIs(t, err, pkg.ErrStoreUnavailable)

	_, err = s.Remove(ctx, "token-1")
	require.ErrorIs(t, err, pkg.ErrStoreUnavailable)
}
