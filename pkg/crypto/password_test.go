package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.True(t, VerifyPassword("correct horse battery staple", hash))
	require.False(t, VerifyPassword("wrong password", hash))
	require.False(t, VerifyPassword("", hash))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	// Aynı şifre iki kez hash'lenince iki FARKLI hash çıkmalı (random salt)
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
	require.True(t, VerifyPassword("same-password", h1))
	require.True(t, VerifyPassword("same-password", h2))
}

func TestVerifyPassword_GarbageHash(t *testing.T) {
	require.False(t, VerifyPassword("anything", "not-a-bcrypt-hash"))
}

func TestVerifyUsername(t *testing.T) {
	require.True(t, VerifyUsername("alice", "alice"))
	require.False(t, VerifyUsername("alice", "bob"))
	require.False(t, VerifyUsername("alice", "Alice"))
	require.False(t, VerifyUsername("alice", "alicex"))
	require.True(t, VerifyUsername("", ""))
}
