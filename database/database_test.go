package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestNew_AppliesMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath, MigrationsFS())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Uygulama tabloları oluşmuş olmalı
	for _, table := range []string{"users", "profiles", "password_reset_tokens"} {
		var name string
		err := db.Conn.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}

	// Foreign key pragma aktif olmalı
	var fk int
	require.NoError(t, db.Conn.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	require.Equal(t, 1, fk)
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath, MigrationsFS())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Aynı dosya üzerinde ikinci açılış: migration'lar atlanır, hata yok
	db, err = New(dbPath, MigrationsFS())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var count int
	require.NoError(t, db.Conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestRunMigrations_OrderAndTracking(t *testing.T) {
	// Migration'lar dosya adına göre sıralı çalışır: 002, 001'in
	// oluşturduğu tabloya kolon ekleyebilmeli
	migrations := fstest.MapFS{
		"001_create.sql": {Data: []byte(`CREATE TABLE widgets (id INTEGER PRIMARY KEY);`)},
		"002_alter.sql":  {Data: []byte(`ALTER TABLE widgets ADD COLUMN name TEXT;`)},
	}

	db, err := New(filepath.Join(t.TempDir(), "test.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Conn.Exec(`INSERT INTO widgets (id, name) VALUES (1, 'a')`)
	require.NoError(t, err)

	rows, err := db.Conn.Query(`SELECT filename FROM schema_migrations ORDER BY filename`)
	require.NoError(t, err)
	defer rows.Close()

	var applied []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		applied = append(applied, name)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"001_create.sql", "002_alter.sql"}, applied)
}

func TestRunMigrations_RecoverableDuplicateColumn(t *testing.T) {
	// Yarım kalmış migration senaryosu: kolon zaten ekli, tekrar ALTER
	// "duplicate column name" verir — migration yine de tamamlanmalı
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first := fstest.MapFS{
		"001_create.sql": {Data: []byte(`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT);`)},
	}
	db, err := New(dbPath, first)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	second := fstest.MapFS{
		"001_create.sql": first["001_create.sql"],
		"002_alter.sql": {Data: []byte(
			`ALTER TABLE widgets ADD COLUMN name TEXT;
			 ALTER TABLE widgets ADD COLUMN color TEXT;`)},
	}
	db, err = New(dbPath, second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// İlk ALTER atlandı, ikincisi uygulandı
	_, err = db.Conn.Exec(`INSERT INTO widgets (id, name, color) VALUES (1, 'a', 'red')`)
	require.NoError(t, err)
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "multiple statements",
			input: "CREATE TABLE a (x INT); CREATE TABLE b (y INT);",
			want:  []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"},
		},
		{
			name:  "semicolon inside string literal",
			input: `INSERT INTO t VALUES ('a;b'); SELECT 1;`,
			want:  []string{`INSERT INTO t VALUES ('a;b')`, "SELECT 1"},
		},
		{
			name:  "escaped quote inside string",
			input: `INSERT INTO t VALUES ('it''s; fine'); SELECT 1;`,
			want:  []string{`INSERT INTO t VALUES ('it''s; fine')`, "SELECT 1"},
		},
		{
			name:  "trailing statement without semicolon",
			input: "SELECT 1; SELECT 2",
			want:  []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:  "empty and whitespace-only chunks dropped",
			input: " ; ;SELECT 1; ",
			want:  []string{"SELECT 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, splitStatements(tt.input))
		})
	}
}
