// Package database embed dosyası — migration SQL dosyalarını binary'ye gömer.
//
// Go'nun embed paketi derleme zamanında dosyaları binary'nin içine gömer.
// Deploy edilen binary'nin yanında migration dosyalarına ihtiyaç kalmaz.
package database

import (
	"embed"
	"io/fs"
)

// EmbeddedMigrations, migrations/ dizinindeki SQL dosyalarını içerir.
//
//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS

// MigrationsFS, embed kökündeki "migrations/" önekini soyar — New bu FS'in
// kökünde doğrudan .sql dosyaları bekler.
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(EmbeddedMigrations, "migrations")
	if err != nil {
		// embed derleme zamanında sabittir — bu yol çalışma zamanında bozulamaz
		panic(err)
	}
	return sub
}
