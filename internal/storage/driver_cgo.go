//go:build !purego

package storage

// Default build: cgo SQLite driver.
//
//   go build ./...

import (
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver used by SQLiteStore.
	DriverName = "sqlite3"
	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)

// dsn enables WAL, full fsync on commit, and a busy timeout for every pooled connection.
func dsn(path string) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000", path)
}
