//go:build purego

package storage

// Pure Go build, no C compiler required:
//
//   CGO_ENABLED=0 go build -tags purego ./...

import (
	"fmt"

	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver used by SQLiteStore.
	DriverName = "sqlite"
	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)

func dsn(path string) string {
	return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)", path)
}
