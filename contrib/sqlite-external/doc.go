// Package sqliteexternal provides the optional CGO SQLite driver.
//
// To use the CGO driver (github.com/mattn/go-sqlite3) for the Strong's index:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/strongs-merge
//
// Without the tag the pure Go driver from modernc.org/sqlite is used. See
// github.com/FocuswithJustin/strongsdef/core/sqlite for details.
package sqliteexternal
