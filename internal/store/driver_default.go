//go:build !sqlite_vec

package store

import (
	_ "modernc.org/sqlite"
)

// driverName selects the pure-Go SQLite driver. The sqlite_vec build
// tag swaps in the cgo driver with the sqlite-vec extension loaded.
const driverName = "sqlite"
