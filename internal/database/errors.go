package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDuplicate is returned when an insert collides with a unique key
	ErrDuplicate = errors.New("duplicate entry")
	// ErrUsernameTaken is returned when a staff username already exists
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when a staff email already exists
	ErrEmailTaken = errors.New("email already exists")
	// ErrClosed is returned by a provider after Close
	ErrClosed = errors.New("database pool closed")
)

const (
	mysqlErrDuplicateEntry   = 1062
	mysqlErrDuplicateKeyName = 1061
)

// isDuplicateKey reports whether err is a unique constraint violation from either driver
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrDuplicateEntry
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}

// isDuplicateIndex reports whether err is MySQL refusing to create an index that already exists
func isDuplicateIndex(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateKeyName
}
