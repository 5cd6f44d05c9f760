// Package repository implements MySQL persistence for showtimes and orders.
// Sentinel errors here let callers tell failure classes apart without
// inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a write collides with existing rows, such as
// a seat that is already part of another reservation for the same show.
// Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
