package mysql

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const errDuplicateEntry = 1062

// isDuplicateError reports a unique index violation.
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == errDuplicateEntry
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// checkUpdated turns an UPDATE result into notFound when the row is missing.
// MySQL counts changed rows, so an update that rewrote identical values also
// reports 0; the row is re-checked before giving up.
func checkUpdated(db, result *gorm.DB, model interface{}, id uint, notFound error) error {
	if result.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
