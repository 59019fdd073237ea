package connection

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Scoped binds db to ctx and, when tx is non-nil, routes every statement
// through tx so gorm repositories join the caller's transaction.
func Scoped(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	s := db.WithContext(ctx)
	if tx != nil {
		s.Statement.ConnPool = tx
	}
	return s
}
