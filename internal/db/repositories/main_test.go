package repositories

import (
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

// errDB is the shared synthetic database failure used across repository tests.
var errDB = errors.New("database is down")

// newMockDB returns a sqlx-wrapped sqlmock database. Repositories use $N
// placeholders, so the mock is wrapped with the postgres bindvar dialect.
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}
