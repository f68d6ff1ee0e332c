package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusWithoutDatabase(t *testing.T) {
	st := NewService(nil, "2026.10").Status(context.Background())
	if !st.OK || st.Database != "memory" || st.CatalogVersion != "2026.10" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStatusPingsDatabase(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	mock.ExpectPing()
	st := NewService(sqlDB, "2026.10").Status(context.Background())
	if !st.OK || st.Database != "ok" {
		t.Fatalf("unexpected status %+v", st)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	st = NewService(sqlDB, "2026.10").Status(context.Background())
	if st.OK || st.Database != "unavailable" {
		t.Fatalf("expected failed ping to report unavailable, got %+v", st)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
