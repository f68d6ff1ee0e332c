package health

import (
	"context"
	"database/sql"
	"time"

	"consult-backend/internal/shared/storage/db"
)

const pingTimeout = 2 * time.Second

// Status is the health payload.
type Status struct {
	OK             bool   `json:"ok"`
	Database       string `json:"database"`
	CatalogVersion string `json:"catalogVersion"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB             *sql.DB
	CatalogVersion string
}

// NewService constructs a new health service. A nil database reports as
// "memory" and never fails the check.
func NewService(sqlDB *sql.DB, catalogVersion string) *Service {
	return &Service{DB: sqlDB, CatalogVersion: catalogVersion}
}

// Status pings the database and reports the loaded catalog version.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", CatalogVersion: s.CatalogVersion}
	if s.DB == nil {
		return st
	}
	if err := db.Ping(ctx, s.DB, pingTimeout); err != nil {
		st.OK = false
		st.Database = "unavailable"
		return st
	}
	st.Database = "ok"
	return st
}
