package service

import (
	"database/sql"

	"github.com/alexmabud/flowdash-backend/internal/database"
	"github.com/alexmabud/flowdash-backend/internal/version"
)

// SystemService answers health and version probes.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth reports whether the database connection is usable.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the running application version.
func (s *SystemService) CheckVersion() string {
	return version.Version
}
