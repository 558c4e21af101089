package database

import (
	"context"
	"fmt"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/config"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
)

// VisitStore is durable storage for daily visit aggregates.
type VisitStore interface {
	// RecordVisit counts one page view under date.
	RecordVisit(ctx context.Context, date, path, referrer string) error
	// GetAll returns every stored day. A missing document is an empty
	// store; callers treat any error the same way.
	GetAll(ctx context.Context) (models.VisitsStore, error)
	// Prune removes days strictly before the given ISO date.
	Prune(ctx context.Context, before string) (int, error)
	Close() error
}

// OpenVisitStore builds the store selected by visits.driver.
func OpenVisitStore(cfg *config.Config) (VisitStore, error) {
	switch cfg.Visits.Driver {
	case "file":
		return NewFileVisitStore(cfg.Visits.Path)
	case "postgres", "sqlite":
		db, err := Connect(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormVisitStore(db), nil
	default:
		return nil, fmt.Errorf("unknown visits driver %q", cfg.Visits.Driver)
	}
}
