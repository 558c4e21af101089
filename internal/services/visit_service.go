package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/database"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/sirupsen/logrus"
)

type VisitService struct {
	store         database.VisitStore
	loc           *time.Location
	retentionDays int
	now           func() time.Time

	pruneMu   sync.Mutex
	lastPrune string
}

func NewVisitService(store database.VisitStore, loc *time.Location, retentionDays int) *VisitService {
	if loc == nil {
		loc = time.UTC
	}
	return &VisitService{
		store:         store,
		loc:           loc,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *VisitService) WithClock(now func() time.Time) *VisitService {
	s.now = now
	return s
}

// Today is the current calendar date in the configured timezone.
func (s *VisitService) Today() string {
	return s.now().In(s.loc).Format(models.DateLayout)
}

// Yesterday is the day a daily digest reports on.
func (s *VisitService) Yesterday() string {
	return s.now().In(s.loc).AddDate(0, 0, -1).Format(models.DateLayout)
}

// RecordVisit counts one page view under today's date. An empty referrer is
// recorded as a direct visit.
func (s *VisitService) RecordVisit(ctx context.Context, path, referrer string) error {
	path = strings.TrimSpace(path)
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		referrer = models.DirectReferrer
	}

	today := s.Today()
	if err := s.store.RecordVisit(ctx, today, path, referrer); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.pruneOncePerDay(ctx, today)
	return nil
}

// GetAll never fails: unreadable state is reported as empty.
func (s *VisitService) GetAll(ctx context.Context) models.VisitsStore {
	store, err := s.store.GetAll(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to read visits, treating as empty")
		return models.VisitsStore{}
	}
	if store == nil {
		return models.VisitsStore{}
	}
	return store
}

// Prune drops days older than the retention window. A negative retention
// keeps everything.
func (s *VisitService) Prune(ctx context.Context) (int, error) {
	if s.retentionDays <= 0 {
		return 0, nil
	}
	return s.PruneOlderThan(ctx, s.retentionDays)
}

// PruneOlderThan drops days dated more than days before today. days must be
// positive.
func (s *VisitService) PruneOlderThan(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		return 0, fmt.Errorf("retention must be at least one day, got %d", days)
	}

	cutoff := s.now().In(s.loc).AddDate(0, 0, -days).Format(models.DateLayout)
	removed, err := s.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if removed > 0 {
		logrus.WithFields(logrus.Fields{
			"removed": removed,
			"before":  cutoff,
		}).Info("pruned old visit records")
	}
	return removed, nil
}

func (s *VisitService) pruneOncePerDay(ctx context.Context, today string) {
	s.pruneMu.Lock()
	if s.lastPrune == today {
		s.pruneMu.Unlock()
		return
	}
	s.lastPrune = today
	s.pruneMu.Unlock()

	if _, err := s.Prune(ctx); err != nil {
		logrus.WithError(err).Warn("failed to prune visit records")
	}
}
