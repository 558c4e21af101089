package database

import (
	"context"
	"fmt"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVisitStore keeps visit aggregates in three tables. Counters are bumped
// with upserts so concurrent writers never lose an increment.
type GormVisitStore struct {
	db *gorm.DB
}

func NewGormVisitStore(db *gorm.DB) *GormVisitStore {
	return &GormVisitStore{db: db}
}

func (s *GormVisitStore) RecordVisit(ctx context.Context, date, path, referrer string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		day := models.VisitDay{Date: date, Total: 1}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"total": gorm.Expr("visit_days.total + 1")}),
		}).Create(&day).Error
		if err != nil {
			return fmt.Errorf("increment day: %w", err)
		}

		visitPath := models.VisitPath{Date: date, Path: path, Hits: 1}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"hits": gorm.Expr("visit_paths.hits + 1")}),
		}).Create(&visitPath).Error
		if err != nil {
			return fmt.Errorf("increment path: %w", err)
		}

		if !models.CountsReferrer(referrer) {
			return nil
		}

		visitReferrer := models.VisitReferrer{Date: date, Referrer: referrer, Hits: 1}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "referrer"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"hits": gorm.Expr("visit_referrers.hits + 1")}),
		}).Create(&visitReferrer).Error
		if err != nil {
			return fmt.Errorf("increment referrer: %w", err)
		}

		return nil
	})
}

// GetAll rebuilds the store; tallies keep primary-key order, which is the
// order keys were first seen.
func (s *GormVisitStore) GetAll(ctx context.Context) (models.VisitsStore, error) {
	db := s.db.WithContext(ctx)
	store := models.VisitsStore{}

	var days []models.VisitDay
	if err := db.Order("date").Find(&days).Error; err != nil {
		return nil, fmt.Errorf("load visit days: %w", err)
	}
	for _, day := range days {
		record := models.NewVisitRecord(day.Date)
		record.Count = day.Total
		store[day.Date] = record
	}

	var paths []models.VisitPath
	if err := db.Order("id").Find(&paths).Error; err != nil {
		return nil, fmt.Errorf("load visit paths: %w", err)
	}
	for _, p := range paths {
		if record, ok := store[p.Date]; ok {
			record.Paths.Set(p.Path, p.Hits)
		}
	}

	var referrers []models.VisitReferrer
	if err := db.Order("id").Find(&referrers).Error; err != nil {
		return nil, fmt.Errorf("load visit referrers: %w", err)
	}
	for _, r := range referrers {
		if record, ok := store[r.Date]; ok {
			record.Referrers.Set(r.Referrer, r.Hits)
		}
	}

	return store, nil
}

func (s *GormVisitStore) Prune(ctx context.Context, before string) (int, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date < ?", before).Delete(&models.VisitPath{}).Error; err != nil {
			return err
		}
		if err := tx.Where("date < ?", before).Delete(&models.VisitReferrer{}).Error; err != nil {
			return err
		}
		result := tx.Where("date < ?", before).Delete(&models.VisitDay{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune visits: %w", err)
	}
	return int(removed), nil
}

func (s *GormVisitStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
