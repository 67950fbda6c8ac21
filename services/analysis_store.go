package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Reubentwj/VIBUSAPP/models"

	"gorm.io/gorm"
)

var ErrHistoryDisabled = errors.New("analysis history is not enabled")

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// AnalysisStore keeps a history of analyses.
type AnalysisStore interface {
	Record(ctx context.Context, a *models.FoodAnalysis) error
	Recent(ctx context.Context, limit int) ([]models.FoodAnalysis, error)
}

type GormAnalysisStore struct {
	db *gorm.DB
}

func NewGormAnalysisStore(db *gorm.DB) *GormAnalysisStore {
	return &GormAnalysisStore{db: db}
}

func (s *GormAnalysisStore) Record(ctx context.Context, a *models.FoodAnalysis) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to record analysis: %w", err)
	}
	return nil
}

// Recent returns the newest analyses first. limit is clamped to [1, MaxRecentLimit].
func (s *GormAnalysisStore) Recent(ctx context.Context, limit int) ([]models.FoodAnalysis, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	var out []models.FoodAnalysis
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return out, nil
}
