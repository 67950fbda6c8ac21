package services

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
)

var ErrFoodNotFound = errors.New("food not found")

// DefaultSource marks nutrition that came from the fallback table.
const DefaultSource = "default"

// Macros are per-serving values: kcal and grams.
type Macros struct {
	Calories int     `json:"calories" yaml:"calories"`
	Protein  float64 `json:"protein" yaml:"protein"`
	Carbs    float64 `json:"carbs" yaml:"carbs"`
	Fats     float64 `json:"fats" yaml:"fats"`
}

// NutritionProvider looks a food name up in an external database.
type NutritionProvider interface {
	Name() string
	Lookup(ctx context.Context, food string) (Macros, error)
}

// NutritionService asks each provider in order and falls back to the
// static table, so Lookup never fails.
type NutritionService struct {
	providers []NutritionProvider
	defaults  *DefaultNutrition
	log       *zap.Logger
}

func NewNutritionService(providers []NutritionProvider, defaults *DefaultNutrition, log *zap.Logger) *NutritionService {
	if defaults == nil {
		defaults = NewDefaultNutrition()
	}
	return &NutritionService{providers: providers, defaults: defaults, log: log}
}

// Lookup returns the macros and the name of the source that supplied them.
func (s *NutritionService) Lookup(ctx context.Context, food string) (Macros, string) {
	for _, p := range s.providers {
		s.log.Debug("looking up nutrition", zap.String("provider", p.Name()), zap.String("food", food))
		m, err := p.Lookup(ctx, food)
		if err == nil {
			s.log.Info("nutrition found", zap.String("provider", p.Name()), zap.String("food", food))
			return m, p.Name()
		}
		if errors.Is(err, ErrFoodNotFound) {
			s.log.Info("food not in provider", zap.String("provider", p.Name()), zap.String("food", food))
		} else {
			s.log.Warn("nutrition lookup failed", zap.String("provider", p.Name()), zap.String("food", food), zap.Error(err))
		}
	}
	s.log.Info("using default nutrition", zap.String("food", food))
	return s.defaults.Get(food), DefaultSource
}

// ProviderNames lists the configured providers in lookup order.
func (s *NutritionService) ProviderNames() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// round1 rounds the exact decimal value to one place, sending ties to even.
func round1(f float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 1, 64), 64)
	if err != nil {
		return f
	}
	return v
}
