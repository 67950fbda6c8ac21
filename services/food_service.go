package services

import (
	"context"
	"fmt"

	"github.com/Reubentwj/VIBUSAPP/models"
	"github.com/Reubentwj/VIBUSAPP/utils"

	"go.uber.org/zap"
)

// FoodService runs the photo → class → nutrition pipeline.
type FoodService struct {
	classifier    Classifier
	nutrition     *NutritionService
	store         AnalysisStore
	maxImageBytes int
	log           *zap.Logger
}

type FoodServiceOptions struct {
	MaxImageBytes int
	// Store is optional; nil disables history.
	Store AnalysisStore
}

// AnalysisResult is the response body of a successful analysis.
type AnalysisResult struct {
	FoodName          string       `json:"food_name"`
	Confidence        float64      `json:"confidence"`
	ConfidencePercent float64      `json:"confidence_percent"`
	ClassIndex        int          `json:"class_index"`
	Calories          int          `json:"calories"`
	ProteinG          float64      `json:"protein_g"`
	CarbsG            float64      `json:"carbs_g"`
	FatsG             float64      `json:"fats_g"`
	Success           bool         `json:"success"`
	Source            string       `json:"source"`
	Classifier        string       `json:"classifier"`
	Notes             []utils.Note `json:"notes,omitempty"`
}

// AnalyzeRequest carries caller metadata that ends up in history.
type AnalyzeRequest struct {
	Image     string
	Subject   string
	RequestID string
}

func NewFoodService(c Classifier, n *NutritionService, opts FoodServiceOptions, log *zap.Logger) *FoodService {
	return &FoodService{
		classifier:    c,
		nutrition:     n,
		store:         opts.Store,
		maxImageBytes: opts.MaxImageBytes,
		log:           log,
	}
}

// Analyze decodes, classifies and enriches one photo.
func (s *FoodService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error) {
	img, err := DecodeImage(req.Image, s.maxImageBytes)
	if err != nil {
		return nil, err
	}

	pred, err := s.classifier.Classify(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}
	name := CleanFoodName(pred.Label)
	s.log.Info("food detected",
		zap.String("food", name),
		zap.Int("class_index", pred.Index),
		zap.Float64("confidence", pred.Confidence),
		zap.String("request_id", req.RequestID))

	macros, source := s.nutrition.Lookup(ctx, name)

	res := &AnalysisResult{
		FoodName:          name,
		Confidence:        pred.Confidence,
		ConfidencePercent: pred.Confidence * 100,
		ClassIndex:        pred.Index,
		Calories:          macros.Calories,
		ProteinG:          macros.Protein,
		CarbsG:            macros.Carbs,
		FatsG:             macros.Fats,
		Success:           true,
		Source:            source,
		Classifier:        s.classifier.Name(),
	}
	if notes := utils.AssessServing(name, float64(macros.Calories), macros.Protein, macros.Carbs, macros.Fats); len(notes) > 0 {
		res.Notes = notes
	}

	if s.store != nil {
		rec := &models.FoodAnalysis{
			FoodName:    res.FoodName,
			ClassIndex:  res.ClassIndex,
			Confidence:  res.Confidence,
			Calories:    res.Calories,
			ProteinG:    res.ProteinG,
			CarbsG:      res.CarbsG,
			FatsG:       res.FatsG,
			Source:      res.Source,
			Classifier:  res.Classifier,
			ImageSHA256: img.SHA256,
			Subject:     req.Subject,
			RequestID:   req.RequestID,
		}
		if err := s.store.Record(ctx, rec); err != nil {
			s.log.Warn("failed to store analysis", zap.Error(err), zap.String("request_id", req.RequestID))
		}
	}
	return res, nil
}

// History lists recent analyses, or ErrHistoryDisabled without a store.
func (s *FoodService) History(ctx context.Context, limit int) ([]models.FoodAnalysis, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.Recent(ctx, limit)
}

func (s *FoodService) HistoryEnabled() bool { return s.store != nil }

// Status describes the loaded model for health checks.
type Status struct {
	Classifier         string
	Device             string
	ModelClasses       int
	NutritionProviders []string
}

func (s *FoodService) Status() Status {
	return Status{
		Classifier:         s.classifier.Name(),
		Device:             s.classifier.Device(),
		ModelClasses:       s.classifier.NumClasses(),
		NutritionProviders: s.nutrition.ProviderNames(),
	}
}
