package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Reubentwj/VIBUSAPP/config"
	"github.com/Reubentwj/VIBUSAPP/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds everything built from Config that needs closing.
type app struct {
	food       *services.FoodService
	classifier services.Classifier
	db         *gorm.DB
}

func (a *app) Close() error {
	err := a.classifier.Close()
	if a.db != nil {
		sqlDB, dbErr := a.db.DB()
		if dbErr == nil {
			dbErr = sqlDB.Close()
		}
		err = errors.Join(err, dbErr)
	}
	return err
}

func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger, withHistory bool) (*app, error) {
	classifier, err := newClassifier(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("classifier ready",
		zap.String("classifier", classifier.Name()),
		zap.String("device", classifier.Device()),
		zap.Int("model_classes", classifier.NumClasses()))

	defaults, err := services.LoadDefaultNutrition(cfg.NutritionDefaultsFile)
	if err != nil {
		classifier.Close()
		return nil, err
	}
	nutrition := services.NewNutritionService(nutritionProviders(cfg, log), defaults, log)

	opts := services.FoodServiceOptions{MaxImageBytes: cfg.MaxImageBytes}
	var db *gorm.DB
	if withHistory && cfg.DatabaseEnabled() {
		db, err = config.InitDB(cfg)
		if err != nil {
			classifier.Close()
			return nil, err
		}
		opts.Store = services.NewGormAnalysisStore(db)
		log.Info("analysis history enabled", zap.String("db_host", cfg.DBHost))
	}

	return &app{
		food:       services.NewFoodService(classifier, nutrition, opts, log),
		classifier: classifier,
		db:         db,
	}, nil
}

func newClassifier(ctx context.Context, cfg *config.Config) (services.Classifier, error) {
	switch cfg.Classifier {
	case "rekognition":
		rek, err := services.NewRekognitionService(ctx, cfg.AWSRegion, cfg.RekMinConfidence)
		if err != nil {
			return nil, err
		}
		return rek, nil
	case "remote":
		classes, err := services.LoadClassIndex(cfg.ClassIndexPath)
		if err != nil {
			return nil, err
		}
		rc, err := services.NewRemoteClassifier(cfg.ModelServerURL, cfg.ModelName, cfg.ModelInputName, classes)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case "onnx":
		classes, err := services.LoadClassIndex(cfg.ClassIndexPath)
		if err != nil {
			return nil, err
		}
		oc, err := services.NewOnnxClassifier(services.OnnxOptions{
			LibraryPath: cfg.OnnxLibraryPath,
			ModelPath:   cfg.ModelPath,
			InputName:   cfg.ModelInputName,
			OutputName:  cfg.ModelOutputName,
		}, classes)
		if err != nil {
			return nil, err
		}
		return oc, nil
	default:
		return nil, fmt.Errorf("unknown classifier %q", cfg.Classifier)
	}
}

func nutritionProviders(cfg *config.Config, log *zap.Logger) []services.NutritionProvider {
	var out []services.NutritionProvider
	for _, name := range cfg.NutritionProviders {
		switch name {
		case "usda":
			out = append(out, services.NewUSDAService(cfg.USDABaseURL, cfg.USDAAPIKey, cfg.NutritionTimeout))
		case "edamam":
			if !cfg.EdamamEnabled() {
				log.Debug("edamam credentials not set, skipping provider")
				continue
			}
			out = append(out, services.NewEdamamService(cfg.EdamamAppID, cfg.EdamamAppKey, cfg.NutritionTimeout))
		default:
			log.Warn("unknown nutrition provider ignored", zap.String("provider", name))
		}
	}
	return out
}
