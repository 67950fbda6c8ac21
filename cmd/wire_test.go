package main

import (
	"context"
	"testing"
	"time"

	"github.com/Reubentwj/VIBUSAPP/config"
	"github.com/Reubentwj/VIBUSAPP/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNutritionProviders(t *testing.T) {
	cfg := &config.Config{
		NutritionProviders: []string{"edamam", "usda", "spoonacular"},
		NutritionTimeout:   time.Second,
		USDABaseURL:        "https://api.nal.usda.gov/fdc/v1",
	}

	names := func() []string {
		var out []string
		for _, p := range nutritionProviders(cfg, zap.NewNop()) {
			out = append(out, p.Name())
		}
		return out
	}

	assert.Equal(t, []string{"USDA"}, names(), "edamam needs credentials")

	cfg.EdamamAppID, cfg.EdamamAppKey = "id", "key"
	assert.Equal(t, []string{"Edamam", "USDA"}, names())
}

func TestNewClassifierUnknown(t *testing.T) {
	_, err := newClassifier(context.Background(), &config.Config{Classifier: "caffe"})
	assert.Error(t, err)
}

func TestNewClassifierMissingClassIndex(t *testing.T) {
	cfg := &config.Config{
		Classifier:     "remote",
		ModelServerURL: "http://localhost:8000",
		ClassIndexPath: t.TempDir() + "/missing.json",
	}
	_, err := newClassifier(context.Background(), cfg)
	assert.Error(t, err)
}

type closeCounter struct {
	services.Classifier
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestAppCloseReleasesDatabase(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	cls := &closeCounter{}
	a := &app{classifier: cls, db: db}
	require.NoError(t, a.Close())

	assert.Equal(t, 1, cls.closed)
	assert.Error(t, sqlDB.Ping(), "pool must be closed")
}

func TestAppCloseWithoutDatabase(t *testing.T) {
	cls := &closeCounter{}
	a := &app{classifier: cls}
	assert.NoError(t, a.Close())
	assert.Equal(t, 1, cls.closed)
}
