package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	svc           FoodAnalyzer
	modelAccuracy float64
}

func NewHealthController(svc FoodAnalyzer, modelAccuracy float64) *HealthController {
	return &HealthController{svc: svc, modelAccuracy: modelAccuracy}
}

// GET /api/health
func (hc *HealthController) Health(c *gin.Context) {
	st := hc.svc.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":              "ok",
		"model_classes":       st.ModelClasses,
		"device":              st.Device,
		"model_accuracy":      hc.modelAccuracy,
		"classifier":          st.Classifier,
		"nutrition_providers": st.NutritionProviders,
	})
}
