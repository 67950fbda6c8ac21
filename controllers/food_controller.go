package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Reubentwj/VIBUSAPP/middlewares"
	"github.com/Reubentwj/VIBUSAPP/models"
	"github.com/Reubentwj/VIBUSAPP/services"

	"github.com/gin-gonic/gin"
)

// FoodAnalyzer is the part of services.FoodService the handlers use.
type FoodAnalyzer interface {
	Analyze(ctx context.Context, req services.AnalyzeRequest) (*services.AnalysisResult, error)
	History(ctx context.Context, limit int) ([]models.FoodAnalysis, error)
	Status() services.Status
}

// bodySlack covers the JSON wrapper, a data-URI prefix and line breaks
// around the base64 payload.
const bodySlack = 64 << 10

type FoodController struct {
	svc      FoodAnalyzer
	maxBytes int64
}

// NewFoodController caps request bodies at the base64 size of a
// maxImageBytes image plus bodySlack. Zero or less means no cap.
func NewFoodController(svc FoodAnalyzer, maxImageBytes int) *FoodController {
	var limit int64
	if maxImageBytes > 0 {
		limit = (int64(maxImageBytes)+2)/3*4 + bodySlack
	}
	return &FoodController{svc: svc, maxBytes: limit}
}

// POST /api/analyze-food  { "image": "<base64 or data URI>" }
func (fc *FoodController) AnalyzeFood(c *gin.Context) {
	var req struct {
		Image string `json:"image"`
	}
	if fc.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, fc.maxBytes)
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   services.ErrImageTooLarge.Error(),
				"success": false,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}

	out, err := fc.svc.Analyze(c.Request.Context(), services.AnalyzeRequest{
		Image:     req.Image,
		Subject:   c.GetString(middlewares.SubjectKey),
		RequestID: c.GetString(middlewares.RequestIDKey),
	})
	if errors.Is(err, services.ErrNoImage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "success": false})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/analyses?limit=20
func (fc *FoodController) ListAnalyses(c *gin.Context) {
	limit := services.DefaultRecentLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	out, err := fc.svc.History(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, services.ErrHistoryDisabled) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNoImage), errors.Is(err, services.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
