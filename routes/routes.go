package routes

import (
	"github.com/Reubentwj/VIBUSAPP/controllers"
	"github.com/Reubentwj/VIBUSAPP/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterOptions struct {
	ModelAccuracy      float64
	CORSAllowedOrigins []string
	// JWTSecret, when set, protects every route except health.
	JWTSecret      string
	HistoryEnabled bool
	// MaxImageBytes sizes the request body cap on analyze-food.
	MaxImageBytes int
}

func SetupRouter(svc controllers.FoodAnalyzer, opts RouterOptions, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequestLogger(log))
	r.Use(gin.Recovery())
	r.Use(middlewares.CORS(opts.CORSAllowedOrigins))

	food := controllers.NewFoodController(svc, opts.MaxImageBytes)
	health := controllers.NewHealthController(svc, opts.ModelAccuracy)

	api := r.Group("/api")
	{
		api.GET("/health", health.Health)
	}

	protected := api.Group("")
	if opts.JWTSecret != "" {
		protected.Use(middlewares.AuthMiddleware([]byte(opts.JWTSecret)))
	}
	{
		protected.POST("/analyze-food", food.AnalyzeFood)
		if opts.HistoryEnabled {
			protected.GET("/analyses", food.ListAnalyses)
		}
	}

	return r
}
