package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Reubentwj/VIBUSAPP/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config is everything the service reads from the environment.
type Config struct {
	Port    string
	GinMode string

	LogLevel string

	// Classifier backend: onnx, remote or rekognition.
	Classifier       string
	ModelPath        string
	ClassIndexPath   string
	OnnxLibraryPath  string
	ModelInputName   string
	ModelOutputName  string
	ModelServerURL   string
	ModelName        string
	ModelAccuracy    float64
	AWSRegion        string
	RekMinConfidence float64

	USDAAPIKey            string
	USDABaseURL           string
	EdamamAppID           string
	EdamamAppKey          string
	NutritionProviders    []string
	NutritionTimeout      time.Duration
	NutritionDefaultsFile string

	MaxImageBytes      int
	CORSAllowedOrigins []string
	JWTSecret          string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		Port:    getEnv("PORT", "5000"),
		GinMode: getEnv("GIN_MODE", "release"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		Classifier:      strings.ToLower(getEnv("CLASSIFIER", "onnx")),
		ModelPath:       getEnv("MODEL_PATH", "food_model.onnx"),
		ClassIndexPath:  getEnv("CLASS_INDEX_PATH", "class_to_idx.json"),
		OnnxLibraryPath: os.Getenv("ONNX_LIBRARY_PATH"),
		ModelInputName:  getEnv("MODEL_INPUT_NAME", "input"),
		ModelOutputName: getEnv("MODEL_OUTPUT_NAME", "output"),
		ModelServerURL:  os.Getenv("MODEL_SERVER_URL"),
		ModelName:       getEnv("MODEL_NAME", "food_model"),
		AWSRegion:       os.Getenv("AWS_REGION"),

		USDAAPIKey:            getEnv("USDA_API_KEY", "DEMO_KEY"),
		USDABaseURL:           getEnv("USDA_BASE_URL", "https://api.nal.usda.gov/fdc/v1"),
		EdamamAppID:           os.Getenv("EDAMAM_APP_ID"),
		EdamamAppKey:          os.Getenv("EDAMAM_APP_KEY"),
		NutritionProviders:    splitList(getEnv("NUTRITION_PROVIDERS", "usda,edamam")),
		NutritionDefaultsFile: os.Getenv("NUTRITION_DEFAULTS_FILE"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		JWTSecret:          os.Getenv("JWT_SECRET"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	var err error
	if cfg.ModelAccuracy, err = getFloat("MODEL_ACCURACY", 0.708); err != nil {
		return nil, err
	}
	if cfg.RekMinConfidence, err = getFloat("REKOGNITION_MIN_CONFIDENCE", 50); err != nil {
		return nil, err
	}
	if cfg.NutritionTimeout, err = getDuration("NUTRITION_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxImageBytes, err = getInt("MAX_IMAGE_BYTES", 10<<20); err != nil {
		return nil, err
	}

	switch cfg.Classifier {
	case "onnx", "remote", "rekognition":
	default:
		return nil, fmt.Errorf("unknown CLASSIFIER %q (want onnx, remote or rekognition)", cfg.Classifier)
	}
	if cfg.Classifier == "remote" && cfg.ModelServerURL == "" {
		return nil, errors.New("MODEL_SERVER_URL must be set when CLASSIFIER=remote")
	}
	if cfg.Classifier == "rekognition" && cfg.AWSRegion == "" {
		return nil, errors.New("AWS_REGION not set")
	}

	switch cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return nil, fmt.Errorf("unknown GIN_MODE %q (want debug, release or test)", cfg.GinMode)
	}
	for _, o := range cfg.CORSAllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return nil, fmt.Errorf("bad CORS_ALLOWED_ORIGINS entry %q (want * or an http(s) origin)", o)
		}
	}
	return cfg, nil
}

// DatabaseEnabled reports whether analysis history should be persisted.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

// EdamamEnabled reports whether Edamam credentials are configured.
func (c *Config) EdamamEnabled() bool {
	return c.EdamamAppID != "" && c.EdamamAppKey != ""
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// InitDB opens postgres and migrates the history table.
func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.FoodAnalysis{}); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
