package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	Image    ImageConfig
	Text     TextConfig
	Extract  ExtractConfig
	Pipeline PipelineConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds result-store configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// OCRConfig holds recognizer configuration
type OCRConfig struct {
	Engine      string // "tesseract" | "gosseract"
	Tesseract   string
	Lang        string
	TessdataDir string
	PSM         int
	TTL         time.Duration
	Timeout     time.Duration
}

// ImageConfig holds image-conditioning configuration
type ImageConfig struct {
	MaxWidth       int
	MaxHeight      int
	FilterStrength float64
	TemplateWindow int
	SearchWindow   int
	Sharpen        bool
	Binarize       bool
}

// TextConfig holds fragment normalization configuration
type TextConfig struct {
	MinFragmentLen  int
	SpellDictionary string
	SpellCheck      bool
}

// ExtractConfig holds field-extraction thresholds
type ExtractConfig struct {
	MinPlausibleAmount int64
}

// PipelineConfig holds document orchestration settings
type PipelineConfig struct {
	PageWorkers int
	Pipelined   bool
}

// IngestConfig holds input loading configuration
type IngestConfig struct {
	Pdftoppm         string
	DPI              int
	MaxPages         int
	HeicConverter    string
	ArtifactCacheDir string
	PreviewDir       string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		OCR: OCRConfig{
			Engine:      getEnv("OCR_ENGINE", "tesseract"),
			Tesseract:   getEnv("TESSERACT_CMD", "tesseract"),
			Lang:        getEnv("TESSERACT_LANG", "ind+eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			PSM:         getEnvAsInt("TESSERACT_PSM", 6),
			TTL:         getEnvAsDuration("OCR_TTL", 30*time.Minute),
			Timeout:     getEnvAsDuration("OCR_TIMEOUT", 2*time.Minute),
		},
		Image: ImageConfig{
			MaxWidth:       getEnvAsInt("IMAGE_MAX_WIDTH", 800),
			MaxHeight:      getEnvAsInt("IMAGE_MAX_HEIGHT", 1000),
			FilterStrength: getEnvAsFloat64("DENOISE_STRENGTH", 10),
			TemplateWindow: getEnvAsInt("DENOISE_TEMPLATE_WINDOW", 7),
			SearchWindow:   getEnvAsInt("DENOISE_SEARCH_WINDOW", 21),
			Sharpen:        getEnvAsBool("IMAGE_SHARPEN", true),
			Binarize:       getEnvAsBool("IMAGE_BINARIZE", false),
		},
		Text: TextConfig{
			MinFragmentLen:  getEnvAsInt("MIN_FRAGMENT_LEN", 3),
			SpellDictionary: getEnv("SPELL_DICTIONARY", ""),
			SpellCheck:      getEnvAsBool("SPELL_CHECK", true),
		},
		Extract: ExtractConfig{
			MinPlausibleAmount: int64(getEnvAsInt("AMOUNT_MIN", 10000)),
		},
		Pipeline: PipelineConfig{
			PageWorkers: getEnvAsInt("PAGE_WORKERS", 1),
			Pipelined:   getEnvAsBool("PAGE_PIPELINE", true),
		},
		Ingest: IngestConfig{
			Pdftoppm:         getEnv("PDFTOPPM_CMD", "pdftoppm"),
			DPI:              getEnvAsInt("PDF_DPI", 300),
			MaxPages:         getEnvAsInt("PDF_MAX_PAGES", 0),
			HeicConverter:    getEnv("HEIC_CONVERTER", "magick"),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
			PreviewDir:       getEnv("PREVIEW_DIR", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("OCR_ENGINE", c.OCR.Engine, Required, OneOf("tesseract", "gosseract")).
		Field("TESSERACT_LANG", c.OCR.Lang, Required).
		Field("IMAGE_MAX_WIDTH", c.Image.MaxWidth, Positive).
		Field("IMAGE_MAX_HEIGHT", c.Image.MaxHeight, Positive).
		Field("DENOISE_STRENGTH", c.Image.FilterStrength, Positive).
		Field("DENOISE_TEMPLATE_WINDOW", c.Image.TemplateWindow, Positive, Odd).
		Field("DENOISE_SEARCH_WINDOW", c.Image.SearchWindow, Positive, Odd).
		Field("PAGE_WORKERS", c.Pipeline.PageWorkers, Positive)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
