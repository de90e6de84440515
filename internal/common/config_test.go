package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "tesseract", cfg.OCR.Engine)
	assert.Equal(t, "ind+eng", cfg.OCR.Lang)
	assert.Equal(t, 800, cfg.Image.MaxWidth)
	assert.Equal(t, 1000, cfg.Image.MaxHeight)
	assert.Equal(t, 7, cfg.Image.TemplateWindow)
	assert.Equal(t, 21, cfg.Image.SearchWindow)
	assert.Equal(t, int64(10000), cfg.Extract.MinPlausibleAmount)
	assert.Equal(t, 1, cfg.Pipeline.PageWorkers)
	assert.Equal(t, 300, cfg.Ingest.DPI)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OCR_ENGINE", "gosseract")
	t.Setenv("OCR_TIMEOUT", "45s")
	t.Setenv("PAGE_WORKERS", "4")
	t.Setenv("IMAGE_SHARPEN", "false")
	t.Setenv("DENOISE_STRENGTH", "7.5")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, "gosseract", cfg.OCR.Engine)
	assert.Equal(t, 45*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, 4, cfg.Pipeline.PageWorkers)
	assert.False(t, cfg.Image.Sharpen)
	assert.InDelta(t, 7.5, cfg.Image.FilterStrength, 1e-9)
	assert.Equal(t, int32(10), cfg.Database.MaxConns, "unparsable values fall back to the default")
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.OCR.Engine = "paddle"
	cfg.Image.TemplateWindow = 6
	cfg.Pipeline.PageWorkers = 0

	err := cfg.Validate()

	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "OCR_ENGINE")
	assert.Contains(t, err.Error(), "DENOISE_TEMPLATE_WINDOW")
	assert.Contains(t, err.Error(), "PAGE_WORKERS")
	assert.NotContains(t, err.Error(), "IMAGE_MAX_WIDTH")
}
