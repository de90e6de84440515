package ocr

import (
	"strings"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

type Config struct {
	Engine      string // "tesseract" | "gosseract"
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "ind+eng"
	TessdataDir string
	PSM         int // 6 = uniform block of text
	OEM         int // 1 = LSTM; leave 0 to use default
	TempDir     string
}

// ConfigFromCommon maps the environment configuration onto recognizer settings.
func ConfigFromCommon(c common.OCRConfig) Config {
	return Config{
		Engine:      c.Engine,
		Tesseract:   c.Tesseract,
		Lang:        c.Lang,
		TessdataDir: c.TessdataDir,
		PSM:         c.PSM,
	}
}

func (c Config) withDefaults() Config {
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Lang == "" {
		c.Lang = "ind+eng"
	}
	return c
}

func (c Config) languages() []string {
	return strings.Split(c.Lang, "+")
}
