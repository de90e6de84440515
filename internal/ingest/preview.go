package ingest

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// PreviewQuality is the JPEG quality of saved page previews.
const PreviewQuality = 85

// PreviewName is "<name>_hal_<page>_<first 8 hex of the content hash>.jpg".
func PreviewName(name string, page int, hashHex string) string {
	short := hashHex
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_hal_%d_%s.jpg", name, page, short)
}

// SavePreview writes img as a JPEG into dir and returns the file name.
func SavePreview(img image.Image, dir, name string, page int, hashHex string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create preview dir: %w", err)
	}
	file := PreviewName(name, page, hashHex)
	if err := imaging.Save(img, filepath.Join(dir, file), imaging.JPEGQuality(PreviewQuality)); err != nil {
		return "", fmt.Errorf("save preview: %w", err)
	}
	return file, nil
}
