// Package ingest discovers input documents and turns them into decoded pages.
package ingest

import (
	"time"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

// Source is one discovered input file.
type Source struct {
	Path       string // absolute
	Ext        string // lowercased, without '.'
	Format     string // constants.PDF | constants.IMAGE
	HashHex    string // sha256 of the content
	Size       int64
	ModifiedAt time.Time
}

// Name is the file name without directory and extension.
func (s Source) Name() string {
	return baseName(s.Path)
}

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

type Config struct {
	Pdftoppm         string
	DPI              int
	MaxPages         int // 0 = all pages
	HeicConverter    string
	ArtifactCacheDir string
	PreviewDir       string // "" disables previews
}

func ConfigFromCommon(c common.IngestConfig) Config {
	return Config{
		Pdftoppm:         c.Pdftoppm,
		DPI:              c.DPI,
		MaxPages:         c.MaxPages,
		HeicConverter:    c.HeicConverter,
		ArtifactCacheDir: c.ArtifactCacheDir,
		PreviewDir:       c.PreviewDir,
	}
}

func (c Config) withDefaults() Config {
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	if c.HeicConverter == "" {
		c.HeicConverter = "magick"
	}
	return c
}
