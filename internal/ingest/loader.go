package ingest

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/bukti-setor/constants"
	"github.com/joseph-ayodele/bukti-setor/internal/common"
	"github.com/joseph-ayodele/bukti-setor/internal/ocr"
	"github.com/joseph-ayodele/bukti-setor/internal/pipeline"
)

// Loader turns a Source into decoded pages, one per PDF page or a single page for images.
type Loader struct {
	cfg    Config
	runner ocr.Runner
	logger *slog.Logger
}

func NewLoader(cfg Config, runner ocr.Runner, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ocr.ExecRunner{}
	}
	return &Loader{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

func (l *Loader) Load(ctx context.Context, src Source) ([]pipeline.Page, error) {
	var (
		imgs []image.Image
		err  error
	)
	switch {
	case src.Format == constants.PDF:
		imgs, err = l.loadPDF(ctx, src)
	case constants.IsHEICExt(src.Ext):
		imgs, err = l.loadHEIC(ctx, src)
	case src.Format == constants.IMAGE:
		var img image.Image
		img, err = DecodeImage(src.Path)
		imgs = []image.Image{img}
	default:
		err = common.NewAppError("UNSUPPORTED_FILE", fmt.Sprintf("unsupported format for %s", src.Path), common.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	pages := make([]pipeline.Page, len(imgs))
	for i, img := range imgs {
		pages[i] = pipeline.Page{Index: i + 1, Image: img}
		if l.cfg.PreviewDir == "" || img == nil {
			continue
		}
		name, err := SavePreview(img, l.cfg.PreviewDir, src.Name(), i+1, src.HashHex)
		if err != nil {
			l.logger.Warn("preview not saved", "path", src.Path, "page", i+1, "error", err)
			continue
		}
		pages[i].Preview = name
	}
	l.logger.Info("loaded document", "path", src.Path, "format", src.Format, "pages", len(pages))
	return pages, nil
}

// DecodeImage decodes any supported image format and applies EXIF orientation.
func DecodeImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, common.NewAppError("DECODE_ERROR", fmt.Sprintf("cannot decode %s", path), fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}
	return img, nil
}

// decodePages decodes rendered pages in order. A page that cannot be decoded stays
// in place as a nil image so the document keeps its page count.
func (l *Loader) decodePages(paths []string) []image.Image {
	imgs := make([]image.Image, len(paths))
	for i, p := range paths {
		img, err := DecodeImage(p)
		if err != nil {
			l.logger.Warn("page not decoded", "page", i+1, "error", err)
			continue
		}
		imgs[i] = img
	}
	return imgs
}
