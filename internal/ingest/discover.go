package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/bukti-setor/constants"
	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Stat hashes and describes a single supported file.
func Stat(path string) (Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, fmt.Errorf("abs path: %w", err)
	}
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return Source{}, common.NewAppError("UNSUPPORTED_FILE", fmt.Sprintf("unsupported or missing extension: %q", ext), common.ErrInvalidInput)
	}

	f, err := os.Open(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return Source{}, common.NewAppError("NOT_FOUND", abs, common.ErrNotFound)
	}
	if err != nil {
		return Source{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Source{}, fmt.Errorf("stat: %w", err)
	}
	if info.IsDir() {
		return Source{}, common.NewAppError("UNSUPPORTED_FILE", abs+" is a directory", common.ErrInvalidInput)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Source{}, fmt.Errorf("hash: %w", err)
	}
	return Source{
		Path:       abs,
		Ext:        ext,
		Format:     constants.MapExtToFormat(ext),
		HashHex:    hex.EncodeToString(h.Sum(nil)),
		Size:       info.Size(),
		ModifiedAt: info.ModTime().UTC(),
	}, nil
}

// Discover walks root, skips hidden entries if requested, and returns every supported
// file in walk order. A path that is itself a file is returned on its own.
func Discover(ctx context.Context, root string, skipHidden bool, logger *slog.Logger) ([]Source, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.NewAppError("INVALID_INPUT", "root path is required", common.ErrInvalidInput)
	}

	var sources []Source
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			logger.Warn("walk error", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		src, err := Stat(path)
		if err != nil {
			logger.Warn("skipping file", "path", path, "error", err)
			stats.Failed++
			return nil
		}
		sources = append(sources, src)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return sources, stats, err
		}
		return sources, stats, fmt.Errorf("walk: %w", err)
	}

	logger.Info("discovered inputs", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	return sources, stats, nil
}
