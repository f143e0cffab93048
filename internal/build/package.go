package build

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	asseterrors "github.com/conneroisu/assetcat/internal/errors"
)

// Package zips every file under outputDir into zipPath, ready to upload as a
// theme archive. Entries use slash-separated paths relative to outputDir.
// It returns the number of files added.
func Package(outputDir, zipPath string) (int, error) {
	if err := checkDir(outputDir); err != nil {
		return 0, err
	}

	absZip, err := filepath.Abs(zipPath)
	if err != nil {
		return 0, asseterrors.ErrWriteFailed(zipPath, err)
	}

	if dir := filepath.Dir(zipPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, asseterrors.ErrWriteFailed(zipPath, err)
		}
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return 0, asseterrors.ErrWriteFailed(zipPath, err)
	}

	zw := zip.NewWriter(f)
	count := 0

	walkErr := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && strings.Contains(d.Name(), ".tmp-") {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && abs == absZip {
			return nil
		}

		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err := io.Copy(w, src); err != nil {
			return fmt.Errorf("failed to add %s: %w", rel, err)
		}
		count++
		return nil
	})

	closeErr := zw.Close()
	if err := f.Close(); closeErr == nil {
		closeErr = err
	}
	if walkErr == nil {
		walkErr = closeErr
	}
	if walkErr != nil {
		os.Remove(zipPath)
		return 0, asseterrors.ErrWriteFailed(zipPath, walkErr)
	}

	return count, nil
}
