// Package romfile loads ROM images from disk, transparently
// decompressing the common archive formats ROM dumps circulate in.
package romfile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/sevenzip"
)

// Load reads filename and returns its decompressed contents. A bare
// .gb/.gbc file, or any file with no recognized archive extension, is
// returned as-is; .gz/.zip/.7z are transparently decompressed, taking
// the first entry found inside multi-file archives.
func Load(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(filename) {
	case "", ".gb", ".gbc":
		return data, nil
	case ".gz":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("romfile: opening gzip stream: %w", err)
		}
		return io.ReadAll(r)
	case ".zip":
		zr, err := zip.NewReader(f, int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("romfile: opening zip archive: %w", err)
		}
		if len(zr.File) == 0 {
			return nil, fmt.Errorf("romfile: zip archive %s is empty", filename)
		}
		rc, err := zr.File[0].Open()
		if err != nil {
			return nil, fmt.Errorf("romfile: reading zip entry: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	case ".7z":
		zr, err := sevenzip.NewReader(f, int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("romfile: opening 7z archive: %w", err)
		}
		if len(zr.File) == 0 {
			return nil, fmt.Errorf("romfile: 7z archive %s is empty", filename)
		}
		rc, err := zr.File[0].Open()
		if err != nil {
			return nil, fmt.Errorf("romfile: reading 7z entry: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	default:
		return data, nil
	}
}
