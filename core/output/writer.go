// Package output handles file naming and writing for SitemapGen outputs.
// The sitemap itself is always written as sitemap.xml, the name search
// engines look for; reports share the base name with their own extension.
package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultBaseName is the file name, without extension, of every output.
const DefaultBaseName = "sitemap"

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
	BaseName  string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	// Ensure the output directory exists.
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir, BaseName: DefaultBaseName}, nil
}

// Write stores data as <BaseName><ext> and returns the full path.
// The file is written to a temporary name first and renamed into place,
// so a reader never sees a half-written sitemap.
func (w *Writer) Write(data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, w.BaseName+ext)

	tmp, err := os.CreateTemp(w.OutputDir, "."+w.BaseName+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing file %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("renaming into %s: %w", path, err)
	}
	return path, nil
}
