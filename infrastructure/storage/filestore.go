// Package storage provides image and text file access for the UI.
package storage

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"stylelens-go/core/apperr"
)

// SupportedImageExts lists the extensions offered by the open dialog.
var SupportedImageExts = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".webp"}

// JPEGQuality is used when saving results as JPEG.
const JPEGQuality = 95

func init() {
	// imaging registers jpeg/png/gif/tiff/bmp through image.Decode;
	// webp needs an explicit registration.
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
}

// FileStore loads source images and saves processing results. It remembers
// the directory of the last successful operation so dialogs can reopen there.
type FileStore struct {
	mu      sync.Mutex
	lastDir string
}

// NewFileStore creates a file store starting in the user's home directory.
func NewFileStore() *FileStore {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &FileStore{lastDir: home}
}

// LastDir returns the directory of the most recent load or save.
func (s *FileStore) LastDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDir
}

func (s *FileStore) rememberDir(path string) {
	dir := filepath.Dir(path)
	s.mu.Lock()
	s.lastDir = dir
	s.mu.Unlock()
}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedImageExts {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadImage reads and decodes an image from disk.
func (s *FileStore) LoadImage(path string) (image.Image, error) {
	if !IsSupportedImage(path) {
		return nil, apperr.NewInvalidInput(fmt.Sprintf("unsupported image type %q", filepath.Ext(path)))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.NewFileIO("open", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, apperr.NewFileIO("decode", path, err)
	}

	s.rememberDir(path)
	return img, nil
}

// SaveImage writes an image to disk. The format follows the extension;
// a missing or unknown extension saves as PNG.
func (s *FileStore) SaveImage(img image.Image, path string) error {
	if img == nil {
		return apperr.NewInvalidInput("no image to save")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		path += ".png"
		ext = ".png"
	}

	var err error
	switch ext {
	case ".jpg", ".jpeg":
		err = imaging.Save(img, path, imaging.JPEGQuality(JPEGQuality))
	case ".png":
		err = imaging.Save(img, path)
	case ".bmp":
		err = encodeTo(path, func(f *os.File) error { return bmp.Encode(f, img) })
	case ".tiff":
		err = encodeTo(path, func(f *os.File) error { return tiff.Encode(f, img, nil) })
	case ".webp":
		err = encodeTo(path, func(f *os.File) error {
			return webp.Encode(f, img, &webp.Options{Quality: JPEGQuality})
		})
	default:
		return apperr.NewInvalidInput(fmt.Sprintf("unsupported save format %q", ext))
	}
	if err != nil {
		return apperr.NewFileIO("save", path, err)
	}

	s.rememberDir(path)
	return nil
}

// SaveText writes UTF-8 text to disk, defaulting the extension to .txt.
func (s *FileStore) SaveText(text, path string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.NewInvalidInput("no text to save")
	}
	if filepath.Ext(path) == "" {
		path += ".txt"
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return apperr.NewFileIO("save", path, err)
	}

	s.rememberDir(path)
	return nil
}

func encodeTo(path string, encode func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
