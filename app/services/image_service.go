// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ImageService stores uploaded avatars and product photos
type ImageService interface {
	Store(data []byte, originalFilename, subdir string, maxDim int) (string, error)
	Remove(path string) error
}

// ImageServiceImpl implements ImageService on local disk. Every upload is
// decoded, resized to fit maxDim and re-encoded as JPEG, which also strips
// whatever metadata the client sent.
type ImageServiceImpl struct {
	baseDir string
}

const maxUploadSize = int64(10 * 1024 * 1024) // 10MB

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// NewImageService creates a new image service rooted at baseDir
func NewImageService(baseDir string) ImageService {
	return &ImageServiceImpl{baseDir: baseDir}
}

// Store validates, resizes and persists an uploaded image. It returns the
// path relative to the storage root.
func (s *ImageServiceImpl) Store(data []byte, originalFilename, subdir string, maxDim int) (string, error) {
	if int64(len(data)) > maxUploadSize {
		return "", fmt.Errorf("image exceeds maximum size of %d bytes", maxUploadSize)
	}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image format %q", ext)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := resizeImage(img, maxDim)
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	dir := filepath.Join(s.baseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	filename := uuid.New().String() + ".jpg"
	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, buf.Bytes(), 0o644); err != nil {
		return "", err
	}

	return filepath.Join(subdir, filename), nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *ImageServiceImpl) Remove(path string) error {
	if path == "" {
		return nil
	}

	fullPath := filepath.Join(s.baseDir, filepath.Clean(path))
	if !strings.HasPrefix(fullPath, filepath.Clean(s.baseDir)) {
		return fmt.Errorf("path escapes storage root")
	}

	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func resizeImage(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		nh = maxDim
		nw = int(float64(w) * float64(maxDim) / float64(h))
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	imagedraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, imagedraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
