// Package banner fits images to the Open-Graph preview size.
package banner

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	_ "image/gif"

	"golang.org/x/image/draw"
)

// Open-Graph images are expected at exactly 1200x630.
const (
	OGWidth  = 1200
	OGHeight = 630
)

// jpegQuality balances banner file size against visible artifacts.
const jpegQuality = 90

// Fit scales and crops an image to exactly 1200x630: downscale to
// width 1200, center-crop when taller than 630, center-pad on a
// transparent canvas when shorter.
func Fit(img image.Image, logger *slog.Logger) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w != OGWidth {
		newH := h * OGWidth / w

		logger.Info("resizing banner",
			slog.String("from", fmt.Sprintf("%dx%d", w, h)),
			slog.String("to", fmt.Sprintf("%dx%d", OGWidth, newH)),
		)

		dst := image.NewRGBA(image.Rect(0, 0, OGWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

		img = dst
		w, h = OGWidth, newH
		bounds = img.Bounds()
	}

	if h > OGHeight {
		logger.Info("cropping banner", slog.Int("height", h))

		top := (h - OGHeight) / 2
		dst := image.NewRGBA(image.Rect(0, 0, OGWidth, OGHeight))
		draw.Draw(dst, dst.Bounds(), img, image.Pt(bounds.Min.X, bounds.Min.Y+top), draw.Src)

		return dst
	}

	if h < OGHeight {
		dst := image.NewRGBA(image.Rect(0, 0, OGWidth, OGHeight))
		offset := (OGHeight - h) / 2
		draw.Draw(dst, image.Rect(0, offset, OGWidth, offset+h), img, bounds.Min, draw.Over)

		return dst
	}

	return img
}

// hasAlpha reports whether any pixel is not fully opaque.
func hasAlpha(img image.Image) bool {
	bounds := img.Bounds()

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}

	return false
}

// Save encodes the image at path, choosing PNG when the image carries
// transparency and JPEG otherwise. The returned path carries the
// matching extension.
func Save(img image.Image, path string, logger *slog.Logger) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	ext := ".jpg"
	if hasAlpha(img) {
		ext = ".png"
	}

	path = strippedExt(path) + ext

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	if ext == ".png" {
		err = png.Encode(file, img)
	} else {
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality})
	}

	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}

	logger.Info("wrote banner", slog.String("path", path))

	return path, nil
}

func strippedExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}

// Generate fits the source image to the Open-Graph size and writes it
// to dstPath (extension adjusted to the chosen encoding). Returns the
// path actually written.
func Generate(srcPath, dstPath string, logger *slog.Logger) (string, error) {
	img, err := LoadImage(srcPath)
	if err != nil {
		return "", err
	}

	return Save(Fit(img, logger), dstPath, logger)
}

// LoadImage decodes an image file.
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return img, nil
}
