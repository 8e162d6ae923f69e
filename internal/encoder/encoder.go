package encoder

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"

	"screensnap/internal/capture"
	"screensnap/internal/config"
)

// File describes a completed capture artifact on disk.
type File struct {
	Path      string
	CreatedAt time.Time
	SizeBytes int64
}

// preset maps a quality tier to concrete PNG parameters. Output is always
// PNG; the tier only changes compression effort and the downscale rule.
type preset struct {
	compression png.CompressionLevel
	// resizeOverWidth downscales images wider than this to maxWidth,
	// preserving aspect ratio. Zero disables downscaling.
	resizeOverWidth int
	maxWidth        int
}

var presets = map[config.Quality]preset{
	config.QualityLow:    {compression: png.BestCompression, resizeOverWidth: 2560, maxWidth: 2048},
	config.QualityMedium: {compression: png.DefaultCompression, resizeOverWidth: 2560, maxWidth: 2048},
	// High preserves every pixel: light compression, never downscaled,
	// at the cost of potentially large files.
	config.QualityHigh: {compression: png.BestSpeed},
}

// EncoderManager persists captures under quality-tier rules.
type EncoderManager struct{}

// NewEncoderManager creates an encoder.
func NewEncoderManager() *EncoderManager {
	return &EncoderManager{}
}

// Encode writes result into dir as a uniquely named PNG. The directory is
// created if missing. The image is encoded to a temp file first and renamed
// into place, so a failed encode leaves the filesystem exactly as it was.
func (em *EncoderManager) Encode(result capture.Result, quality config.Quality, dir, prefix string) (File, error) {
	p, ok := presets[quality]
	if !ok {
		p = presets[config.QualityLow]
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return File{}, fmt.Errorf("%w: creating %q: %v", ErrWrite, dir, err)
	}

	img := downscale(result.Image, p)

	tmp, err := os.CreateTemp(dir, ".capture-*.tmp")
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmpName := tmp.Name()

	enc := png.Encoder{CompressionLevel: p.compression}
	if err := enc.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return File{}, fmt.Errorf("%w: encoding png: %v", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return File{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	path, err := uniquePath(dir, prefix, result.Timestamp)
	if err != nil {
		os.Remove(tmpName)
		return File{}, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return File{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return File{Path: path, CreatedAt: result.Timestamp, SizeBytes: info.Size()}, nil
}

// uniquePath builds <prefix><yyyymmdd>_<hhmmss>.png, appending _<n> until the
// name is free so concurrent-second captures never collide.
func uniquePath(dir, prefix string, ts time.Time) (string, error) {
	stamp := ts.Format("20060102_150405")
	base := filepath.Join(dir, prefix+stamp)

	candidate := base + ".png"
	for n := 1; ; n++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil && !os.IsExist(err) {
			return "", fmt.Errorf("%w: %v", ErrWrite, err)
		}
		if n > 10000 {
			return "", fmt.Errorf("%w: could not find a free name under %s", ErrWrite, base)
		}
		candidate = fmt.Sprintf("%s_%d.png", base, n)
	}
}

// downscale shrinks img per the preset's rule using Catmull-Rom resampling.
func downscale(img *image.RGBA, p preset) image.Image {
	if p.resizeOverWidth <= 0 {
		return img
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	if width <= p.resizeOverWidth {
		return img
	}

	scale := float64(p.maxWidth) / float64(width)
	newWidth := p.maxWidth
	newHeight := int(float64(bounds.Dy()) * scale)
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}
