package encoder

import (
	"errors"
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"screensnap/internal/capture"
	"screensnap/internal/config"
)

func noisyCapture(t *testing.T, w, h int) capture.Result {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(42))
	for i := range img.Pix {
		img.Pix[i] = byte(rng.Intn(256))
	}
	return capture.Result{
		Image:     img,
		Timestamp: time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC),
	}
}

func TestEncodeWritesNamedPNG(t *testing.T) {
	dir := t.TempDir()
	em := NewEncoderManager()

	file, err := em.Encode(noisyCapture(t, 320, 200), config.QualityLow, dir, "screenshot_")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	wantName := "screenshot_20240601_123045.png"
	if filepath.Base(file.Path) != wantName {
		t.Fatalf("expected name %q, got %q", wantName, filepath.Base(file.Path))
	}
	if file.SizeBytes <= 0 {
		t.Fatalf("expected positive file size, got %d", file.SizeBytes)
	}

	f, err := os.Open(file.Path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not valid png: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("unexpected decoded bounds %v", b)
	}
}

func TestEncodeCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "shots")
	em := NewEncoderManager()

	if _, err := em.Encode(noisyCapture(t, 64, 64), config.QualityLow, dir, "screenshot_"); err != nil {
		t.Fatalf("encode into missing directory: %v", err)
	}
}

func TestEncodeDisambiguatesCollidingTimestamps(t *testing.T) {
	dir := t.TempDir()
	em := NewEncoderManager()
	result := noisyCapture(t, 64, 64)

	first, err := em.Encode(result, config.QualityLow, dir, "screenshot_")
	if err != nil {
		t.Fatalf("first encode: %v", err)
	}
	second, err := em.Encode(result, config.QualityLow, dir, "screenshot_")
	if err != nil {
		t.Fatalf("second encode: %v", err)
	}

	if first.Path == second.Path {
		t.Fatalf("expected unique paths, both were %q", first.Path)
	}
	if !strings.HasSuffix(second.Path, "_1.png") {
		t.Fatalf("expected disambiguator suffix, got %q", second.Path)
	}
}

func TestEncodeWriteErrorLeavesNothingBehind(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "shots")
	if err := os.WriteFile(blocker, []byte("in the way"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	em := NewEncoderManager()
	_, err := em.Encode(noisyCapture(t, 64, 64), config.QualityLow, blocker, "screenshot_")
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}

	entries, readErr := os.ReadDir(base)
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the blocker file, got %d entries", len(entries))
	}
}

func TestEncodeLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	em := NewEncoderManager()
	if _, err := em.Encode(noisyCapture(t, 64, 64), config.QualityHigh, dir, "screenshot_"); err != nil {
		t.Fatalf("encode: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("leftover temp file %q", e.Name())
		}
	}
}

// gradientCapture is compressible, so the tier difference shows up in size.
func gradientCapture(t *testing.T, w, h int) capture.Result {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i] = byte(x)
			img.Pix[i+1] = byte(y)
			img.Pix[i+2] = byte(x + y)
			img.Pix[i+3] = 0xff
		}
	}
	return capture.Result{
		Image:     img,
		Timestamp: time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC),
	}
}

func TestQualityTierCompression(t *testing.T) {
	dir := t.TempDir()
	em := NewEncoderManager()
	result := gradientCapture(t, 800, 600)

	low, err := em.Encode(result, config.QualityLow, dir, "low_")
	if err != nil {
		t.Fatalf("low encode: %v", err)
	}
	high, err := em.Encode(result, config.QualityHigh, dir, "high_")
	if err != nil {
		t.Fatalf("high encode: %v", err)
	}

	if low.SizeBytes > high.SizeBytes {
		t.Fatalf("low quality (%d bytes) should not exceed high quality (%d bytes)", low.SizeBytes, high.SizeBytes)
	}
}

func TestHighQualityNeverDownscales(t *testing.T) {
	dir := t.TempDir()
	em := NewEncoderManager()

	file, err := em.Encode(noisyCapture(t, 3840, 100), config.QualityHigh, dir, "screenshot_")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := decodedWidth(t, file.Path); got != 3840 {
		t.Fatalf("high quality was downscaled to width %d", got)
	}
}

func TestLowQualityDownscalesWideCaptures(t *testing.T) {
	dir := t.TempDir()
	em := NewEncoderManager()

	file, err := em.Encode(noisyCapture(t, 3840, 100), config.QualityLow, dir, "screenshot_")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := decodedWidth(t, file.Path); got != 2048 {
		t.Fatalf("expected downscale to 2048, got width %d", got)
	}
}

func decodedWidth(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img.Bounds().Dx()
}
