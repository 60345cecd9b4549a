package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessJPEGPassThrough(t *testing.T) {
	data := createTestJPEG(100, 80)
	result, err := Process(bytes.NewReader(data), 0)
	if err != nil {
		t.Fatalf("Process JPEG: %v", err)
	}
	if result.MIME != "image/jpeg" || result.Ext != "jpg" {
		t.Errorf("expected image/jpeg jpg, got %s %s", result.MIME, result.Ext)
	}
	if !bytes.Equal(result.Data, data) {
		t.Error("expected photo within bounds to be passed through unchanged")
	}
	if result.Width != 100 || result.Height != 80 {
		t.Errorf("expected 100x80, got %dx%d", result.Width, result.Height)
	}
}

func TestProcessPNGKeepsFormat(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestPNG(300, 100)), 150)
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if result.MIME != "image/png" || result.Ext != "png" {
		t.Errorf("expected png output, got %s", result.MIME)
	}
	if result.Width != 150 || result.Height != 50 {
		t.Errorf("expected 150x50, got %dx%d", result.Width, result.Height)
	}
}

func TestProcessDownscale(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestJPEG(1200, 2400)), 600)
	if err != nil {
		t.Fatalf("Process large image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 300 || b.Dy() != 600 {
		t.Errorf("expected 300x600, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestProcessRejectsOtherFormats(t *testing.T) {
	inputs := map[string][]byte{
		"text":  []byte("not an image"),
		"gif":   []byte("GIF89a..."),
		"empty": nil,
	}
	for name, data := range inputs {
		_, err := Process(bytes.NewReader(data), 0)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("%s: expected ErrUnsupportedFormat, got %v", name, err)
		}
	}
}

func TestProcessRejectsTruncatedJPEG(t *testing.T) {
	data := createTestJPEG(10, 10)[:4]
	if _, err := Process(bytes.NewReader(data), 0); err == nil {
		t.Error("expected error for truncated JPEG")
	}
}
