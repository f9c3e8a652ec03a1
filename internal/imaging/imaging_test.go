package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
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
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestParseDataURL(t *testing.T) {
	data := createTestPNG(10, 10)
	url := EncodeDataURL(data, "image/png")
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected data URL prefix: %s", url[:30])
	}

	got, mime, err := ParseDataURL(url)
	if err != nil {
		t.Fatalf("ParseDataURL: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("expected mime image/png, got %q", mime)
	}
	if !bytes.Equal(got, data) {
		t.Error("decoded bytes do not match original")
	}
}

func TestParseDataURLBareBase64(t *testing.T) {
	url := EncodeDataURL([]byte("hello"), "image/jpeg")
	bare := strings.SplitN(url, ",", 2)[1]

	got, mime, err := ParseDataURL(bare)
	if err != nil {
		t.Fatalf("ParseDataURL: %v", err)
	}
	if mime != "" {
		t.Errorf("expected empty mime for bare base64, got %q", mime)
	}
	if string(got) != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
}

func TestParseDataURLInvalid(t *testing.T) {
	if _, _, err := ParseDataURL("data:image/png;base64"); err == nil {
		t.Error("expected error for data URL without payload separator")
	}
	if _, _, err := ParseDataURL("!!not base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestProcessJPEG(t *testing.T) {
	result, err := Process(createTestJPEG(100, 100))
	if err != nil {
		t.Fatalf("Process JPEG: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", result.MIME)
	}
	if len(result.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestProcessPNG(t *testing.T) {
	result, err := Process(createTestPNG(100, 100))
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg (always outputs JPEG), got %s", result.MIME)
	}
}

func TestProcessDownscale(t *testing.T) {
	result, err := Process(createTestJPEG(2048, 2048))
	if err != nil {
		t.Fatalf("Process large image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		t.Errorf("expected max %dx%d, got %dx%d", MaxDimension, MaxDimension, bounds.Dx(), bounds.Dy())
	}
}

func TestProcessSmallImageNotUpscaled(t *testing.T) {
	result, err := Process(createTestJPEG(50, 50))
	if err != nil {
		t.Fatalf("Process small image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("small image should not be resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessInvalidFormat(t *testing.T) {
	if _, err := Process([]byte("not an image")); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestProcessGIFRejected(t *testing.T) {
	// GIF magic bytes.
	if _, err := Process([]byte("GIF89a...")); err == nil {
		t.Error("expected error for GIF")
	}
}
