package drawing

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestPixelsToEMU(t *testing.T) {
	tests := []struct {
		px   int
		want int64
	}{
		{0, 0},
		{1, 9525},
		{96, 914400}, // one inch at 96 DPI
		{200, 1905000},
	}
	for _, tt := range tests {
		if got := PixelsToEMU(tt.px); got != tt.want {
			t.Errorf("PixelsToEMU(%d) = %d, want %d", tt.px, got, tt.want)
		}
	}
}

func TestEMUToPixelsRoundTrip(t *testing.T) {
	for _, px := range []int{1, 10, 96, 500, 1920} {
		if got := EMUToPixels(PixelsToEMU(px)); got != px {
			t.Errorf("round trip for %d px gave %d", px, got)
		}
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestIntrinsicSizeEMU(t *testing.T) {
	data := encodePNG(t, 200, 100)
	w, h, err := IntrinsicSizeEMU(data)
	if err != nil {
		t.Fatalf("IntrinsicSizeEMU failed: %v", err)
	}
	if w != 200*EMUPerPixel {
		t.Errorf("width = %d, want %d", w, 200*EMUPerPixel)
	}
	if h != 100*EMUPerPixel {
		t.Errorf("height = %d, want %d", h, 100*EMUPerPixel)
	}
}

func TestIntrinsicSizeEMURejectsGarbage(t *testing.T) {
	if _, _, err := IntrinsicSizeEMU([]byte("not an image")); err == nil {
		t.Error("expected error for undecodable data")
	}
}
