// Package drawing converts between embedded raster graphics in the
// package and externally addressable image files referenced by the
// semantic tree.
package drawing

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// EMU (English Metric Unit) conversion factors. All conversions are
// exact integer arithmetic, so repeated round trips cannot accumulate
// drift.
const (
	// EMUPerInch is the number of EMUs in one inch.
	EMUPerInch int64 = 914400
	// EMUPerPixel is the number of EMUs in one pixel at 96 DPI
	// (914400 / 96).
	EMUPerPixel int64 = 9525
	// EMUPerPoint is the number of EMUs in one typographic point.
	EMUPerPoint int64 = 12700
)

// PixelsToEMU converts a 96-DPI pixel count to EMUs.
func PixelsToEMU(px int) int64 {
	return int64(px) * EMUPerPixel
}

// EMUToPixels converts EMUs to whole 96-DPI pixels, rounding to
// nearest.
func EMUToPixels(emu int64) int {
	return int((emu + EMUPerPixel/2) / EMUPerPixel)
}

// IntrinsicSizeEMU decodes an image header and returns its pixel
// dimensions converted to EMU at 96 DPI. Supported formats: png, jpeg,
// gif, bmp, tiff, webp.
func IntrinsicSizeEMU(data []byte) (width, height int64, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image header: %w", err)
	}
	return PixelsToEMU(cfg.Width), PixelsToEMU(cfg.Height), nil
}
