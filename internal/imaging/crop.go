package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/annotation-audit/internal/geometry"
)

// PixelRect converts a fractional box into whole-pixel bounds relative to
// the image origin. Edges are rounded to the nearest pixel. A box with a
// non-positive extent maps to an empty rectangle.
func PixelRect(img image.Image, box geometry.Rect) image.Rectangle {
	if box.Width <= 0 || box.Height <= 0 {
		return image.Rectangle{}
	}

	min := img.Bounds().Min
	x1 := int(math.Round(box.Left)) + min.X
	y1 := int(math.Round(box.Top)) + min.Y
	x2 := int(math.Round(box.Right())) + min.X
	y2 := int(math.Round(box.Bottom())) + min.Y
	if x2 <= x1 || y2 <= y1 {
		return image.Rectangle{}
	}
	return image.Rect(x1, y1, x2, y2)
}

// CropRegion returns the pixels of img covered by box as a new NRGBA image
// whose bounds start at (0,0).
//
// Parts of the box outside the image are clipped away, so the result may be
// smaller than the box or empty. The result never aliases img.
func CropRegion(img image.Image, box geometry.Rect) *image.NRGBA {
	rect := PixelRect(img, box).Intersect(img.Bounds())
	if rect.Empty() {
		return image.NewNRGBA(image.Rectangle{})
	}
	return imaging.Crop(img, rect)
}

// EncodePNGBase64 encodes img as PNG and returns it base64-encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	if img.Bounds().Empty() {
		return "", fmt.Errorf("cannot encode empty image")
	}

	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode crop: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
