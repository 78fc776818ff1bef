package geometry

import "math"

// Rect is an axis-aligned box given by its top-left corner and extent.
//
// A Rect is never rejected at construction time. Negative extents or boxes
// outside the image are reported by the audit rules instead.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns Left + Width.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns Top + Height.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Area returns the box area, or 0 when either extent is not positive.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Intersect returns the overlapping box of r and o. The result has zero
// area when the boxes do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	left := math.Max(r.Left, o.Left)
	top := math.Max(r.Top, o.Top)
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())

	if right <= left || bottom <= top {
		return Rect{Left: left, Top: top}
	}
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// IoU returns the intersection-over-union of two boxes.
//
// The result is symmetric, 1.0 for identical non-empty boxes and 0 for
// disjoint boxes. Two zero-area boxes yield 0 rather than NaN.
func IoU(a, b Rect) float64 {
	inter := a.Intersect(b).Area()
	if inter == 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Dimensions is the pixel size of a source image.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
