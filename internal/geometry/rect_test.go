package geometry

import (
	"math"
	"testing"
)

func TestRect_Edges(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Width: 30.5, Height: 40}

	if r.Right() != 40.5 {
		t.Errorf("Right: got %v, want 40.5", r.Right())
	}
	if r.Bottom() != 60 {
		t.Errorf("Bottom: got %v, want 60", r.Bottom())
	}
	if r.Area() != 1220 {
		t.Errorf("Area: got %v, want 1220", r.Area())
	}
}

func TestRect_AreaNonPositive(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
	}{
		{"zero width", Rect{Width: 0, Height: 5}},
		{"zero height", Rect{Width: 5, Height: 0}},
		{"negative width", Rect{Width: -3, Height: 5}},
		{"both negative", Rect{Width: -3, Height: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Area(); got != 0 {
				t.Errorf("Area: got %v, want 0", got)
			}
		})
	}
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"identical", Rect{10, 10, 50, 50}, Rect{10, 10, 50, 50}, 1.0},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 10, 10}, 0},
		{"touching edges", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, 0},
		{"half shifted", Rect{0, 0, 10, 10}, Rect{5, 0, 10, 10}, 50.0 / 150.0},
		{"contained", Rect{0, 0, 10, 10}, Rect{0, 0, 5, 10}, 0.5},
		{"shifted diagonal", Rect{10, 10, 50, 50}, Rect{15, 15, 50, 50}, 2025.0 / 2975.0},
		{"both zero area", Rect{5, 5, 0, 0}, Rect{5, 5, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IoU(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IoU: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIoU_Symmetric(t *testing.T) {
	boxes := []Rect{
		{0, 0, 10, 10},
		{3, 4, 12, 7},
		{8.5, 1.25, 4, 20},
		{0, 0, 0, 0},
		{-5, -5, 9, 9},
	}

	for i := range boxes {
		for j := range boxes {
			ab := IoU(boxes[i], boxes[j])
			ba := IoU(boxes[j], boxes[i])
			if ab != ba {
				t.Errorf("IoU(%v,%v)=%v but IoU(%v,%v)=%v", boxes[i], boxes[j], ab, boxes[j], boxes[i], ba)
			}
		}
	}
}
