package imaging

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Color is an RGB triple in 0-255 units that may carry a fractional part,
// as produced by channel averaging or cluster centers.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Brightness returns the sum of the three channels (0-765).
func (c Color) Brightness() float64 {
	return c.R + c.G + c.B
}

// String formats the color as "[r g b]" with one decimal.
func (c Color) String() string {
	return fmt.Sprintf("[%.1f %.1f %.1f]", c.R, c.G, c.B)
}

func fromColorful(c colorful.Color) Color {
	return Color{R: c.R * 255.0, G: c.G * 255.0, B: c.B * 255.0}
}

// PaletteEntry is one cluster of a dominant-color palette.
type PaletteEntry struct {
	Hex        string   `json:"hex"`        // Hex format "#RRGGBB"
	RGB        RGBColor `json:"rgb"`        // Cluster center rounded to 8 bits
	Percentage float64  `json:"percentage"` // Share of region pixels (0-1)
	Pixels     int      `json:"pixels"`     // Number of pixels assigned to the cluster
}

// Profile summarizes the colors of a pixel region.
//
// Average and Dominant are nil when the region has no pixels. Palette is
// sorted by Percentage (descending), so Palette[0] is the dominant cluster.
type Profile struct {
	Average  *Color         `json:"average,omitempty"`
	Dominant *Color         `json:"dominant,omitempty"`
	Palette  []PaletteEntry `json:"palette"`
}

// ProfileOptions controls the k-means clustering used for palette extraction.
type ProfileOptions struct {
	// Clusters is the maximum number of clusters; the effective k is
	// min(Clusters, pixel count).
	Clusters int `json:"clusters" validate:"gte=1"`

	// MaxIterations bounds each clustering attempt.
	MaxIterations int `json:"max_iterations" validate:"gte=1"`

	// Epsilon stops an attempt once no center moves more than this many
	// RGB units between iterations.
	Epsilon float64 `json:"epsilon" validate:"gt=0"`

	// Attempts is the number of random restarts; the most compact result wins.
	Attempts int `json:"attempts" validate:"gte=1"`

	// Seed makes clustering reproducible.
	Seed int64 `json:"seed"`
}

// DefaultProfileOptions returns k=5, 200 iterations, epsilon 0.1, 10 attempts.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		Clusters:      5,
		MaxIterations: 200,
		Epsilon:       0.1,
		Attempts:      10,
		Seed:          1,
	}
}

// ProfileRegion computes the average color and dominant palette of img.
//
// Alpha is ignored; only the RGB channels of each pixel contribute. An
// empty region is not an error and yields a Profile with nil colors and an
// empty palette.
//
// # Algorithm
//
//  1. Average: channel-wise arithmetic mean over all pixels
//  2. Clustering: k-means in RGB space with k = min(Clusters, pixels),
//     centers seeded from k distinct random pixels
//  3. Each attempt stops after MaxIterations or when the largest center
//     movement drops below Epsilon
//  4. The attempt with the lowest compactness (sum of squared distances)
//     is kept
//  5. A cluster that loses all its pixels is reseeded at the farthest pixel;
//     clusters still empty at the end are dropped from the palette
func ProfileRegion(img *image.NRGBA, opts ProfileOptions) Profile {
	pixels, sums := regionPixels(img)
	if len(pixels) == 0 {
		return Profile{Palette: []PaletteEntry{}}
	}

	n := float64(len(pixels))
	avg := Color{
		R: float64(sums[0]) / n,
		G: float64(sums[1]) / n,
		B: float64(sums[2]) / n,
	}

	centers, counts := kmeans(pixels, opts)

	palette := make([]PaletteEntry, 0, len(centers))
	dominant := -1
	for i, c := range centers {
		if counts[i] == 0 {
			continue
		}
		if dominant < 0 || counts[i] > counts[dominant] {
			dominant = i
		}
		r, g, b := c.Clamped().RGB255()
		palette = append(palette, PaletteEntry{
			Hex:        c.Clamped().Hex(),
			RGB:        RGBColor{R: r, G: g, B: b},
			Percentage: float64(counts[i]) / n,
			Pixels:     counts[i],
		})
	}

	sort.SliceStable(palette, func(i, j int) bool {
		return palette[i].Pixels > palette[j].Pixels
	})

	dom := fromColorful(centers[dominant])
	return Profile{
		Average:  &avg,
		Dominant: &dom,
		Palette:  palette,
	}
}

// regionPixels flattens the NRGBA pixel buffer into colors in 0-1 units and
// returns the per-channel 8-bit sums alongside.
func regionPixels(img *image.NRGBA) ([]colorful.Color, [3]uint64) {
	var sums [3]uint64
	if img == nil {
		return nil, sums
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, sums
	}

	pixels := make([]colorful.Color, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			p := img.Pix[off+x*4 : off+x*4+3 : off+x*4+3]
			sums[0] += uint64(p[0])
			sums[1] += uint64(p[1])
			sums[2] += uint64(p[2])
			pixels = append(pixels, colorful.Color{
				R: float64(p[0]) / 255.0,
				G: float64(p[1]) / 255.0,
				B: float64(p[2]) / 255.0,
			})
		}
	}
	return pixels, sums
}

// kmeans clusters pixels and returns the centers of the best attempt along
// with the number of pixels assigned to each center.
func kmeans(pixels []colorful.Color, opts ProfileOptions) ([]colorful.Color, []int) {
	k := opts.Clusters
	if k > len(pixels) {
		k = len(pixels)
	}
	if k < 1 {
		k = 1
	}
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}
	// Epsilon is expressed in RGB units; centers live in 0-1 units.
	eps := opts.Epsilon / 255.0

	rng := rand.New(rand.NewSource(opts.Seed))
	labels := make([]int, len(pixels))

	var bestCenters []colorful.Color
	var bestCounts []int
	bestCompactness := math.Inf(1)

	for a := 0; a < attempts; a++ {
		centers := make([]colorful.Color, k)
		for i, idx := range rng.Perm(len(pixels))[:k] {
			centers[i] = pixels[idx]
		}

		for iter := 0; iter < opts.MaxIterations; iter++ {
			assign(pixels, centers, labels)

			next := recenter(pixels, labels, centers)
			moved := 0.0
			for i := range centers {
				if d := centers[i].DistanceRgb(next[i]); d > moved {
					moved = d
				}
			}
			centers = next
			if moved < eps {
				break
			}
		}

		compactness := assign(pixels, centers, labels)
		if compactness < bestCompactness {
			bestCompactness = compactness
			bestCenters = centers
			bestCounts = make([]int, k)
			for _, l := range labels {
				bestCounts[l]++
			}
		}
	}

	return bestCenters, bestCounts
}

// assign labels every pixel with its nearest center and returns the sum of
// squared distances.
func assign(pixels, centers []colorful.Color, labels []int) float64 {
	total := 0.0
	for i, p := range pixels {
		best, bestDist := 0, math.Inf(1)
		for c, center := range centers {
			dr, dg, db := p.R-center.R, p.G-center.G, p.B-center.B
			d := dr*dr + dg*dg + db*db
			if d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
		total += bestDist
	}
	return total
}

// recenter moves each center to the mean of its pixels. A center left with
// no pixels is reseeded at the pixel farthest from its own center, unless
// every pixel already sits exactly on a center.
func recenter(pixels []colorful.Color, labels []int, centers []colorful.Color) []colorful.Color {
	sums := make([]colorful.Color, len(centers))
	counts := make([]int, len(centers))
	for i, p := range pixels {
		l := labels[i]
		sums[l].R += p.R
		sums[l].G += p.G
		sums[l].B += p.B
		counts[l]++
	}

	next := make([]colorful.Color, len(centers))
	for i := range centers {
		if counts[i] == 0 {
			next[i] = centers[i]
			continue
		}
		n := float64(counts[i])
		next[i] = colorful.Color{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
	}

	for i := range next {
		if counts[i] != 0 {
			continue
		}
		far, farDist := -1, 0.0
		for j, p := range pixels {
			if d := p.DistanceRgb(next[labels[j]]); d > farDist {
				far, farDist = j, d
			}
		}
		if far < 0 {
			break
		}
		counts[labels[far]]--
		labels[far] = i
		counts[i] = 1
		next[i] = pixels[far]
	}
	return next
}
