package annotation

import (
	"image"

	"github.com/ironsheep/annotation-audit/internal/geometry"
	"github.com/ironsheep/annotation-audit/internal/imaging"
)

// Attributes are the categorical properties attached to a record.
type Attributes struct {
	Occlusion       string `json:"occlusion"`
	Truncation      string `json:"truncation"`
	BackgroundColor string `json:"background_color"`
}

// Record is one raw annotation as exported by the labeling service.
// Box fields are pointers so a missing value can be told apart from zero.
type Record struct {
	UUID       string     `json:"uuid"`
	Label      string     `json:"label"`
	Attributes Attributes `json:"attributes"`
	Left       *float64   `json:"left"`
	Top        *float64   `json:"top"`
	Width      *float64   `json:"width"`
	Height     *float64   `json:"height"`
}

// Annotation is a labeled region of a task image together with the color
// data derived from its pixels and the findings reported against it.
type Annotation struct {
	ID              string
	Label           string
	Occlusion       string
	Truncation      string
	BackgroundColor string

	// Box is the labeled region. Missing coordinates are zero here and are
	// listed by MissingFields.
	Box geometry.Rect

	// Region holds the pixels under Box, clipped to the image. It is empty
	// until AttachImage runs.
	Region *image.NRGBA

	// Colors is the profile of Region.
	Colors imaging.Profile

	missing []string
	diag    Diagnostics
}

// New builds an Annotation from a raw record.
func New(rec Record) *Annotation {
	a := &Annotation{
		ID:              rec.UUID,
		Label:           rec.Label,
		Occlusion:       rec.Attributes.Occlusion,
		Truncation:      rec.Attributes.Truncation,
		BackgroundColor: rec.Attributes.BackgroundColor,
		Colors:          imaging.Profile{Palette: []imaging.PaletteEntry{}},
	}

	a.Box.Left = a.field("left", rec.Left)
	a.Box.Top = a.field("top", rec.Top)
	a.Box.Width = a.field("width", rec.Width)
	a.Box.Height = a.field("height", rec.Height)

	return a
}

func (a *Annotation) field(name string, v *float64) float64 {
	if v == nil {
		a.missing = append(a.missing, name)
		return 0
	}
	return *v
}

// MissingFields lists the box fields absent from the source record.
func (a *Annotation) MissingFields() []string {
	return a.missing
}

// AttachImage crops the annotation's pixels out of img and profiles them.
// It is meant to run once, right after construction.
func (a *Annotation) AttachImage(img image.Image, opts imaging.ProfileOptions) {
	a.Region = imaging.CropRegion(img, a.Box)
	a.Colors = imaging.ProfileRegion(a.Region, opts)
}

// Report raises the annotation's severity to at least sev and records msg.
func (a *Annotation) Report(sev Severity, msg string) {
	a.diag.Report(sev, msg)
}

// Severity returns the highest level reported so far.
func (a *Annotation) Severity() Severity {
	return a.diag.Severity()
}

// Messages returns the reported messages in order.
func (a *Annotation) Messages() []string {
	return a.diag.Messages()
}
