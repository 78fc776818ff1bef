package audit

import (
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/annotation-audit/internal/annotation"
	"github.com/ironsheep/annotation-audit/internal/geometry"
)

// Validator runs the per-annotation rule battery.
//
// Every check may raise the annotation's severity and append a message;
// none of them stops the others from running.
type Validator struct {
	rules       Rules
	labels      vocabulary
	occlusions  vocabulary
	truncations vocabulary
	backgrounds vocabulary
}

// NewValidator builds a Validator from a copy of rules.
func NewValidator(rules Rules) (*Validator, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	r := rules.clone()
	return &Validator{
		rules:       r,
		labels:      newVocabulary(r.Labels),
		occlusions:  newVocabulary(r.OcclusionChoices),
		truncations: newVocabulary(r.TruncationChoices),
		backgrounds: newVocabulary(r.BackgroundColors),
	}, nil
}

// Rules returns a copy of the rules in effect.
func (v *Validator) Rules() Rules {
	return v.rules.clone()
}

// Validate runs the basic, size, position and color checks, in that order.
func (v *Validator) Validate(a *annotation.Annotation, img geometry.Dimensions) {
	v.CheckBasic(a, img)
	v.CheckSize(a, img)
	v.CheckPosition(a, img)
	v.CheckColor(a)
}

// CheckBasic verifies the record is complete, lies inside the image and
// uses only known vocabulary values.
func (v *Validator) CheckBasic(a *annotation.Annotation, img geometry.Dimensions) {
	box := a.Box

	if missing := a.MissingFields(); len(missing) > 0 {
		a.Report(annotation.Error, fmt.Sprintf("No size Missing: %s", strings.Join(missing, ", ")))
	}

	if box.Left < 0 || box.Top < 0 || box.Width < 0 || box.Height < 0 {
		a.Report(annotation.Error, fmt.Sprintf("Invalid size Left: %v Top: %v Width: %v Height: %v",
			box.Left, box.Top, box.Width, box.Height))
	}

	if box.Right() > float64(img.Width) || box.Bottom() > float64(img.Height) {
		a.Report(annotation.Error, fmt.Sprintf("Out of bounds Box max: %v, %v Image: %d, %d",
			box.Right(), box.Bottom(), img.Width, img.Height))
	}

	if !v.labels.has(a.Label) {
		a.Report(annotation.Error, fmt.Sprintf("Invalid label Label: %q", a.Label))
	}

	if !v.occlusions.has(a.Occlusion) || !v.truncations.has(a.Truncation) || !v.backgrounds.has(a.BackgroundColor) {
		a.Report(annotation.Error, fmt.Sprintf("Invalid attributes Occlusion: %q Truncation: %q Background color: %q",
			a.Occlusion, a.Truncation, a.BackgroundColor))
	}

	if a.Label == v.rules.NonVisibleLabel && a.BackgroundColor != v.rules.NotApplicableBackground {
		a.Report(annotation.Error, fmt.Sprintf("Label and background color mismatch Label: %s Background color: %s",
			a.Label, a.BackgroundColor))
	}
}

// CheckSize applies the size heuristics: degenerate boxes, fully truncated
// signs, boxes too small to read, boxes too large for the image and extreme
// aspect ratios.
func (v *Validator) CheckSize(a *annotation.Annotation, img geometry.Dimensions) {
	r := v.rules
	width, height := a.Box.Width, a.Box.Height

	if width == 0 || height == 0 {
		a.Report(annotation.Error, fmt.Sprintf("Zero size Size: %v, %v", width, height))
	}

	if a.Truncation == r.FullTruncation {
		a.Report(annotation.Error, fmt.Sprintf("%s truncated Label: %s Truncation: %s Size: %v, %v",
			r.FullTruncation, a.Label, a.Truncation, width, height))
	}

	if (width < r.MinSize || height < r.MinSize) && a.Truncation == r.NoTruncation {
		if a.Label != r.NonVisibleLabel {
			a.Report(annotation.Warning, fmt.Sprintf("Probably not legible Label: %s Size: %v, %v",
				a.Label, width, height))
		}
		// Heavily truncated signs are exempt.
		if a.Truncation != r.HeavyTruncation {
			a.Report(annotation.Error, fmt.Sprintf("Size too small %v, %v Minimum: %v",
				width, height, r.MinSize))
		}
	}

	if img.Width > 0 && img.Height > 0 {
		wr := width / float64(img.Width)
		hr := height / float64(img.Height)
		if wr > r.MaxSizeRatio || hr > r.MaxSizeRatio {
			a.Report(annotation.Error, fmt.Sprintf("Size too large relative to image %.3f Threshold: %v",
				math.Max(wr, hr), r.MaxSizeRatio))
		}
	}

	// Degenerate boxes were reported above and have no aspect ratio.
	if width > 0 && height > 0 {
		ratio := math.Max(width/height, height/width)
		if ratio > r.MaxAspectRatio && a.Truncation != r.HeavyTruncation {
			a.Report(annotation.Warning, fmt.Sprintf("Aspect ratio too extreme %.2f Threshold: %v",
				ratio, r.MaxAspectRatio))
		}
	}
}

// CheckPosition warns when the box's bottom edge falls into the lowest band
// of the image. Cameras mounted on a vehicle rarely see signs that low.
func (v *Validator) CheckPosition(a *annotation.Annotation, img geometry.Dimensions) {
	h := float64(img.Height)
	threshold := h - h*v.rules.LowPositionBand

	if bottom := a.Box.Bottom(); bottom >= threshold {
		a.Report(annotation.Warning, fmt.Sprintf("Position too low Label max: %.1f Image threshold: %.1f",
			bottom, threshold))
	}
}

// CheckColor applies the brightness and construction-orange heuristics.
// An annotation without pixels has no color and is skipped.
func (v *Validator) CheckColor(a *annotation.Annotation) {
	r := v.rules
	avg := a.Colors.Average
	if avg == nil {
		return
	}

	brightness := avg.Brightness()
	switch {
	case brightness < r.TooDark:
		a.Report(annotation.Warning, fmt.Sprintf("Color too dark Brightness: %.1f Threshold: %v",
			brightness, r.TooDark))
	case brightness > r.TooBright:
		a.Report(annotation.Warning, fmt.Sprintf("Color too bright Brightness: %.1f Threshold: %v",
			brightness, r.TooBright))
	case a.Label == r.ConstructionLabel && a.Colors.Dominant != nil:
		if !r.Orange.Contains(*a.Colors.Dominant) {
			a.Report(annotation.Warning, fmt.Sprintf("Label and color mismatch Label: %s Color: %s",
				a.Label, a.Colors.Dominant))
		}
	}
}
