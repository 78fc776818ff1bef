package audit

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ironsheep/annotation-audit/internal/imaging"
)

// OrangeBand is the RGB window a construction sign's dominant color must
// fall in: Red > MinRed, MinGreen < Green < MaxGreen, Blue < MaxBlue.
type OrangeBand struct {
	MinRed   float64 `json:"min_red" validate:"gte=0,lte=255"`
	MinGreen float64 `json:"min_green" validate:"gte=0,lte=255"`
	MaxGreen float64 `json:"max_green" validate:"gte=0,lte=255,gtfield=MinGreen"`
	MaxBlue  float64 `json:"max_blue" validate:"gte=0,lte=255"`
}

// Contains reports whether the color lies strictly inside the band.
func (o OrangeBand) Contains(c imaging.Color) bool {
	return c.R > o.MinRed && c.G > o.MinGreen && c.G < o.MaxGreen && c.B < o.MaxBlue
}

// Rules holds every threshold and vocabulary the audit uses. A Pipeline
// copies the Rules it is built with, so later changes to the value passed
// in have no effect on it.
type Rules struct {
	// Closed vocabularies.
	Labels            []string `json:"labels" validate:"min=1,dive,required"`
	OcclusionChoices  []string `json:"occlusion_choices" validate:"min=1,dive,required"`
	TruncationChoices []string `json:"truncation_choices" validate:"min=1,dive,required"`
	BackgroundColors  []string `json:"background_colors" validate:"min=1,dive,required"`

	// Special vocabulary values the checks key on.
	NonVisibleLabel         string `json:"non_visible_label" validate:"required"`
	ConstructionLabel       string `json:"construction_label" validate:"required"`
	NotApplicableBackground string `json:"not_applicable_background" validate:"required"`
	NoTruncation            string `json:"no_truncation" validate:"required"`
	HeavyTruncation         string `json:"heavy_truncation" validate:"required"`
	FullTruncation          string `json:"full_truncation" validate:"required"`

	// Size heuristics.
	MinSize        float64 `json:"min_size" validate:"gt=0"`
	MaxSizeRatio   float64 `json:"max_size_ratio" validate:"gt=0"`
	MaxAspectRatio float64 `json:"max_aspect_ratio" validate:"gt=1"`

	// LowPositionBand is the fraction of the image height, measured from the
	// bottom, where a box's bottom edge is suspicious.
	LowPositionBand float64 `json:"low_position_band" validate:"gte=0,lte=1"`

	// Brightness is the sum of the average color channels (0-765).
	TooDark   float64    `json:"too_dark" validate:"gte=0,lte=765"`
	TooBright float64    `json:"too_bright" validate:"gte=0,lte=765,gtfield=TooDark"`
	Orange    OrangeBand `json:"orange"`

	// IoU thresholds; both comparisons are strict.
	OverlapIoU   float64 `json:"overlap_iou" validate:"gt=0,lt=1,ltfield=DuplicateIoU"`
	DuplicateIoU float64 `json:"duplicate_iou" validate:"gt=0,lte=1"`

	// Profile configures color clustering.
	Profile imaging.ProfileOptions `json:"profile"`
}

// DefaultRules returns the thresholds and vocabularies of the traffic sign
// labeling project.
func DefaultRules() Rules {
	return Rules{
		Labels: []string{
			"traffic_control_sign",
			"construction_sign",
			"information_sign",
			"policy_sign",
			"non_visible_face",
		},
		OcclusionChoices:  []string{"0%", "25%", "50%", "75%", "100%"},
		TruncationChoices: []string{"0%", "25%", "50%", "75%", "100%"},
		BackgroundColors: []string{
			"white", "red", "orange", "yellow", "green", "blue", "other", "not_applicable",
		},

		NonVisibleLabel:         "non_visible_face",
		ConstructionLabel:       "construction_sign",
		NotApplicableBackground: "not_applicable",
		NoTruncation:            "0%",
		HeavyTruncation:         "75%",
		FullTruncation:          "100%",

		MinSize:        4,
		MaxSizeRatio:   0.6,
		MaxAspectRatio: 6,

		LowPositionBand: 0.15,

		TooDark:   90,
		TooBright: 650,
		Orange:    OrangeBand{MinRed: 150, MinGreen: 50, MaxGreen: 140, MaxBlue: 50},

		OverlapIoU:   0.5,
		DuplicateIoU: 0.9,

		Profile: imaging.DefaultProfileOptions(),
	}
}

// Validate checks the rules for internal consistency.
func (r Rules) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	return nil
}

// clone returns a deep copy so the caller's slices cannot alias ours.
func (r Rules) clone() Rules {
	c := r
	c.Labels = append([]string(nil), r.Labels...)
	c.OcclusionChoices = append([]string(nil), r.OcclusionChoices...)
	c.TruncationChoices = append([]string(nil), r.TruncationChoices...)
	c.BackgroundColors = append([]string(nil), r.BackgroundColors...)
	return c
}

type vocabulary map[string]struct{}

func newVocabulary(values []string) vocabulary {
	v := make(vocabulary, len(values))
	for _, s := range values {
		v[s] = struct{}{}
	}
	return v
}

func (v vocabulary) has(s string) bool {
	_, ok := v[s]
	return ok
}
