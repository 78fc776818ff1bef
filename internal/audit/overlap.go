package audit

import (
	"fmt"

	"github.com/ironsheep/annotation-audit/internal/annotation"
	"github.com/ironsheep/annotation-audit/internal/geometry"
)

// Overlap is a pair of annotations whose boxes overlap by more than the
// detector's minimum IoU. A always precedes B in task order.
type Overlap struct {
	A   *annotation.Annotation
	B   *annotation.Annotation
	IoU float64
}

// OverlapDetector finds overlapping annotation pairs within one task.
//
// Implementations must report every unordered pair of distinct annotations
// whose IoU is strictly greater than minIoU, exactly once.
type OverlapDetector interface {
	Overlaps(annotations []*annotation.Annotation, minIoU float64) []Overlap
}

// PairwiseDetector compares every pair of annotations. It is O(n²) in the
// number of annotations, which is fine for the handful of signs per image.
type PairwiseDetector struct{}

// Overlaps implements OverlapDetector.
func (PairwiseDetector) Overlaps(annotations []*annotation.Annotation, minIoU float64) []Overlap {
	var found []Overlap
	for i := 0; i < len(annotations); i++ {
		for j := i + 1; j < len(annotations); j++ {
			iou := geometry.IoU(annotations[i].Box, annotations[j].Box)
			if iou > minIoU {
				found = append(found, Overlap{A: annotations[i], B: annotations[j], IoU: iou})
			}
		}
	}
	return found
}

// CheckOverlaps reports duplicate and overlapping boxes among annotations.
// Both members of a pair get a message naming the other one.
func (v *Validator) CheckOverlaps(annotations []*annotation.Annotation, detector OverlapDetector) {
	r := v.rules
	for _, o := range detector.Overlaps(annotations, r.OverlapIoU) {
		sev, kind := annotation.Warning, "Overlapping"
		if o.IoU > r.DuplicateIoU {
			sev, kind = annotation.Error, "Duplicate"
		}
		o.A.Report(sev, fmt.Sprintf("%s boxes between %s and %s (Overlap: %.4f)", kind, o.A.ID, o.B.ID, o.IoU))
		o.B.Report(sev, fmt.Sprintf("%s boxes between %s and %s (Overlap: %.4f)", kind, o.B.ID, o.A.ID, o.IoU))
	}
}
