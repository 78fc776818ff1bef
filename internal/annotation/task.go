package annotation

import (
	"image"

	"github.com/ironsheep/annotation-audit/internal/geometry"
	"github.com/ironsheep/annotation-audit/internal/imaging"
)

// StatusCompleted is the only task status eligible for auditing.
const StatusCompleted = "completed"

// Task is one labeled image and the annotations drawn on it.
type Task struct {
	ID          string
	Status      string
	Image       geometry.Dimensions
	Annotations []*Annotation
}

// NewTask builds the annotations of records against img. Each annotation
// has its region cropped and profiled before NewTask returns.
func NewTask(id, status string, img image.Image, records []Record, opts imaging.ProfileOptions) *Task {
	t := &Task{
		ID:          id,
		Status:      status,
		Image:       imaging.Dimensions(img),
		Annotations: make([]*Annotation, 0, len(records)),
	}

	for _, rec := range records {
		a := New(rec)
		a.AttachImage(img, opts)
		t.Annotations = append(t.Annotations, a)
	}
	return t
}
