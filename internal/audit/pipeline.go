package audit

import (
	"image"

	"github.com/ironsheep/annotation-audit/internal/annotation"
)

// Finding is the audit outcome for one annotation whose severity is above
// normal.
type Finding struct {
	ID       string              `json:"uuid"`
	Label    string              `json:"label"`
	Severity annotation.Severity `json:"error_level"`
	Messages []string            `json:"error_messages"`

	// Annotation gives report builders access to the region pixels.
	Annotation *annotation.Annotation `json:"-"`
}

// Result lists the findings of one task in annotation order.
type Result struct {
	TaskID   string    `json:"task_id"`
	Findings []Finding `json:"annotations"`
}

// Pipeline validates whole tasks.
type Pipeline struct {
	validator *Validator
	overlaps  OverlapDetector
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithOverlapDetector replaces the default PairwiseDetector.
func WithOverlapDetector(d OverlapDetector) Option {
	return func(p *Pipeline) {
		if d != nil {
			p.overlaps = d
		}
	}
}

// NewPipeline builds a Pipeline from rules. The rules are validated and
// copied.
func NewPipeline(rules Rules, opts ...Option) (*Pipeline, error) {
	v, err := NewValidator(rules)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{validator: v, overlaps: PairwiseDetector{}}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Rules returns a copy of the rules in effect.
func (p *Pipeline) Rules() Rules {
	return p.validator.Rules()
}

// RunRecords builds a task from raw records against img and runs it.
func (p *Pipeline) RunRecords(taskID string, img image.Image, records []annotation.Record) *Result {
	task := annotation.NewTask(taskID, annotation.StatusCompleted, img, records, p.validator.rules.Profile)
	return p.Run(task)
}

// Run validates each annotation of task, scans the task for overlapping
// boxes and returns the annotations that ended above normal severity.
func (p *Pipeline) Run(task *annotation.Task) *Result {
	for _, a := range task.Annotations {
		p.validator.Validate(a, task.Image)
	}
	p.validator.CheckOverlaps(task.Annotations, p.overlaps)

	res := &Result{TaskID: task.ID, Findings: []Finding{}}
	for _, a := range task.Annotations {
		sev := a.Severity()
		if sev == annotation.Normal {
			continue
		}
		res.Findings = append(res.Findings, Finding{
			ID:         a.ID,
			Label:      a.Label,
			Severity:   sev,
			Messages:   a.Messages(),
			Annotation: a,
		})
	}
	return res
}
