// Package report assembles audit results into the JSON document handed to
// labeling reviewers.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/annotation-audit/internal/annotation"
	"github.com/ironsheep/annotation-audit/internal/audit"
	"github.com/ironsheep/annotation-audit/internal/imaging"
)

// Report is the output of one audit run.
type Report struct {
	RunID       string        `json:"run_id"`
	ProjectName string        `json:"project_name"`
	GeneratedAt time.Time     `json:"generated_at"`
	Tasks       []TaskReport  `json:"tasks"`
	Skipped     []SkippedTask `json:"skipped,omitempty"`
}

// TaskReport lists the flagged annotations of one task.
type TaskReport struct {
	TaskID      string             `json:"task_id"`
	Annotations []AnnotationReport `json:"annotations"`
}

// AnnotationReport is one flagged annotation.
type AnnotationReport struct {
	UUID          string              `json:"uuid"`
	Label         string              `json:"label"`
	ErrorLevel    annotation.Severity `json:"error_level"`
	ErrorMessages []string            `json:"error_messages"`

	// CropPNG is the base64 PNG of the annotated region, when requested.
	CropPNG string `json:"crop_png,omitempty"`
}

// SkippedTask records a task the run could not audit.
type SkippedTask struct {
	TaskID string `json:"task_id"`
	Reason string `json:"reason"`
}

// Summary counts the contents of a report.
type Summary struct {
	Tasks    int
	Skipped  int
	Flagged  int
	Warnings int
	Errors   int
}

// New starts an empty report for projectName.
func New(projectName string) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		ProjectName: projectName,
		GeneratedAt: time.Now().UTC(),
		Tasks:       []TaskReport{},
	}
}

// AddResult appends the findings of one task. With includeCrops each
// finding carries its region as a base64 PNG.
func (r *Report) AddResult(res *audit.Result, includeCrops bool) error {
	tr, err := NewTaskReport(res, includeCrops)
	if err != nil {
		return err
	}
	r.Tasks = append(r.Tasks, tr)
	return nil
}

// NewTaskReport converts one task result to its report form.
func NewTaskReport(res *audit.Result, includeCrops bool) (TaskReport, error) {
	tr := TaskReport{
		TaskID:      res.TaskID,
		Annotations: make([]AnnotationReport, 0, len(res.Findings)),
	}

	for _, f := range res.Findings {
		ar := AnnotationReport{
			UUID:          f.ID,
			Label:         f.Label,
			ErrorLevel:    f.Severity,
			ErrorMessages: f.Messages,
		}
		// Regions clipped away entirely have nothing to encode.
		if includeCrops && f.Annotation != nil && f.Annotation.Region != nil &&
			!f.Annotation.Region.Bounds().Empty() {
			crop, err := imaging.EncodePNGBase64(f.Annotation.Region)
			if err != nil {
				return TaskReport{}, fmt.Errorf("failed to encode crop for annotation %s: %w", f.ID, err)
			}
			ar.CropPNG = crop
		}
		tr.Annotations = append(tr.Annotations, ar)
	}
	return tr, nil
}

// AddSkipped records a task that was not audited.
func (r *Report) AddSkipped(taskID, reason string) {
	r.Skipped = append(r.Skipped, SkippedTask{TaskID: taskID, Reason: reason})
}

// Summary counts tasks and flagged annotations by severity.
func (r *Report) Summary() Summary {
	s := Summary{Tasks: len(r.Tasks), Skipped: len(r.Skipped)}
	for _, t := range r.Tasks {
		for _, a := range t.Annotations {
			s.Flagged++
			switch a.ErrorLevel {
			case annotation.Warning:
				s.Warnings++
			case annotation.Error:
				s.Errors++
			}
		}
	}
	return s
}

// Marshal renders the report as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the report to path, creating parent directories.
func (r *Report) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
