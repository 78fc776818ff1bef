// Package audit implements the annotation quality rules: the per-annotation
// check battery, the overlap scan across a task and the pipeline that runs
// both and collects the findings.
//
// The package performs no I/O. Callers hand it a decoded image and raw
// records (or a prepared annotation.Task) and get back the annotations that
// need attention.
//
// # Check Order
//
// Validator.Validate runs CheckBasic, CheckSize, CheckPosition and
// CheckColor in that order and never stops early. The Pipeline then runs
// the OverlapDetector once over the whole task.
//
// # Thresholds
//
// All thresholds and vocabularies live in Rules. DefaultRules returns the
// traffic sign project's values; every comparison against an IoU threshold
// is strict.
package audit
