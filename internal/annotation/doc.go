// Package annotation models the labeled regions under audit and the tasks
// that own them.
//
// Raw records arrive exactly as a labeling service exports them and may be
// incomplete. Constructors never reject a record: missing or out-of-range
// values are kept so the audit rules can report them.
//
// # Severity
//
// Each Annotation owns a Diagnostics value. Findings only ever raise its
// severity (Normal < Warning < Error) and messages keep the order in which
// checks reported them. Diagnostics is safe for concurrent use.
package annotation
