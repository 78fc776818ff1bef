package annotation

import (
	"fmt"
	"strings"
	"sync"
)

// Severity is the ordered diagnostic level of an annotation.
type Severity int

const (
	// Normal means no check has fired.
	Normal Severity = iota
	// Warning marks a suspicious annotation worth a human look.
	Warning
	// Error marks an annotation that is malformed or almost certainly wrong.
	Error
)

// String returns the lowercase name of the level.
func (s Severity) String() string {
	switch s {
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText encodes the level by name.
func (s Severity) MarshalText() ([]byte, error) {
	if s < Normal || s > Error {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a level name, case-insensitively.
func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "normal":
		*s = Normal
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	default:
		return fmt.Errorf("unknown severity %q", string(text))
	}
	return nil
}

// Max returns the higher of two levels.
func Max(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

// Diagnostics accumulates the findings of one annotation.
//
// Severity only ever rises and messages are append-only. Report is safe for
// concurrent use so independent passes may share an annotation.
type Diagnostics struct {
	mu       sync.Mutex
	severity Severity
	messages []string
}

// Report raises the severity to at least sev and appends msg.
func (d *Diagnostics) Report(sev Severity, msg string) {
	d.mu.Lock()
	d.severity = Max(d.severity, sev)
	d.messages = append(d.messages, msg)
	d.mu.Unlock()
}

// Severity returns the current level.
func (d *Diagnostics) Severity() Severity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.severity
}

// Messages returns a copy of the accumulated messages in report order.
func (d *Diagnostics) Messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.messages))
	copy(out, d.messages)
	return out
}
