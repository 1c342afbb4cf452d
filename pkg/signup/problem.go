package signup

import (
	"fmt"
	"log/slog"
	"sort"

	apperrors "github.com/tendant/simple-signup/pkg/errors"
)

// Messages synthesized when the server gives nothing better.
const (
	MessageNetworkError = "Network error occurred"
	MessageSignupFailed = "Signup failed"
)

// ServerProblem is the normalized failure reported for a submission. It is
// either a per-field mapping or a single page-level message, never both.
type ServerProblem struct {
	fields  map[Field]string
	message string
}

// FieldsProblem builds a per-field ServerProblem. Keys may include names that
// are not form fields; those are shown at page level.
func FieldsProblem(fields map[Field]string) ServerProblem {
	cp := make(map[Field]string, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return ServerProblem{fields: cp}
}

// MessageProblem builds a page-level ServerProblem.
func MessageProblem(msg string) ServerProblem {
	return ServerProblem{message: msg}
}

// IsFields reports whether the problem carries a per-field breakdown.
func (p ServerProblem) IsFields() bool {
	return p.fields != nil
}

// Fields returns a copy of the per-field messages, or nil for a message problem.
func (p ServerProblem) Fields() map[Field]string {
	if p.fields == nil {
		return nil
	}
	cp := make(map[Field]string, len(p.fields))
	for k, v := range p.fields {
		cp[k] = v
	}
	return cp
}

// Message returns the page-level message, empty for a fields problem.
func (p ServerProblem) Message() string {
	return p.message
}

func (p ServerProblem) String() string {
	if p.IsFields() {
		keys := make([]string, 0, len(p.fields))
		for k := range p.fields {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		return fmt.Sprintf("fields%v", keys)
	}
	return p.message
}

func (p ServerProblem) LogValue() slog.Value {
	if p.IsFields() {
		return slog.GroupValue(slog.Any("fields", p.fields))
	}
	return slog.GroupValue(slog.String("message", p.message))
}

// SubmissionError is how a remote client reports a failed submission.
type SubmissionError struct {
	Problem    ServerProblem
	StatusCode int   // 0 when no response was received
	Err        error // underlying transport or decode error, if any
}

func (e *SubmissionError) Error() string {
	s := "signup submission failed"
	if e.StatusCode != 0 {
		s = fmt.Sprintf("%s (status %d)", s, e.StatusCode)
	}
	s = fmt.Sprintf("%s: %s", s, e.Problem)
	if e.Err != nil {
		s = fmt.Sprintf("%s: %v", s, e.Err)
	}
	return s
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func (e *SubmissionError) ErrorCode() apperrors.ErrorCode {
	if e.Problem.IsFields() {
		return apperrors.ErrCodeFieldSubmission
	}
	return apperrors.ErrCodeGenericSubmission
}

// Reconciler merges client validation problems and server problems into what
// the presentation layer shows. A server message for a field wins over the
// client message for the same field.
type Reconciler struct {
	client ValidationProblems
	server map[Field]string
	page   string
}

// SetClient replaces the client validation problems.
func (r *Reconciler) SetClient(p ValidationProblems) {
	r.client = p.clone()
}

// SetServer replaces all server state with the given problem.
func (r *Reconciler) SetServer(p ServerProblem) {
	r.server = nil
	r.page = ""
	if !p.IsFields() {
		r.page = p.Message()
		return
	}

	r.server = make(map[Field]string)
	var stray []string
	for f, msg := range p.fields {
		if f.Valid() {
			r.server[f] = msg
			continue
		}
		stray = append(stray, string(f))
	}
	if len(stray) > 0 {
		sort.Strings(stray)
		r.page = p.fields[Field(stray[0])]
	}
}

// ClearField drops both client and server problems for a field.
func (r *Reconciler) ClearField(f Field) {
	delete(r.client, f)
	delete(r.server, f)
}

// ClearServer drops all server problems, including the page message.
func (r *Reconciler) ClearServer() {
	r.server = nil
	r.page = ""
}

// Clear drops everything.
func (r *Reconciler) Clear() {
	r.client = nil
	r.ClearServer()
}

// DisplayError returns the message to show next to a field.
func (r *Reconciler) DisplayError(f Field) (string, bool) {
	if msg, ok := r.server[f]; ok && msg != "" {
		return msg, true
	}
	if msg, ok := r.client[f]; ok && msg != "" {
		return msg, true
	}
	return "", false
}

// HasFieldError reports whether DisplayError would return a message.
func (r *Reconciler) HasFieldError(f Field) bool {
	_, ok := r.DisplayError(f)
	return ok
}

// PageMessage returns the banner message that is not tied to a field.
func (r *Reconciler) PageMessage() (string, bool) {
	return r.page, r.page != ""
}
