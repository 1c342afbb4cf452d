package signup

import (
	"context"
	"errors"
	"log/slog"
)

// Form is the controller behind a signup form. It owns the draft, routes every
// field change through Change, and exposes reconciled errors to the
// presentation layer. A Form is driven from a single UI goroutine; the
// Machine remains the authority on whether a submission may start.
type Form struct {
	machine *Machine
	logger  *slog.Logger

	draft     Draft
	reconcile Reconciler
}

type FormOption func(*Form)

func WithFormLogger(logger *slog.Logger) FormOption {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewForm starts an editing session. Stale success or failure flags left on
// the machine by a previous session are cleared without resubmitting.
func NewForm(ctx context.Context, m *Machine, opts ...FormOption) *Form {
	f := &Form{
		machine: m,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.logger.Debug("Signup form session started")
	m.ClearTransient(ctx)
	return f
}

// Change sets one field and clears any problem shown for it.
func (f *Form) Change(field Field, value string) error {
	if err := f.draft.Set(field, value); err != nil {
		return err
	}
	f.logger.Debug("Field changed", "field", field, "length", len(value))

	if f.reconcile.HasFieldError(field) {
		f.logger.Debug("Clearing errors for field", "field", field)
		f.reconcile.ClearField(field)
	}
	return nil
}

// Submit validates the draft and submits it. Client problems and server
// problems become visible through DisplayError and PageMessage.
//
// The returned error is a *ValidationError when the draft is incomplete and
// ErrSubmissionInFlight when another submission is pending. A rejected
// submission returns a Failed outcome and a nil error.
func (f *Form) Submit(ctx context.Context) (Outcome, error) {
	if f.Busy() {
		return f.machine.State(), ErrSubmissionInFlight
	}

	f.logger.Info("Form submission initiated", "draft", f.draft)
	f.reconcile.ClearServer()

	outcome, err := f.machine.Submit(ctx, f.draft)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.reconcile.SetClient(verr.Problems)
		}
		return outcome, err
	}

	switch outcome.Status {
	case StatusSucceeded:
		f.reconcile.Clear()
	case StatusFailed:
		f.reconcile.SetClient(nil)
		f.reconcile.SetServer(*outcome.Problem)
	}
	return outcome, nil
}

// Reset is the "create another account" action: it empties the draft, drops
// all problems and returns the machine to Idle.
func (f *Form) Reset(ctx context.Context) error {
	if err := f.machine.Reset(ctx); err != nil {
		return err
	}
	f.logger.Info("Resetting form to initial state")
	f.draft = Draft{}
	f.reconcile.Clear()
	return nil
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() Draft {
	return f.draft
}

// Outcome returns the state of the underlying machine.
func (f *Form) Outcome() Outcome {
	return f.machine.State()
}

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool {
	return f.machine.State().Status == StatusInFlight
}

func (f *Form) DisplayError(field Field) (string, bool) {
	return f.reconcile.DisplayError(field)
}

func (f *Form) HasFieldError(field Field) bool {
	return f.reconcile.HasFieldError(field)
}

func (f *Form) PageMessage() (string, bool) {
	return f.reconcile.PageMessage()
}
