package signup

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	apperrors "github.com/tendant/simple-signup/pkg/errors"
)

// Status is the lifecycle position of a signup attempt.
type Status int

const (
	StatusIdle Status = iota
	StatusInFlight
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInFlight:
		return "in_flight"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the current value of the state machine. User is set only when
// Succeeded, Problem only when Failed.
type Outcome struct {
	Status  Status
	User    *User
	Problem *ServerProblem
}

func (o Outcome) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("status", o.Status.String())}
	if o.User != nil {
		attrs = append(attrs, slog.Any("user", *o.User))
	}
	if o.Problem != nil {
		attrs = append(attrs, slog.Any("problem", *o.Problem))
	}
	return slog.GroupValue(attrs...)
}

// Events that move the machine.
const (
	EventSubmit         = "submit"
	EventResponseOK     = "response_ok"
	EventResponseError  = "response_error"
	EventReset          = "reset"
	EventClearTransient = "clear_transient"
)

// Transition is passed to observers after the machine changed state.
type Transition struct {
	Event string
	From  Outcome
	To    Outcome
}

// Observer is notified of every transition. Observers cannot change the
// outcome of a transition.
type Observer interface {
	OnTransition(ctx context.Context, t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, t Transition)

func (f ObserverFunc) OnTransition(ctx context.Context, t Transition) {
	f(ctx, t)
}

// Remote performs the network call for one submission. Failures should be
// reported as *SubmissionError; anything else is treated as a generic failure.
type Remote interface {
	Submit(ctx context.Context, d Draft) (User, error)
}

// ErrSubmissionInFlight is returned when Submit is called while another
// submission has not settled.
var ErrSubmissionInFlight = apperrors.New(apperrors.ErrCodeSubmissionInFlight, "a submission is already in flight")

// Machine owns the lifecycle of signup attempts: Idle, InFlight, then
// Succeeded or Failed. It is safe for concurrent use and allows at most one
// outstanding submission.
type Machine struct {
	remote    Remote
	validate  func(Draft) ValidationProblems
	observers []Observer
	logger    *slog.Logger

	mu    sync.Mutex
	state Outcome
}

type MachineOption func(*Machine)

func NewMachine(remote Remote, opts ...MachineOption) *Machine {
	m := &Machine{
		remote:   remote,
		validate: Validate,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithObserver registers an observer for state transitions.
func WithObserver(o Observer) MachineOption {
	return func(m *Machine) {
		m.observers = append(m.observers, o)
	}
}

func WithMachineLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithValidator replaces the submit guard. Intended for tests.
func WithValidator(fn func(Draft) ValidationProblems) MachineOption {
	return func(m *Machine) {
		if fn != nil {
			m.validate = fn
		}
	}
}

// State returns the current outcome.
func (m *Machine) State() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Submit validates the draft and, if it is clean, performs exactly one remote
// call. It blocks until the call settles and returns the settled outcome.
//
// A draft with problems returns a *ValidationError and leaves the state
// unchanged. A call while InFlight returns ErrSubmissionInFlight. A remote
// failure is not an error: it is reported as a Failed outcome.
func (m *Machine) Submit(ctx context.Context, d Draft) (Outcome, error) {
	m.mu.Lock()
	if m.state.Status == StatusInFlight {
		current := m.state
		m.mu.Unlock()
		m.logger.Warn("Submit ignored, submission already in flight")
		return current, ErrSubmissionInFlight
	}

	if err := m.validate(d).Err(); err != nil {
		current := m.state
		m.mu.Unlock()
		m.logger.Warn("Submission blocked by validation", "error", err)
		return current, err
	}

	from := m.state
	m.state = Outcome{Status: StatusInFlight}
	inFlight := m.state
	m.mu.Unlock()
	m.notify(ctx, Transition{Event: EventSubmit, From: from, To: inFlight})

	user, err := m.remote.Submit(ctx, d)

	var settled Outcome
	event := EventResponseOK
	if err != nil {
		problem := problemFromError(err)
		settled = Outcome{Status: StatusFailed, Problem: &problem}
		event = EventResponseError
	} else {
		settled = Outcome{Status: StatusSucceeded, User: &user}
	}

	m.mu.Lock()
	m.state = settled
	m.mu.Unlock()
	m.notify(ctx, Transition{Event: event, From: inFlight, To: settled})

	return settled, nil
}

// Reset returns a succeeded machine to Idle so another account can be created.
func (m *Machine) Reset(ctx context.Context) error {
	m.mu.Lock()
	if m.state.Status != StatusSucceeded {
		from := m.state.Status
		m.mu.Unlock()
		return apperrors.InvalidTransition(EventReset, from.String())
	}
	from := m.state
	m.state = Outcome{Status: StatusIdle}
	m.mu.Unlock()

	m.notify(ctx, Transition{Event: EventReset, From: from, To: Outcome{Status: StatusIdle}})
	return nil
}

// ClearTransient drops a stale success or failure from a previous session.
// It does nothing while a submission is in flight and reports whether the
// state changed.
func (m *Machine) ClearTransient(ctx context.Context) bool {
	m.mu.Lock()
	if m.state.Status == StatusInFlight || m.state.Status == StatusIdle {
		m.mu.Unlock()
		return false
	}
	from := m.state
	m.state = Outcome{Status: StatusIdle}
	m.mu.Unlock()

	m.notify(ctx, Transition{Event: EventClearTransient, From: from, To: Outcome{Status: StatusIdle}})
	return true
}

func (m *Machine) notify(ctx context.Context, t Transition) {
	for _, o := range m.observers {
		o.OnTransition(ctx, t)
	}
}

func problemFromError(err error) ServerProblem {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se.Problem
	}
	return MessageProblem(MessageSignupFailed)
}

// LogObserver logs every transition.
func LogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return ObserverFunc(func(ctx context.Context, t Transition) {
		switch t.To.Status {
		case StatusInFlight:
			logger.InfoContext(ctx, "Signup pending", "event", t.Event)
		case StatusSucceeded:
			logger.InfoContext(ctx, "Signup succeeded", "event", t.Event, "user", *t.To.User)
		case StatusFailed:
			logger.ErrorContext(ctx, "Signup rejected", "event", t.Event, "problem", *t.To.Problem)
		default:
			logger.InfoContext(ctx, "Signup state cleared", "event", t.Event, "from", t.From.Status.String())
		}
	})
}
