package signup

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/tendant/simple-signup/pkg/errors"
)

// MockRemote records calls and answers with SubmitFunc.
type MockRemote struct {
	mu         sync.Mutex
	calls      []Draft
	SubmitFunc func(ctx context.Context, d Draft) (User, error)
}

func (m *MockRemote) Submit(ctx context.Context, d Draft) (User, error) {
	m.mu.Lock()
	m.calls = append(m.calls, d)
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, d)
	}
	return User{ID: "1", Username: d.Username, Email: d.Email}, nil
}

func (m *MockRemote) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// recorder collects transitions.
type recorder struct {
	mu          sync.Mutex
	transitions []Transition
}

func (r *recorder) OnTransition(_ context.Context, t Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
}

func (r *recorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Status
	for _, t := range r.transitions {
		out = append(out, t.To.Status)
	}
	return out
}

func TestMachineStartsIdle(t *testing.T) {
	m := NewMachine(&MockRemote{})
	assert.Equal(t, StatusIdle, m.State().Status)
}

func TestMachineSubmitInvalidDraft(t *testing.T) {
	remote := &MockRemote{}
	rec := &recorder{}
	m := NewMachine(remote, WithObserver(rec))

	outcome, err := m.Submit(context.Background(), Draft{Username: "ab", Email: "bad"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Username must be at least 3 characters", verr.Problems[FieldUsername])
	assert.Equal(t, StatusIdle, outcome.Status)
	assert.Equal(t, StatusIdle, m.State().Status)
	assert.Zero(t, remote.Calls())
	assert.Empty(t, rec.statuses())
}

func TestMachineSubmitSuccess(t *testing.T) {
	remote := &MockRemote{}
	rec := &recorder{}
	m := NewMachine(remote, WithObserver(rec))

	outcome, err := m.Submit(context.Background(), validDraft())
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, outcome.Status)
	require.NotNil(t, outcome.User)
	assert.Equal(t, "alice", outcome.User.Username)
	assert.Nil(t, outcome.Problem)
	assert.Equal(t, 1, remote.Calls())
	assert.Equal(t, []Status{StatusInFlight, StatusSucceeded}, rec.statuses())
	assert.Equal(t, EventResponseOK, rec.transitions[1].Event)
}

func TestMachineSubmitFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		problem ServerProblem
	}{
		{
			name:    "field errors",
			err:     &SubmissionError{Problem: FieldsProblem(map[Field]string{FieldUsername: "already exists"}), StatusCode: 400},
			problem: FieldsProblem(map[Field]string{FieldUsername: "already exists"}),
		},
		{
			name:    "transport",
			err:     &SubmissionError{Problem: MessageProblem(MessageNetworkError), Err: errors.New("refused")},
			problem: MessageProblem(MessageNetworkError),
		},
		{
			name:    "foreign error",
			err:     errors.New("something odd"),
			problem: MessageProblem(MessageSignupFailed),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &MockRemote{SubmitFunc: func(ctx context.Context, d Draft) (User, error) {
				return User{}, tt.err
			}}
			rec := &recorder{}
			m := NewMachine(remote, WithObserver(rec))

			outcome, err := m.Submit(context.Background(), validDraft())
			require.NoError(t, err)

			assert.Equal(t, StatusFailed, outcome.Status)
			require.NotNil(t, outcome.Problem)
			assert.Equal(t, tt.problem, *outcome.Problem)
			assert.Nil(t, outcome.User)
			assert.Equal(t, []Status{StatusInFlight, StatusFailed}, rec.statuses())
		})
	}
}

func TestMachineResubmitAfterFailure(t *testing.T) {
	fail := true
	remote := &MockRemote{SubmitFunc: func(ctx context.Context, d Draft) (User, error) {
		if fail {
			return User{}, &SubmissionError{Problem: MessageProblem("Failed to create user"), StatusCode: 500}
		}
		return User{ID: "7", Username: d.Username}, nil
	}}
	m := NewMachine(remote)

	outcome, err := m.Submit(context.Background(), validDraft())
	require.NoError(t, err)
	require.Equal(t, StatusFailed, outcome.Status)

	// Invalid draft from Failed stays Failed.
	outcome, err = m.Submit(context.Background(), Draft{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeClientValidation))
	assert.Equal(t, StatusFailed, outcome.Status)

	fail = false
	outcome, err = m.Submit(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, outcome.Status)
	assert.Equal(t, 2, remote.Calls())
}

func TestMachineRejectsSubmitWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	remote := &MockRemote{SubmitFunc: func(ctx context.Context, d Draft) (User, error) {
		close(entered)
		<-release
		return User{ID: "1", Username: d.Username}, nil
	}}
	m := NewMachine(remote)

	done := make(chan Outcome, 1)
	go func() {
		outcome, _ := m.Submit(context.Background(), validDraft())
		done <- outcome
	}()

	<-entered
	assert.Equal(t, StatusInFlight, m.State().Status)

	outcome, err := m.Submit(context.Background(), validDraft())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.Equal(t, StatusInFlight, outcome.Status)

	assert.False(t, m.ClearTransient(context.Background()))
	assert.True(t, apperrors.IsCode(m.Reset(context.Background()), apperrors.ErrCodeInvalidTransition))
	assert.Equal(t, StatusInFlight, m.State().Status)

	close(release)
	settled := <-done
	assert.Equal(t, StatusSucceeded, settled.Status)
	assert.Equal(t, 1, remote.Calls())
}

func TestMachineReset(t *testing.T) {
	m := NewMachine(&MockRemote{})
	ctx := context.Background()

	err := m.Reset(ctx)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidTransition))

	_, err = m.Submit(ctx, validDraft())
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx))
	assert.Equal(t, Outcome{Status: StatusIdle}, m.State())
}

func TestMachineClearTransient(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	m := NewMachine(&MockRemote{SubmitFunc: func(ctx context.Context, d Draft) (User, error) {
		return User{}, &SubmissionError{Problem: MessageProblem("nope")}
	}}, WithObserver(rec))

	assert.False(t, m.ClearTransient(ctx))

	_, err := m.Submit(ctx, validDraft())
	require.NoError(t, err)
	require.Equal(t, StatusFailed, m.State().Status)

	assert.True(t, m.ClearTransient(ctx))
	assert.Equal(t, Outcome{Status: StatusIdle}, m.State())
	assert.Equal(t, []Status{StatusInFlight, StatusFailed, StatusIdle}, rec.statuses())
	assert.Equal(t, EventClearTransient, rec.transitions[2].Event)
}

func TestMachineWithValidator(t *testing.T) {
	remote := &MockRemote{}
	m := NewMachine(remote, WithValidator(func(Draft) ValidationProblems { return nil }))

	outcome, err := m.Submit(context.Background(), Draft{})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, outcome.Status)
	assert.Equal(t, 1, remote.Calls())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "in_flight", StatusInFlight.String())
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(42).String())
}
