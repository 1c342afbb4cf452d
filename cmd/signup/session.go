package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tendant/simple-signup/pkg/signup"
)

var labels = map[signup.Field]string{
	signup.FieldUsername:        "Username",
	signup.FieldEmail:           "Email",
	signup.FieldFirstName:       "First Name",
	signup.FieldLastName:        "Last Name",
	signup.FieldPassword:        "Password",
	signup.FieldPasswordConfirm: "Confirm Password",
}

var errAborted = errors.New("signup aborted")

func flagName(f signup.Field) string {
	return strings.ReplaceAll(string(f), "_", "-")
}

// session renders the signup form on a terminal.
type session struct {
	form *signup.Form
	in   *bufio.Scanner
	out  io.Writer
}

func newSession(in io.Reader, out io.Writer) *session {
	return &session{in: bufio.NewScanner(in), out: out}
}

func (s *session) busyIndicator() signup.Observer {
	return signup.ObserverFunc(func(_ context.Context, t signup.Transition) {
		if t.To.Status == signup.StatusInFlight {
			fmt.Fprintln(s.out, "Submitting...")
		}
	})
}

// submitOnce submits fully preset values without prompting.
func (s *session) submitOnce(ctx context.Context, values map[signup.Field]string) error {
	for _, f := range signup.Fields() {
		if err := s.form.Change(f, values[f]); err != nil {
			return err
		}
	}
	outcome, err := s.form.Submit(ctx)
	s.render(outcome)
	if err != nil {
		return err
	}
	if outcome.Status == signup.StatusFailed {
		return &signup.SubmissionError{Problem: *outcome.Problem}
	}
	return nil
}

// interactive prompts for every field, then re-prompts the fields with
// problems until signup succeeds or the user gives up.
func (s *session) interactive(ctx context.Context, preset map[signup.Field]string) error {
	fmt.Fprintln(s.out, "Sign Up")

	pending := s.unset(preset)
	for f, v := range preset {
		if err := s.form.Change(f, v); err != nil {
			return err
		}
	}

	for {
		for _, f := range pending {
			if err := s.prompt(f); err != nil {
				return err
			}
		}

		outcome, err := s.form.Submit(ctx)
		s.render(outcome)

		switch {
		case err != nil && !errors.Is(err, signup.ErrSubmissionInFlight):
			pending = s.fieldsWithErrors()
		case outcome.Status == signup.StatusSucceeded:
			again, err := s.confirm("Create another account? [y/N] ", false)
			if err != nil || !again {
				return err
			}
			if err := s.form.Reset(ctx); err != nil {
				return err
			}
			pending = signup.Fields()
		default:
			pending = s.fieldsWithErrors()
			if len(pending) == 0 {
				retry, err := s.confirm("Try again? [Y/n] ", true)
				if err != nil {
					return err
				}
				if !retry {
					return errAborted
				}
			}
		}
	}
}

func (s *session) unset(preset map[signup.Field]string) []signup.Field {
	var out []signup.Field
	for _, f := range signup.Fields() {
		if _, ok := preset[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

func (s *session) fieldsWithErrors() []signup.Field {
	var out []signup.Field
	for _, f := range signup.Fields() {
		if s.form.HasFieldError(f) {
			out = append(out, f)
		}
	}
	return out
}

// prompt reads one field. An empty answer keeps the current value.
func (s *session) prompt(f signup.Field) error {
	current, _ := s.form.Draft().Get(f)
	if current != "" && f != signup.FieldPassword && f != signup.FieldPasswordConfirm {
		fmt.Fprintf(s.out, "%s [%s]: ", labels[f], current)
	} else {
		fmt.Fprintf(s.out, "%s: ", labels[f])
	}

	line, err := s.readLine()
	if err != nil {
		return err
	}
	if line == "" && current != "" {
		return nil
	}
	return s.form.Change(f, line)
}

func (s *session) confirm(question string, def bool) (bool, error) {
	fmt.Fprint(s.out, question)
	line, err := s.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return def, nil
}

func (s *session) readLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errAborted
	}
	return strings.TrimRight(s.in.Text(), "\r"), nil
}

func (s *session) render(outcome signup.Outcome) {
	if outcome.Status == signup.StatusSucceeded {
		fmt.Fprintln(s.out, "Account created successfully! Welcome aboard!")
		return
	}
	if msg, ok := s.form.PageMessage(); ok {
		fmt.Fprintf(s.out, "Error: %s\n", msg)
	}
	for _, f := range signup.Fields() {
		if msg, ok := s.form.DisplayError(f); ok {
			fmt.Fprintf(s.out, "  %s: %s\n", labels[f], msg)
		}
	}
}
