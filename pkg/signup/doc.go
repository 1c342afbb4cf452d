// Package signup implements the client side of account signup: the form
// draft, client validation, the submission state machine and the
// reconciliation of client and server errors for display.
//
// # Overview
//
// The signup package provides:
//   - Draft, the record edited field by field
//   - Validate, the client rules run before any network call
//   - Machine, the Idle / InFlight / Succeeded / Failed lifecycle
//   - Reconciler, which decides which message a field shows
//   - Form, the controller a presentation layer drives
//
// The network call itself lives behind the Remote interface; see
// pkg/signupclient for the HTTP implementation.
//
// # Basic Usage
//
//	client := signupclient.New("http://localhost:8000")
//	machine := signup.NewMachine(client, signup.WithObserver(signup.LogObserver(logger)))
//	form := signup.NewForm(ctx, machine)
//
//	form.Change(signup.FieldUsername, "alice")
//	form.Change(signup.FieldEmail, "alice@example.com")
//	// ... remaining fields
//
//	outcome, err := form.Submit(ctx)
//	switch {
//	case err != nil:
//		// *ValidationError: show form.DisplayError for each field
//	case outcome.Status == signup.StatusSucceeded:
//		// show success, offer form.Reset(ctx)
//	case outcome.Status == signup.StatusFailed:
//		// show form.DisplayError per field and form.PageMessage()
//	}
//
// # Error Precedence
//
// A server message for a field wins over the client message for the same
// field. Editing a field clears both. A server failure without a field
// breakdown is shown through PageMessage and cleared by the next submit.
package signup
