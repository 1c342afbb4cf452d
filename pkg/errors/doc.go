// Package errors provides structured error handling with error codes for the
// signup pipeline.
//
// # Overview
//
// The errors package provides:
//   - Structured Error type with error codes
//   - The signup failure taxonomy as typed codes
//   - Code inspection that works for any error implementing Coder
//
// # Error Codes
//
// Failure classes:
//   - ErrCodeClientValidation: local problems, block submission
//   - ErrCodeFieldSubmission: server rejected individual fields
//   - ErrCodeGenericSubmission: server or transport failure without a field breakdown
//
// Guards:
//   - ErrCodeSubmissionInFlight
//   - ErrCodeInvalidTransition
//   - ErrCodeUnknownField
//
// # Basic Usage
//
//	import "github.com/tendant/simple-signup/pkg/errors"
//
//	err := errors.New(errors.ErrCodeSubmissionInFlight, "a submission is already in flight")
//
//	// Wrap an existing error
//	err := errors.Wrap(ioErr, errors.ErrCodeInternal, "failed to read response")
//
// # Error Inspection
//
// Types outside this package (signup.ValidationError, signup.SubmissionError)
// implement Coder, so inspection does not depend on the concrete type:
//
//	if errors.IsCode(err, errors.ErrCodeClientValidation) {
//		// render field problems
//	}
//
//	switch errors.GetCode(err) {
//	case errors.ErrCodeFieldSubmission:
//	case errors.ErrCodeGenericSubmission:
//	}
package errors
