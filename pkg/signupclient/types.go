package signupclient

import (
	"bytes"
	"encoding/json"

	"github.com/tendant/simple-signup/pkg/signup"
)

// SignupRequest is the body posted to the signup endpoint.
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func NewSignupRequest(d signup.Draft) SignupRequest {
	return SignupRequest{
		Username:        d.Username,
		Email:           d.Email,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Password:        d.Password,
		PasswordConfirm: d.PasswordConfirm,
	}
}

// SignupResponse is the success body. Only User is required.
type SignupResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *signup.User `json:"user"`
}

// FailureResponse is the error body sent by the reference backend.
type FailureResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// NormalizeFailure turns an error response body into a ServerProblem.
//
//   - {"errors": {...}} becomes a fields problem with the first message per field
//   - {"message": "..."} becomes a page message
//   - a JSON string becomes a page message
//   - a non-JSON body becomes a page message with the body text
//   - an empty body is treated like a lost response
func NormalizeFailure(body []byte) signup.ServerProblem {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return signup.MessageProblem(signup.MessageNetworkError)
	}
	if !json.Valid(body) {
		return signup.MessageProblem(string(body))
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return signup.MessageProblem(signup.MessageSignupFailed)
	}

	switch v := payload.(type) {
	case string:
		if v == "" {
			return signup.MessageProblem(signup.MessageSignupFailed)
		}
		return signup.MessageProblem(v)
	case map[string]interface{}:
		if fields := firstMessages(v["errors"]); len(fields) > 0 {
			return signup.FieldsProblem(fields)
		}
		if msg, ok := v["message"].(string); ok && msg != "" {
			return signup.MessageProblem(msg)
		}
	}
	return signup.MessageProblem(signup.MessageSignupFailed)
}

func firstMessages(raw interface{}) map[signup.Field]string {
	errs, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}

	out := make(map[signup.Field]string, len(errs))
	for k, v := range errs {
		switch msgs := v.(type) {
		case string:
			if msgs != "" {
				out[signup.Field(k)] = msgs
			}
		case []interface{}:
			for _, m := range msgs {
				if s, ok := m.(string); ok && s != "" {
					out[signup.Field(k)] = s
					break
				}
			}
		}
	}
	return out
}
