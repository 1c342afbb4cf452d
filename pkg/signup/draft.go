package signup

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-signup/pkg/errors"
)

// Field names a signup form field. Values are the wire names used by the
// remote signup endpoint, so server-reported problems key on them directly.
type Field string

const (
	FieldUsername        Field = "username"
	FieldEmail           Field = "email"
	FieldFirstName       Field = "first_name"
	FieldLastName        Field = "last_name"
	FieldPassword        Field = "password"
	FieldPasswordConfirm Field = "password_confirm"
)

var allFields = []Field{
	FieldUsername,
	FieldEmail,
	FieldFirstName,
	FieldLastName,
	FieldPassword,
	FieldPasswordConfirm,
}

// Fields returns every form field in validation order.
func Fields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// ParseField returns the Field with the given wire name.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if !f.Valid() {
		return "", errors.UnknownField(name)
	}
	return f, nil
}

// Valid reports whether f is one of the signup form fields.
func (f Field) Valid() bool {
	for _, known := range allFields {
		if f == known {
			return true
		}
	}
	return false
}

// Draft is the working record edited by the user during one signup session.
type Draft struct {
	Username        string `json:"username" validate:"nonblank,min=3"`
	Email           string `json:"email" validate:"nonblank,emailshape"`
	FirstName       string `json:"first_name" validate:"nonblank"`
	LastName        string `json:"last_name" validate:"nonblank"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// Get returns the current value of a field.
func (d Draft) Get(f Field) (string, error) {
	p, err := d.ptr(f)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// Set updates a single field.
func (d *Draft) Set(f Field, value string) error {
	p, err := d.ptr(f)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

func (d *Draft) ptr(f Field) (*string, error) {
	switch f {
	case FieldUsername:
		return &d.Username, nil
	case FieldEmail:
		return &d.Email, nil
	case FieldFirstName:
		return &d.FirstName, nil
	case FieldLastName:
		return &d.LastName, nil
	case FieldPassword:
		return &d.Password, nil
	case FieldPasswordConfirm:
		return &d.PasswordConfirm, nil
	}
	return nil, errors.UnknownField(string(f))
}

// IsEmpty reports whether no field has been filled in.
func (d Draft) IsEmpty() bool {
	return d == Draft{}
}

// LogValue keeps passwords out of logs.
func (d Draft) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", d.Username),
		slog.String("email", d.Email),
	)
}

// UserID identifies an account on the remote service. Numeric and string ids
// are both accepted and kept in their text form.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// User is the account record returned by the remote service on success.
// The pipeline passes it through without interpreting it.
type User struct {
	ID         UserID `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	DateJoined string `json:"date_joined"`
}

func (u User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", string(u.ID)),
		slog.String("username", u.Username),
	)
}
