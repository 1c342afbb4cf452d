package signup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/tendant/simple-signup/pkg/errors"
)

func validDraft() Draft {
	return Draft{
		Username:        "alice",
		Email:           "alice@example.com",
		FirstName:       "Alice",
		LastName:        "Liddell",
		Password:        "wonderland",
		PasswordConfirm: "wonderland",
	}
}

func TestValidateValidDraft(t *testing.T) {
	drafts := []Draft{
		validDraft(),
		{Username: "bob", Email: "b@c.io", FirstName: "B", LastName: "C", Password: "12345678", PasswordConfirm: "12345678"},
		{Username: "  carol  ", Email: "carol+tag@mail.example.org", FirstName: "Carol", LastName: "D", Password: "pässwörd", PasswordConfirm: "pässwörd"},
	}

	for _, d := range drafts {
		assert.Empty(t, Validate(d), "draft %+v", d.LogValue())
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Draft)
		field  Field
		want   string
	}{
		{"username missing", func(d *Draft) { d.Username = "" }, FieldUsername, "Username is required"},
		{"username blank", func(d *Draft) { d.Username = "   " }, FieldUsername, "Username is required"},
		{"username short", func(d *Draft) { d.Username = "ab" }, FieldUsername, "Username must be at least 3 characters"},
		{"email missing", func(d *Draft) { d.Email = "" }, FieldEmail, "Email is required"},
		{"email blank", func(d *Draft) { d.Email = " \t" }, FieldEmail, "Email is required"},
		{"email no at", func(d *Draft) { d.Email = "bad" }, FieldEmail, "Email address is invalid"},
		{"email no dot after at", func(d *Draft) { d.Email = "a@b" }, FieldEmail, "Email address is invalid"},
		{"email embedded space", func(d *Draft) { d.Email = "a b@c.d" }, FieldEmail, "Email address is invalid"},
		{"first name missing", func(d *Draft) { d.FirstName = " " }, FieldFirstName, "First name is required"},
		{"last name missing", func(d *Draft) { d.LastName = "" }, FieldLastName, "Last name is required"},
		{"password missing", func(d *Draft) { d.Password = ""; d.PasswordConfirm = "" }, FieldPassword, "Password is required"},
		{"password short", func(d *Draft) { d.Password = "short"; d.PasswordConfirm = "short" }, FieldPassword, "Password must be at least 8 characters"},
		{"confirm missing", func(d *Draft) { d.PasswordConfirm = "" }, FieldPasswordConfirm, "Please confirm your password"},
		{"confirm mismatch", func(d *Draft) { d.PasswordConfirm = "wonderlanD" }, FieldPasswordConfirm, "Passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			problems := Validate(d)
			assert.Equal(t, tt.want, problems[tt.field])
		})
	}
}

func TestValidateMissingUsernameOnly(t *testing.T) {
	d := validDraft()
	d.Username = ""

	problems := Validate(d)
	assert.Equal(t, ValidationProblems{FieldUsername: "Username is required"}, problems)
}

func TestValidateEmptyDraftReportsEveryField(t *testing.T) {
	problems := Validate(Draft{})

	assert.Equal(t, ValidationProblems{
		FieldUsername:        "Username is required",
		FieldEmail:           "Email is required",
		FieldFirstName:       "First name is required",
		FieldLastName:        "Last name is required",
		FieldPassword:        "Password is required",
		FieldPasswordConfirm: "Please confirm your password",
	}, problems)
	assert.Equal(t, Fields(), problems.Fields())
}

func TestValidateIsIdempotent(t *testing.T) {
	d := Draft{Username: "ab", Email: "bad", Password: "pw"}
	assert.Equal(t, Validate(d), Validate(d))
}

func TestValidationProblemsErr(t *testing.T) {
	assert.NoError(t, Validate(validDraft()).Err())

	err := Validate(Draft{Username: "ab", Email: "bad", FirstName: "A", LastName: "B", Password: "12345678", PasswordConfirm: "12345678"}).Err()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Field{FieldUsername, FieldEmail}, verr.Problems.Fields())
	assert.Equal(t, "validation failed: email, username", err.Error())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeClientValidation))
}
