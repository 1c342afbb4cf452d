package signup

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/tendant/simple-signup/pkg/errors"
)

// Custom validation tags
const (
	TagNonBlank   = "nonblank"   // not empty after trimming whitespace
	TagEmailShape = "emailshape" // local@domain.tld, no whitespace
)

var emailShapeRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// messages maps a field and the failing tag to the text shown to the user.
var messages = map[Field]map[string]string{
	FieldUsername: {
		TagNonBlank: "Username is required",
		"min":       "Username must be at least 3 characters",
	},
	FieldEmail: {
		TagNonBlank:   "Email is required",
		TagEmailShape: "Email address is invalid",
	},
	FieldFirstName: {
		TagNonBlank: "First name is required",
	},
	FieldLastName: {
		TagNonBlank: "Last name is required",
	},
	FieldPassword: {
		"required": "Password is required",
		"min":      "Password must be at least 8 characters",
	},
	FieldPasswordConfirm: {
		"required": "Please confirm your password",
		"eqfield":  "Passwords do not match",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so problems line up with server-side field keys.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(TagNonBlank, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}, true)
	_ = v.RegisterValidation(TagEmailShape, func(fl validator.FieldLevel) bool {
		return emailShapeRegex.MatchString(fl.Field().String())
	})
	return v
}

// ValidationProblems maps a field to the first problem found for it.
type ValidationProblems map[Field]string

// Validate checks every field of the draft independently. For each field the
// rules run in a fixed order and only the first failure is kept. The result is
// empty iff the draft may be submitted.
func Validate(d Draft) ValidationProblems {
	problems := ValidationProblems{}

	err := validate.Struct(d)
	if err == nil {
		return problems
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable on programmer error (bad tag, non-struct).
		panic(fmt.Sprintf("signup: validating draft: %v", err))
	}

	for _, fe := range verrs {
		field := Field(fe.Field())
		if _, seen := problems[field]; seen {
			continue
		}
		msg, ok := messages[field][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", field)
		}
		problems[field] = msg
	}
	return problems
}

// Has reports whether the field has a problem.
func (p ValidationProblems) Has(f Field) bool {
	_, ok := p[f]
	return ok
}

// Fields returns the fields with problems in validation order.
func (p ValidationProblems) Fields() []Field {
	var out []Field
	for _, f := range allFields {
		if p.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Err returns a *ValidationError describing the problems, or nil if there are none.
func (p ValidationProblems) Err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Problems: p.clone()}
}

func (p ValidationProblems) clone() ValidationProblems {
	out := make(ValidationProblems, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ValidationError is returned when client validation blocks a submission.
type ValidationError struct {
	Problems ValidationProblems
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Problems))
	for f := range e.Problems {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func (e *ValidationError) ErrorCode() apperrors.ErrorCode {
	return apperrors.ErrCodeClientValidation
}
