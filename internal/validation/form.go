package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SignupForm carries the sign-up fields.
type SignupForm struct {
	Name     string `form:"name" validate:"username"`
	Email    string `form:"email" validate:"email_address"`
	Password string `form:"password" validate:"password"`
}

// LoginForm carries the login fields. Login only needs a well-formed
// e-mail and a non-empty password; the password rules are not re-applied.
type LoginForm struct {
	Email    string `form:"email" validate:"email_address"`
	Password string `form:"password" validate:"required"`
}

// FormError lists the fields that failed validation, in form order.
type FormError struct {
	Fields []string
}

func (e *FormError) Error() string {
	return ErrInvalidFormat.Error() + ": " + strings.Join(e.Fields, ", ")
}

// Is makes errors.Is(err, ErrInvalidFormat) hold for every FormError.
func (e *FormError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// Has reports whether field failed.
func (e *FormError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Checker validates forms against one rule set.
type Checker struct {
	rules    Rules
	validate *validator.Validate
}

// NewChecker builds a Checker for rules.
func NewChecker(rules Rules) *Checker {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("email_address", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return rules.ValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return rules.ValidPassword(fl.Field().String())
	})
	return &Checker{rules: rules, validate: v}
}

// Rules returns the rule set the checker applies.
func (c *Checker) Rules() Rules { return c.rules }

// CheckSignup returns a *FormError naming every invalid field, or nil.
func (c *Checker) CheckSignup(f SignupForm) error {
	return c.check(f)
}

// CheckLogin returns a *FormError naming every invalid field, or nil.
func (c *Checker) CheckLogin(f LoginForm) error {
	return c.check(f)
}

func (c *Checker) check(form any) error {
	err := c.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := &FormError{}
	for _, v := range verrs {
		fe.Fields = append(fe.Fields, v.Field())
	}
	return fe
}
