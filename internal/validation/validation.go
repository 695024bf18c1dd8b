// Package validation checks submitted form values before they reach the services.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Limits shared by forms and services
const (
	MaxListNameLength = 250
	MaxTaskLength     = 250
	MinPasswordLength = 8
)

var validate = validator.New()

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RegisterForm is the sign-up form
type RegisterForm struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8,max=72"`
	Confirm  string `validate:"required,eqfield=Password"`
}

// LoginForm is the log-in form
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// ListNameForm names a new or existing list
type ListNameForm struct {
	Name string `validate:"required,max=250"`
}

// ItemForm adds one task
type ItemForm struct {
	Task string `validate:"required,max=250"`
}

// ShareForm optionally e-mails a share link
type ShareForm struct {
	Email string `validate:"omitempty,email"`
}

// Struct validates a form struct and reports the first failing field
func Struct(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return ValidationError{Field: strings.ToLower(fe.Field()), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return "passwords do not match"
	default:
		return field + " is invalid"
	}
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if err := validate.Var(email, "email"); err != nil {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	return nil
}

// ValidateListName trims and checks a list name
func ValidateListName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := Struct(ListNameForm{Name: name}); err != nil {
		return "", err
	}
	return name, nil
}

// ValidateTask trims and checks task text
func ValidateTask(task string) (string, error) {
	task = strings.TrimSpace(task)
	if err := Struct(ItemForm{Task: task}); err != nil {
		return "", err
	}
	return task, nil
}
