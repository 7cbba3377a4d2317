package validator

import (
	"client-registry/models"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error joins every message so the caller can fix all of them at once.
func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// newClient holds the rules for a client that has never been stored.
type newClient struct {
	ID     *int64 `json:"id_client" validate:"isdefault"`
	Active bool   `json:"client_active" validate:"eq=true"`
	Name   string `json:"client_name" validate:"required,notblank,max=100,clientname"`
}

// storedClient holds the rules for a client that is being modified.
type storedClient struct {
	ID   *int64 `json:"id_client" validate:"required"`
	Name string `json:"client_name" validate:"required,notblank,max=100,clientname"`
}

// New creates a new validator instance
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Register custom tag name function to use JSON tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterValidation("clientname", validateClientName)

	return &Validator{validate: v}
}

// Validate validates a struct and returns validation errors
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Convert validation errors to our custom format
	var validationErrs ValidationErrors
	for _, err := range fieldErrs {
		validationErrs = append(validationErrs, ValidationError{
			Field:   err.Field(),
			Message: msgForTag(err),
			Tag:     err.Tag(),
			Value:   valueString(err.Value()),
		})
	}

	return validationErrs
}

// ValidateNewClient checks a client about to be added.
func (v *Validator) ValidateNewClient(c *models.Client) error {
	if c == nil {
		return ValidationErrors{{Field: "client", Message: "client is required", Tag: "required"}}
	}
	return v.Validate(&newClient{ID: c.ID, Active: c.Active, Name: c.Name})
}

// ValidateStoredClient checks a client about to be modified.
func (v *Validator) ValidateStoredClient(c *models.Client) error {
	if c == nil {
		return ValidationErrors{{Field: "client", Message: "client is required", Tag: "required"}}
	}
	return v.Validate(&storedClient{ID: c.ID, Name: c.Name})
}

// msgForTag returns a human-readable error message for a validation tag
func msgForTag(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "isdefault":
		return fmt.Sprintf("%s must be empty for a new client", field)
	case "eq":
		return fmt.Sprintf("%s must be %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "clientname":
		return fmt.Sprintf("%s contains non-printable characters", field)
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// valueString dereferences optional values so messages show the actual input.
func valueString(v interface{}) string {
	if p, ok := v.(*int64); ok {
		if p == nil {
			return ""
		}
		return fmt.Sprintf("%d", *p)
	}
	return fmt.Sprintf("%v", v)
}

// Custom validators

// validateClientName rejects control and other non-printable characters
func validateClientName(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
