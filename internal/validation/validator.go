package validation

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sporthub-api/internal/models"
)

// MaxContentRunes bounds a comment body in characters
const MaxContentRunes = 5000

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is a list of validation failures usable as an error
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Field + ": " + ve.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsErrors extracts validation failures from err
func AsErrors(err error) (Errors, bool) {
	var ve Errors
	ok := errors.As(err, &ve)
	return ve, ok
}

// Validator checks and cleans user input
type Validator struct {
	structs  *validator.Validate
	policy   *bluemonday.Policy
	maxWords int
}

// NewValidator creates a validator allowing at most maxWords words per comment.
// Zero selects models.MaxCommentWords.
func NewValidator(maxWords int) *Validator {
	if maxWords <= 0 {
		maxWords = models.MaxCommentWords
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	return &Validator{
		structs:  v,
		policy:   bluemonday.StrictPolicy(),
		maxWords: maxWords,
	}
}

// Sanitize strips all markup from s and trims surrounding whitespace.
// The result stays HTML-escaped; text that reads as markup once decoded
// must never reach storage decoded.
func (v *Validator) Sanitize(s string) string {
	return strings.TrimSpace(v.policy.Sanitize(s))
}

// CleanComment returns the trimmed, markup-free content of a submission,
// or the reasons it cannot be posted.
func (v *Validator) CleanComment(content string) (string, error) {
	clean := v.Sanitize(content)
	// Limits apply to the text as read, not to its escaped form
	text := html.UnescapeString(clean)

	var errs Errors
	switch {
	case strings.TrimSpace(text) == "":
		errs = append(errs, ValidationError{Field: "content", Message: "content is required"})
	case utf8.RuneCountInString(text) > MaxContentRunes:
		errs = append(errs, ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("content exceeds maximum of %d characters", MaxContentRunes),
		})
	default:
		if words := len(strings.Fields(text)); words > v.maxWords {
			errs = append(errs, ValidationError{
				Field:   "content",
				Message: fmt.Sprintf("content exceeds maximum of %d words (has %d)", v.maxWords, words),
			})
		}
	}

	if len(errs) > 0 {
		return "", errs
	}
	return clean, nil
}

// ValidateLogin checks a login request and normalises its email
func (v *Validator) ValidateLogin(req *models.LoginRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = v.Sanitize(req.Name)
	return v.ValidateStruct(req)
}

// ValidateProfile checks a profile update and sanitises the display name
func (v *Validator) ValidateProfile(update *models.ProfileUpdate) error {
	var errs Errors
	if update.Name != nil {
		name := v.Sanitize(*update.Name)
		update.Name = &name
		if name == "" {
			errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
		}
	}
	if update.Avatar != nil {
		avatar := strings.TrimSpace(*update.Avatar)
		update.Avatar = &avatar
	}

	if err := v.ValidateStruct(update); err != nil {
		ve, ok := AsErrors(err)
		if !ok {
			return err
		}
		errs = append(errs, ve...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateStruct runs the validate tags of s
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.structs.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Value:   fe.Value(),
		})
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "invalid email format"
	case "url":
		return "invalid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
