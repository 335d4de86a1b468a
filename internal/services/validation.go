package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput wraps every input validation failure.
var ErrInvalidInput = errors.New("invalid input")

// UserTags are the labels a user may pick at signup.
var UserTags = []string{"Student", "Teacher", "Librarian", "Parent", "Academic", "Researcher"}

type SignUpInput struct {
	Username string   `json:"username" validate:"required,max=64"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Email    string   `json:"email" validate:"required,email"`
	Tags     []string `json:"tags" validate:"dive,user_tag"`
}

// BookInput carries catalog metadata for admin create and edit.
type BookInput struct {
	Title           string   `json:"title" validate:"required"`
	Author          string   `json:"author" validate:"required"`
	Genre           string   `json:"genre" validate:"required"`
	Period          string   `json:"period" validate:"required"`
	LiteratureTypes []string `json:"literature_types" validate:"dive,maturita_category"`
}

type RequestInput struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Reason string `json:"reason" validate:"max=2000"`
}

func newValidator(isCategory func(string) bool) *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("user_tag", func(fl validator.FieldLevel) bool {
		tag := fl.Field().String()
		for _, t := range UserTags {
			if t == tag {
				return true
			}
		}
		return false
	})
	_ = v.RegisterValidation("maturita_category", func(fl validator.FieldLevel) bool {
		return isCategory(fl.Field().String())
	})
	return v
}

func (s *LibraryService) validate(in any) error {
	err := s.validator.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "user_tag":
		return fmt.Sprintf("unknown tag %q", fe.Value())
	case "maturita_category":
		return fmt.Sprintf("unknown literature type %q", fe.Value())
	}
	return field + " is invalid"
}
