package feedback

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

// SubmitInput is the feedback form. Validate trims surrounding whitespace from
// every field, and the trimmed values are what gets stored.
type SubmitInput struct {
	Title       string `json:"title" validate:"min=5"`
	Category    string `json:"category" validate:"required,category"`
	Description string `json:"description" validate:"min=10"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so the error map matches the form.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := models.ParseCategory(fl.Field().String())
		return err == nil
	})
	if err != nil {
		panic(fmt.Sprintf("feedback: register category validation: %v", err))
	}

	return v
}

// Validate normalises the input and checks it. It returns a *ValidationError
// listing every violated field, or nil.
func (in *SubmitInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)

	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "title":
		return "Title must be at least 5 characters"
	case "description":
		return "Please provide more detail in your description (min 10 chars)"
	case "category":
		if fe.Tag() == "required" {
			return "Please select a category"
		}
		return "Category must be one of: " + models.CategoryList()
	default:
		return fe.Error()
	}
}
