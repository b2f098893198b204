package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// check validates v and converts the failures into a *domain.ValidationError
// keyed by form field name.
func check(v any, summary string) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = describe(fe)
		}
	}
	return &domain.ValidationError{Message: summary, Fields: fields}
}

func describe(fe validator.FieldError) string {
	label := labels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be between %d and %d", label, domain.MinScore, domain.MaxScore)
	case "max":
		return fmt.Sprintf("%s must be between %d and %d", label, domain.MinScore, domain.MaxScore)
	case "email":
		return "enter a valid email address"
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	case "uuid":
		return "choose a game"
	default:
		return label + " is invalid"
	}
}

var labels = map[string]string{
	"title":        "title",
	"platform":     "platform",
	"genre":        "genre",
	"release_date": "release date",
	"game_id":      "game",
	"score":        "score",
	"strengths":    "strengths",
	"weaknesses":   "weaknesses",
	"email":        "email",
	"password":     "password",
}
