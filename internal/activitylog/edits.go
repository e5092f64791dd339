package activitylog

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// EditBuffer holds in-progress facet edits as entered by an operator. It only becomes a query once
// applied.
type EditBuffer struct {
	UserType         string `json:"user_type" validate:"omitempty,oneof=user admin"`
	UserID           string `json:"user_id" validate:"omitempty,number"`
	ActivityType     string `json:"activity_type" validate:"omitempty,max=64"`
	ActivityCategory string `json:"activity_category" validate:"omitempty,max=64"`
	StartDate        string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate          string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Limit            int    `json:"limit" validate:"omitempty,min=1,max=200"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func editValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// EditBufferFrom seeds an edit buffer with the committed filters.
func EditBufferFrom(f QueryFilters) EditBuffer {
	buf := EditBuffer{
		UserType:         string(f.UserType),
		ActivityType:     f.ActivityType,
		ActivityCategory: f.ActivityCategory,
		StartDate:        f.StartDate.String(),
		EndDate:          f.EndDate.String(),
		Limit:            f.Limit,
	}
	if f.UserID > 0 {
		buf.UserID = strconv.FormatInt(f.UserID, 10)
	}
	return buf
}

// Set assigns one facet by its wire name.
func (b *EditBuffer) Set(facet, value string) error {
	value = strings.TrimSpace(value)
	switch facet {
	case FacetUserType:
		b.UserType = value
	case FacetUserID:
		b.UserID = value
	case FacetActivityType:
		b.ActivityType = value
	case FacetActivityCategory:
		b.ActivityCategory = value
	case FacetStartDate:
		b.StartDate = value
	case FacetEndDate:
		b.EndDate = value
	case FacetLimit:
		if value == "" {
			b.Limit = 0
			return nil
		}
		limit, err := strconv.Atoi(value)
		if err != nil {
			return &ValidationError{Facet: FacetLimit, Message: "must be a whole number"}
		}
		b.Limit = limit
	default:
		return &ValidationError{Facet: facet, Message: "unknown facet"}
	}
	return nil
}

// Clear empties one facet by its wire name.
func (b *EditBuffer) Clear(facet string) error {
	return b.Set(facet, "")
}

func (b EditBuffer) trimmed() EditBuffer {
	b.UserType = strings.ToLower(strings.TrimSpace(b.UserType))
	b.UserID = strings.TrimSpace(b.UserID)
	b.ActivityType = strings.TrimSpace(b.ActivityType)
	b.ActivityCategory = strings.TrimSpace(b.ActivityCategory)
	b.StartDate = strings.TrimSpace(b.StartDate)
	b.EndDate = strings.TrimSpace(b.EndDate)
	return b
}

// Facets validates the buffer and converts its non-empty values into typed facets.
func (b EditBuffer) Facets() (Facets, error) {
	b = b.trimmed()
	if err := editValidator().Struct(b); err != nil {
		return Facets{}, toValidationError(err)
	}

	userType, err := ParseUserType(b.UserType)
	if err != nil {
		return Facets{}, &ValidationError{Facet: FacetUserType, Message: err.Error()}
	}

	facets := Facets{
		UserType:         userType,
		ActivityType:     b.ActivityType,
		ActivityCategory: b.ActivityCategory,
	}

	if b.UserID != "" {
		id, err := strconv.ParseInt(b.UserID, 10, 64)
		if err != nil || id <= 0 {
			return Facets{}, &ValidationError{Facet: FacetUserID, Message: "must be a positive integer"}
		}
		facets.UserID = id
	}

	if facets.StartDate, err = ParseDate(b.StartDate); err != nil {
		return Facets{}, &ValidationError{Facet: FacetStartDate, Message: err.Error()}
	}
	if facets.EndDate, err = ParseDate(b.EndDate); err != nil {
		return Facets{}, &ValidationError{Facet: FacetEndDate, Message: err.Error()}
	}
	if err := facets.Validate(); err != nil {
		return Facets{}, err
	}

	return facets, nil
}

// ApplyEdits turns an edit buffer into committed filters. The offset always returns to zero, the
// limit comes from the buffer or the default, and only non-empty facets are carried over.
func ApplyEdits(buf EditBuffer) (QueryFilters, error) {
	facets, err := buf.Facets()
	if err != nil {
		return QueryFilters{}, err
	}
	return QueryFilters{Facets: facets, Limit: buf.Limit, Offset: 0}.Normalize(), nil
}

func toValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := validationErrors[0]
	var message string
	switch fe.Tag() {
	case "oneof":
		message = fmt.Sprintf("must be one of [%s]", fe.Param())
	case "number":
		message = "must be a positive integer"
	case "datetime":
		message = fmt.Sprintf("must be a date formatted %s", fe.Param())
	case "min":
		message = fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		message = fmt.Sprintf("must be at most %s", fe.Param())
	default:
		message = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return &ValidationError{Facet: fe.Field(), Message: message}
}
