package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/inventory/pkg/httpx"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		// ignore unexported or explicitly ignored
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors converts validator.ValidationErrors into a map of
// field name → human-readable message.
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.Field()] = formatFieldError(e)
	}
	return errs
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", e.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(e.Param(), " ", ", "))
	case "numeric":
		return "Must be a numeric value"
	case "alphanum":
		return "Must contain only letters and numbers"
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", e.Param())
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}

// ValidateRequest decodes the JSON request body into T, validates it, and
// writes a 400 error response if either step fails (413 if the body exceeds
// the server's limit).
// Returns (parsedStruct, true) on success or (nil, false) on failure.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	req, ok := DecodeRequest[T](w, r)
	if !ok {
		return nil, false
	}
	if err := Validate(req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, httpx.ErrorBody{
			Error:  "Validation failed",
			Code:   "invalid",
			Fields: FormatValidationErrors(err),
		})
		return nil, false
	}
	return req, true
}

// DecodeRequest decodes the JSON request body into T without running tag
// validation. A well-formed body with a wrongly typed field is reported as a
// field error, not as invalid JSON.
func DecodeRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &tooLarge):
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "request_too_large", "Request body too large")
		case errors.As(err, &typeErr) && typeErr.Field != "":
			httpx.JSON(w, http.StatusBadRequest, httpx.ErrorBody{
				Error:  "Validation failed",
				Code:   "invalid",
				Fields: map[string]string{typeErr.Field: typeMismatchMessage(typeErr.Type)},
			})
		default:
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		}
		return nil, false
	}
	return &req, true
}

func typeMismatchMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required"
	case reflect.Float32, reflect.Float64:
		return "A valid number is required"
	case reflect.String:
		return "Not a valid string"
	case reflect.Bool:
		return "Must be a valid boolean"
	default:
		return "Invalid value"
	}
}
