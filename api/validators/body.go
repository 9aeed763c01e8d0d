package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// ValidationMessage is the envelope message for malformed request bodies.
const ValidationMessage = "Validation error"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// DecodeJSONBody decodes a strict JSON body into dest and runs struct validation.
func DecodeJSONBody(r *http.Request, dest any) error {
	return DecodeJSONBodyWithMessage(r, dest, ValidationMessage)
}

// DecodeJSONBodyWithMessage is DecodeJSONBody with a route-specific failure message.
func DecodeJSONBodyWithMessage(r *http.Request, dest any, message string) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message).WithDetails(decodeDetails(err))
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err, message)
	}
	return nil
}

// ValidateStruct runs the shared validator against an already decoded value.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationErrors(err, ValidationMessage)
	}
	return nil
}

func decodeDetails(err error) map[string]string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{typeErr.Field: fmt.Sprintf("must be a valid %s", jsonKind(typeErr.Type))}
	}
	if errors.Is(err, io.EOF) {
		return map[string]string{"non_field_errors": "request body is required"}
	}
	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
		return map[string]string{field: "unknown field"}
	}
	return map[string]string{"non_field_errors": "malformed JSON"}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	}
	return "value"
}

func formatValidationErrors(err error, message string) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		if fe.Param() == "1" && fe.Kind() == reflect.String {
			return "This field may not be blank."
		}
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "Passwords do not match."
	}
	return "is invalid"
}
