package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// Request payloads. "type" is assigned by the server and is rejected when a
// client sends it, whatever its value.

type customerRequest struct {
	Firstname string          `json:"firstname" validate:"required"`
	Lastname  string          `json:"lastname" validate:"required"`
	Type      json.RawMessage `json:"type" validate:"isdefault"`
}

type creditCardRequest struct {
	Provider   string `json:"provider" validate:"required"`
	Number     string `json:"number" validate:"required"`
	Expiration string `json:"expiration" validate:"required"`
}

type productRequest struct {
	Name  string          `json:"name" validate:"required"`
	Price *float64        `json:"price" validate:"required"`
	Type  json.RawMessage `json:"type" validate:"isdefault"`
}

type receiptRequest struct {
	CustomerID string          `json:"customerid" validate:"required"`
	ProductIDs []string        `json:"productids" validate:"required,min=1,dive,required"`
	Type       json.RawMessage `json:"type" validate:"isdefault"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a JSON body into dst, rejecting unknown fields, and
// validates it. Failures are returned as *domain.ValidationError.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := r.Body
	if h.maxBodySize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return domain.NewValidationError("", "request body must contain a single JSON object")
	}

	if err := h.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return domain.NewValidationError("", "request body is empty")
	case errors.As(err, &syntaxErr):
		return domain.NewValidationError("", fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))
	case errors.As(err, &typeErr):
		return domain.NewValidationError(typeErr.Field, fmt.Sprintf("must be a %s", jsonKind(typeErr.Type)))
	case errors.As(err, &maxErr):
		return domain.NewValidationError("", fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return domain.NewValidationError(field, "is not allowed")
	default:
		return domain.NewValidationError("", "invalid request body")
	}
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return domain.NewValidationError("", err.Error())
	}

	fe := errs[0]
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, "is required")
	case "isdefault":
		return domain.NewValidationError(field, "is not allowed")
	case "min":
		return domain.NewValidationError(field, fmt.Sprintf("must contain at least %s item(s)", fe.Param()))
	default:
		return domain.NewValidationError(field, fmt.Sprintf("failed %s validation", fe.Tag()))
	}
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}
