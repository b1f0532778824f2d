// Package schemas holds the shapes that AI output and form input must match
// before they are stored, together with the parse-and-validate step that
// turns raw JSON into a typed value or a reason for rejecting it.
package schemas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. Field names in its errors are the
// json names, so reasons read like the payload that produced them.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidationError is returned when a payload decodes but does not match its
// schema, or does not decode at all.
type ValidationError struct {
	Schema string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s does not match schema: %s", e.Schema, e.Reason)
}

// Result is the outcome of Parse: either OK with a typed Value, or not OK with
// a Reason.
type Result[T any] struct {
	OK     bool
	Value  T
	Reason string
	schema string
}

// Err returns nil for a successful result and a *ValidationError otherwise.
func (r Result[T]) Err() error {
	if r.OK {
		return nil
	}
	return &ValidationError{Schema: r.schema, Reason: r.Reason}
}

// Parse decodes raw into T and validates it.
func Parse[T any](raw []byte) Result[T] {
	var value T
	name := schemaName(value)

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Result[T]{Reason: "empty payload", schema: name}
	}
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return Result[T]{Reason: "invalid JSON: " + err.Error(), schema: name}
	}
	if err := Check(&value); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return Result[T]{Reason: verr.Reason, schema: name}
		}
		return Result[T]{Reason: err.Error(), schema: name}
	}
	return Result[T]{OK: true, Value: value, schema: name}
}

// Check validates an already-decoded value.
func Check(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	reasons := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		reasons = append(reasons, describe(fe))
	}
	return &ValidationError{Schema: schemaName(v), Reason: strings.Join(reasons, "; ")}
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func schemaName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "payload"
	}
	return t.Name()
}
