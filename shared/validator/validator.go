package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"

	val "github.com/go-playground/validator/v10"

	"innkeeper/shared/failure"
)

var validate *val.Validate

var sandboxIDPattern = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)

// registerSandboxIDValidation restricts sandbox identifiers to a key-safe slug,
// since they end up embedded in object-storage key prefixes.
func registerSandboxIDValidation(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	return sandboxIDPattern.MatchString(value)
}

func registerDateValidation(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	return datePattern.MatchString(value)
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	err := validate.RegisterValidation("sandboxid", registerSandboxIDValidation)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("bookingdate", registerDateValidation)
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
