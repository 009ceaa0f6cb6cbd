// Package forms declares the input schemas of every form and validates them
// with one routine. Per-form code only lists fields and their rules.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a field's JSON name to a user-facing message
type FieldErrors map[string]string

// ValidationError is returned when a form fails its schema
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

// AsValidationError unwraps err into a *ValidationError if it is one
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	visitOpens  = "09:00"
	visitCloses = "17:00"
)

// clock is the time source for date rules
var clock = time.Now

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "notblank", notBlank)
	mustRegister(v, "notpast", notPast)
	mustRegister(v, "visit_time", visitTime)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("forms: register %s: %v", tag, err))
	}
}

// notBlank rejects values made only of whitespace
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// notPast accepts a YYYY-MM-DD date that is today or later
func notPast(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	now := clock()
	d, err := time.ParseInLocation(dateLayout, raw, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !d.Before(today)
}

// visitTime accepts an HH:MM time within visiting hours
func visitTime(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	if _, err := time.Parse(timeLayout, raw); err != nil {
		return false
	}
	return raw >= visitOpens && raw <= visitCloses
}

// Validate checks v against its `validate` tags and returns a *ValidationError
// listing every failing field, or nil.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; !seen {
			fields[name] = message(fe)
		}
	}
	return &ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "Este campo es obligatorio"
	case "email":
		return "Dirección de correo electrónico no válida"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser mayor o igual a %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener como máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser menor o igual a %s", fe.Param())
	case "len":
		return fmt.Sprintf("Debe tener exactamente %s caracteres", fe.Param())
	case "gt":
		return fmt.Sprintf("Debe ser mayor a %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Debe ser mayor o igual a %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Debe ser menor o igual a %s", fe.Param())
	case "oneof":
		return "Valor no permitido"
	case "eqfield":
		return "Las contraseñas no coinciden"
	case "datetime":
		return "Fecha u hora no válida"
	case "notpast":
		return "La fecha no puede estar en el pasado"
	case "visit_time":
		return fmt.Sprintf("El horario de visitas es de %s a %s", visitOpens, visitCloses)
	case "url", "uri":
		return "URL no válida"
	case "latitude":
		return "Latitud no válida"
	case "longitude":
		return "Longitud no válida"
	default:
		return "Valor no válido"
	}
}
