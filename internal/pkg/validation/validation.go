// Package validation wires validator/v10 into gin binding and turns its
// errors into per-field response entries.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jobboard/cms/internal/pkg/response"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	yearPattern = regexp.MustCompile(`^\d{4}$`)

	setupOnce sync.Once
	engine    *validator.Validate
)

// Engine returns gin's validator with the project's tag name func and
// custom rules registered.
func Engine() *validator.Validate {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			v = validator.New()
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("year", func(fl validator.FieldLevel) bool {
			return yearPattern.MatchString(fl.Field().String())
		})
		engine = v
	})
	return engine
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Struct validates v outside of gin binding (multipart forms, settings).
func Struct(v interface{}) error {
	return Engine().Struct(v)
}

// Fields converts a validator error into field entries. ok is false for
// errors that are not validation failures (malformed JSON, wrong types).
func Fields(err error) ([]response.FieldError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make([]response.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out = append(out, response.FieldError{
			Field:   field,
			Rule:    fe.Tag(),
			Message: message(field, fe),
		})
	}
	return out, true
}

func message(field string, fe validator.FieldError) string {
	lengthy := fe.Kind() == reflect.String || fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map
	switch fe.Tag() {
	case "required", "required_without", "required_if":
		return field + " is required"
	case "min":
		if lengthy {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if lengthy {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "url", "http_url":
		return field + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "slug":
		return field + " may only contain lowercase letters, digits and single hyphens"
	case "year":
		return field + " must be a four digit year"
	case "gtefield", "gtfield":
		return fmt.Sprintf("%s must not be before %s", field, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

// Bind binds the request into obj and writes a 400 on failure.
// It reports whether the handler may continue.
func Bind(c *gin.Context, obj interface{}) bool {
	Engine()
	if err := c.ShouldBind(obj); err != nil {
		Abort(c, err)
		return false
	}
	return true
}

// BindQuery is Bind for query string parameters.
func BindQuery(c *gin.Context, obj interface{}) bool {
	Engine()
	if err := c.ShouldBindQuery(obj); err != nil {
		Abort(c, err)
		return false
	}
	return true
}

// Check validates obj and writes a 400 on failure.
func Check(c *gin.Context, obj interface{}) bool {
	if err := Struct(obj); err != nil {
		Abort(c, err)
		return false
	}
	return true
}

// Abort writes the 400 for a binding or validation error.
func Abort(c *gin.Context, err error) {
	if fields, ok := Fields(err); ok {
		response.ValidationFailed(c, fields)
		return
	}
	response.BadRequest(c, "invalid request body: "+err.Error())
}
