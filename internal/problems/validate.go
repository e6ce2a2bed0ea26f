package problems

import (
	"errors"
	"net/url"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// absurl: http(s) scheme and host, no whitespace anywhere.
	_ = v.RegisterValidation("absurl", func(fl validator.FieldLevel) bool {
		return IsAbsoluteURL(fl.Field().String())
	})
	return v
}

// IsAbsoluteURL reports whether raw is an http or https URL with a host.
// raw must already be trimmed; any whitespace makes it invalid.
func IsAbsoluteURL(raw string) bool {
	if raw == "" || strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	return u.Hostname() != ""
}

// Normalize trims surrounding whitespace from the URL, which is what gets stored.
func Normalize(req CreateProblemRequest) CreateProblemRequest {
	req.URL = strings.TrimSpace(req.URL)
	return req
}

// Validate checks a create request. It returns *ValidationError listing every bad field.
func Validate(req CreateProblemRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidationError([]string{"body"}, err.Error(), "value_error")
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, fieldError(fe))
	}
	return out
}

func fieldError(fe validator.FieldError) FieldError {
	loc := []string{"body", fe.Field()}
	switch fe.Tag() {
	case "required":
		return FieldError{Loc: loc, Msg: "field required", Type: "value_error.missing"}
	case "absurl":
		return FieldError{Loc: loc, Msg: "invalid or missing URL scheme or host", Type: "value_error.url"}
	default:
		return FieldError{Loc: loc, Msg: "failed on " + fe.Tag() + " rule", Type: "value_error"}
	}
}
