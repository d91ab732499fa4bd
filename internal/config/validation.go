package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"git.home.luguber.info/inful/docgen/internal/versioning"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// FieldError describes one invalid setting using its YAML path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid setting.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("version", func(fl validator.FieldLevel) bool {
		return versioning.IsVersion(fl.Field().String())
	})
	v.RegisterStructValidation(validateConfigStruct, Config{})
	return v
}

// validateConfigStruct enforces rules that span several fields.
func validateConfigStruct(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	if cfg.Mode == ModeRemote && strings.TrimSpace(cfg.Remote.ConnectionString) == "" {
		sl.ReportError(cfg.Remote.ConnectionString, "remote.connection_string", "ConnectionString", "required_for_remote", "")
	}
	if cfg.Mode == ModeLocal && strings.TrimSpace(cfg.Output.Path) == "" {
		sl.ReportError(cfg.Output.Path, "output.path", "Path", "required_for_local", "")
	}
	if strings.TrimSpace(cfg.Source.Path) == "" && strings.TrimSpace(cfg.Source.Repository) == "" {
		sl.ReportError(cfg.Source.Path, "source.path", "Path", "required_without_repository", "")
	}
}

// ValidateConfig checks a fully defaulted configuration.
func ValidateConfig(cfg *Config) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "version":
		return fmt.Sprintf("must be major.minor.patch, got %q", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "url":
		return "must be an absolute URL"
	case "hostname_port":
		return "must be host:port"
	case "gte":
		return "must not be negative"
	case "required_for_remote":
		return "is required when mode is remote"
	case "required_for_local":
		return "is required when mode is local"
	case "required_without_repository":
		return "is required unless source.repository is set"
	default:
		return "failed " + fe.Tag()
	}
}
