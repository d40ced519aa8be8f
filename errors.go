package shapegen

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	form "github.com/gorilla/schema"
)

// ConfigError reports a configuration problem found before any target ran.
type ConfigError struct {
	// Target names the target the problem belongs to, if any.
	Target  string
	Message string

	// Details maps a field or option key to what is wrong with it.
	Details map[string]string
}

func (e *ConfigError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("shapegen: target %s: %s", e.Target, e.Message)
	}
	return "shapegen: invalid config: " + e.Message
}

// TargetError is returned, joined with the others, for every target that
// failed. Unwrap yields the target's error, which is a
// *codegen.GenerationError when emission itself failed.
type TargetError struct {
	Target string
	Dir    string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("target %s: %v", e.Target, e.Err)
}

func (e *TargetError) Unwrap() error { return e.Err }

// configError turns validator and option decoder failures into a
// ConfigError with one detail per offending field.
func configError(target string, err error) *ConfigError {
	details := make(map[string]string)

	var valErrs validator.ValidationErrors
	var multi form.MultiError
	switch {
	case errors.As(err, &valErrs):
		for _, ve := range valErrs {
			details[fieldPath(ve.Namespace())] = formatValidationError(ve)
		}
	case errors.As(err, &multi):
		for key, e := range multi {
			details[key] = optionMessage(e)
		}
	default:
		return &ConfigError{Target: target, Message: err.Error()}
	}

	keys := slices.Sorted(maps.Keys(details))
	messages := make([]string, len(keys))
	for i, k := range keys {
		messages[i] = k + ": " + details[k]
	}
	return &ConfigError{Target: target, Message: strings.Join(messages, "; "), Details: details}
}

// fieldPath drops the root struct name: "Config.Targets[0].Name" becomes
// "Targets[0].Name".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func optionMessage(err error) string {
	var unknown form.UnknownKeyError
	if errors.As(err, &unknown) {
		return "unknown option"
	}
	var conv form.ConversionError
	if errors.As(err, &conv) {
		return fmt.Sprintf("invalid %s value", conv.Type)
	}
	return err.Error()
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "endswith":
		return fmt.Sprintf("must end with %s", ve.Param())
	case "alphanum":
		return "must be alphanumeric"
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
