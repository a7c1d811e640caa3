package errors

import (
	sterrors "errors"
	"fmt"
)

var (
	ErrConfigRequired       = sterrors.New("fakeflow: configuration is required")
	ErrLoggerRequired       = sterrors.New("fakeflow: logger is required")
	ErrPublisherRequired    = sterrors.New("fakeflow: publisher is required")
	ErrTopicRequired        = sterrors.New("fakeflow: topic is required")
	ErrSinkRequired         = sterrors.New("fakeflow: sink is required")
	ErrRecordRequired       = sterrors.New("fakeflow: record is required")
	ErrAlreadyRan           = sterrors.New("fakeflow: generator has already run")
	ErrUnknownGenerator     = sterrors.New("fakeflow: unknown generator")
	ErrInvalidReference     = sterrors.New("fakeflow: invalid generator reference")
	ErrInvalidArgument      = sterrors.New("fakeflow: invalid generator argument")
	ErrInvalidFieldPath     = sterrors.New("fakeflow: invalid field path")
	ErrFieldConflict        = sterrors.New("fakeflow: field path crosses a non-mapping value")
	ErrTemplateSyntax       = sterrors.New("fakeflow: malformed template")
	ErrTemplateFieldMissing = sterrors.New("fakeflow: template references a missing field")
	ErrEmptyKeyPool         = sterrors.New("fakeflow: key pool is empty")
	ErrKeySpaceExhausted    = sterrors.New("fakeflow: key space exhausted before pool was filled")
	ErrUnknownCodec         = sterrors.New("fakeflow: unknown codec")
)

// UnknownGeneratorError reports a generator reference whose family or method
// is not registered.
type UnknownGeneratorError struct {
	Family string
	Method string
}

func (e *UnknownGeneratorError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("fakeflow: unknown generator family %q", e.Family)
	}
	return fmt.Sprintf("fakeflow: unknown generator %s.%s", e.Family, e.Method)
}

func (e *UnknownGeneratorError) Is(target error) bool {
	return target == ErrUnknownGenerator
}

// TemplateError wraps an interpolation failure with the offending template.
type TemplateError struct {
	Template string
	Field    string
	Err      error
}

func (e *TemplateError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%v: %%{%s} in %q", e.Err, e.Field, e.Template)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Template)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// ConfigValidationError wraps the joined validation failures of a Config.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return "fakeflow: invalid configuration: " + e.Err.Error()
}

func (e ConfigValidationError) Unwrap() error { return e.Err }

// NewConfigValidationError returns nil when err is nil.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}
