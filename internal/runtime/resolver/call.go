package resolver

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
)

// Call carries the random source and the (already interpolated) arguments of
// one generator invocation.
type Call struct {
	Rand *gofakeit.Faker
	Ref  Reference
	Args []any
}

func (c *Call) arg(i int) (any, bool) {
	if i < 0 || i >= len(c.Args) || c.Args[i] == nil {
		return nil, false
	}
	return c.Args[i], true
}

func (c *Call) argError(i int, want string, got any) error {
	return fmt.Errorf("%w: %s argument %d must be %s, got %T", errspkg.ErrInvalidArgument, c.Ref.Method, i, want, got)
}

// Int returns argument i as an int, or def when it is absent.
func (c *Call) Int(i, def int) (int, error) {
	v, ok := c.arg(i)
	if !ok {
		return def, nil
	}
	switch typed := v.(type) {
	case int:
		return typed, nil
	case float64:
		if typed == float64(int(typed)) {
			return int(typed), nil
		}
	}
	return 0, c.argError(i, "an integer", v)
}

// IntIn is Int restricted to the inclusive range [low, high].
func (c *Call) IntIn(i, def, low, high int) (int, error) {
	n, err := c.Int(i, def)
	if err != nil {
		return 0, err
	}
	if n < low || n > high {
		return 0, fmt.Errorf("%w: %s argument %d must be between %d and %d, got %d",
			errspkg.ErrInvalidArgument, c.Ref.Method, i, low, high, n)
	}
	return n, nil
}

// Float returns argument i as a float64, or def when it is absent.
func (c *Call) Float(i int, def float64) (float64, error) {
	v, ok := c.arg(i)
	if !ok {
		return def, nil
	}
	switch typed := v.(type) {
	case int:
		return float64(typed), nil
	case float64:
		return typed, nil
	}
	return 0, c.argError(i, "a number", v)
}

// String returns argument i as a string, or def when it is absent.
func (c *Call) String(i int, def string) (string, error) {
	v, ok := c.arg(i)
	if !ok {
		return def, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", c.argError(i, "a string", v)
	}
	return s, nil
}

// Strings returns argument i as a list of strings. A single string is
// accepted as a one-element list.
func (c *Call) Strings(i int, def []string) ([]string, error) {
	v, ok := c.arg(i)
	if !ok {
		return def, nil
	}
	switch typed := v.(type) {
	case string:
		return []string{typed}, nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, isString := item.(string)
			if !isString {
				return nil, c.argError(i, "a list of strings", v)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, c.argError(i, "a list of strings", v)
}

// Bool returns argument i as a bool, or def when it is absent.
func (c *Call) Bool(i int, def bool) (bool, error) {
	v, ok := c.arg(i)
	if !ok {
		return def, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, c.argError(i, "a boolean", v)
	}
	return b, nil
}
