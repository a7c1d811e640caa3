package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrConfigRequired", ErrConfigRequired, "fakeflow: configuration is required"},
		{"ErrPublisherRequired", ErrPublisherRequired, "fakeflow: publisher is required"},
		{"ErrTopicRequired", ErrTopicRequired, "fakeflow: topic is required"},
		{"ErrSinkRequired", ErrSinkRequired, "fakeflow: sink is required"},
		{"ErrEmptyKeyPool", ErrEmptyKeyPool, "fakeflow: key pool is empty"},
		{"ErrAlreadyRan", ErrAlreadyRan, "fakeflow: generator has already run"},
		{"ErrFieldConflict", ErrFieldConflict, "fakeflow: field path crosses a non-mapping value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestUnknownGeneratorError(t *testing.T) {
	err := fmt.Errorf("compile rule: %w", &UnknownGeneratorError{Family: "Name", Method: "nickname"})

	if !errors.Is(err, ErrUnknownGenerator) {
		t.Fatal("expected errors.Is to match ErrUnknownGenerator")
	}

	var unknown *UnknownGeneratorError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownGeneratorError, got %T", err)
	}
	if unknown.Family != "Name" || unknown.Method != "nickname" {
		t.Fatalf("unexpected fields: %+v", unknown)
	}
	if got := unknown.Error(); got != "fakeflow: unknown generator Name.nickname" {
		t.Errorf("Error() = %q", got)
	}

	family := &UnknownGeneratorError{Family: "Pokemon"}
	if got := family.Error(); got != `fakeflow: unknown generator family "Pokemon"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestTemplateError(t *testing.T) {
	err := &TemplateError{Template: "%{first} x", Field: "first", Err: ErrTemplateFieldMissing}

	if !errors.Is(err, ErrTemplateFieldMissing) {
		t.Fatal("expected errors.Is to match wrapped sentinel")
	}
	want := `fakeflow: template references a missing field: %{first} in "%{first} x"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestConfigValidationError(t *testing.T) {
	inner := errors.New("invalid port")
	err := ConfigValidationError{Err: inner}

	want := "fakeflow: invalid configuration: invalid port"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if unwrapped := err.Unwrap(); unwrapped != inner {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, inner)
	}
}

func TestNewConfigValidationError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if err := NewConfigValidationError(nil); err != nil {
			t.Errorf("NewConfigValidationError(nil) = %v, want nil", err)
		}
	})

	t.Run("errors.Is works with wrapped error", func(t *testing.T) {
		inner := errors.New("specific error")
		err := NewConfigValidationError(inner)

		var cfgErr ConfigValidationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigValidationError, got %T", err)
		}
		if !errors.Is(err, inner) {
			t.Error("errors.Is should match wrapped error")
		}
	})
}
