package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindNone},
		{name: "permission", err: ErrPermissionDenied, want: KindPermissionDenied},
		{name: "wrapped permission", err: fmt.Errorf("set ringer: %w", ErrPermissionDenied), want: KindPermissionDenied},
		{name: "scheduling", err: fmt.Errorf("arm 12: %w", ErrSchedulingDenied), want: KindSchedulingDenied},
		{name: "malformed", err: fmt.Errorf("locations: %w", ErrMalformedState), want: KindMalformedState},
		{name: "collision", err: ErrIdentifierCollision, want: KindCollision},
		{name: "not found", err: fmt.Errorf("timer work: %w", ErrNotFound), want: KindNotFound},
		{name: "invalid", err: Invalidf("minutes must be positive"), want: KindInvalid},
		{name: "other", err: stderrors.New("disk full"), want: KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestInvalidf(t *testing.T) {
	err := Invalidf("radius %d must be positive", -1)
	if !stderrors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "radius -1 must be positive") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: stderrors.New("something went wrong"), expected: "Error: something went wrong"},
		{name: "taxonomy error", err: ErrSchedulingDenied, expected: "Error: exact alarm scheduling denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}
