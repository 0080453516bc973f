package rpc

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := NewError(CodeNotFound, "account 7 not found")
	if got := err.Error(); got != "rpc error -111: account 7 not found" {
		t.Errorf("rpc:errors_test - Error() = %q", got)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(CodeInvalidArgument, "bad value %d", 9)
	if err.Code != CodeInvalidArgument || err.Message != "bad value 9" {
		t.Errorf("rpc:errors_test - Errorf = %+v", err)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, CodeOK},
		{"coded", NewError(CodeUnknownMethod, "x"), CodeUnknownMethod},
		{"wrapped coded", fmt.Errorf("outer: %w", NewError(CodeNotFound, "x")), CodeNotFound},
		{"uncoded", errors.New("plain"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}
