package api

import (
	"errors"
	"strings"
	"testing"
)

func TestError_MessageKeepsCause(t *testing.T) {
	cause := errors.New("decode response: unexpected EOF")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"backend message", &Error{Method: "DELETE", Path: "/categorias/1", Status: 409, Message: "em uso"},
			"api DELETE /categorias/1 returned status 409: em uso"},
		{"status with cause", &Error{Method: "GET", Path: "/categorias", Status: 200, Err: cause},
			"api GET /categorias returned status 200: decode response: unexpected EOF"},
		{"bare status", &Error{Method: "GET", Path: "/produtos", Status: 500},
			"api GET /produtos returned status 500"},
		{"transport", &Error{Method: "GET", Path: "/listas", Err: cause},
			"api GET /listas: decode response: unexpected EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	err := &Error{Method: "GET", Path: "/categorias", Status: 200, Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false")
	}
	if !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("cause missing from %q", err.Error())
	}
}
