package security

import (
	"strconv"
	"testing"
)

func TestNewVerifyCodeFormatAndRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewVerifyCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("non-numeric code %q: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code out of range: %d", n)
		}
	}
}

func TestIsVerifyCodeSyntax(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"", false},
		{"12 456", false},
	}
	for _, tc := range cases {
		if got := IsVerifyCodeSyntax(tc.in); got != tc.want {
			t.Fatalf("IsVerifyCodeSyntax(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
