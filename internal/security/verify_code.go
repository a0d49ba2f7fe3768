package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

const (
	verifyCodeMin  = 100000
	verifyCodeSpan = 900000
)

// NewVerifyCode returns a 6-digit numeric code drawn uniformly from
// [100000, 999999]. Codes are short-lived and rate-limited, but a CSPRNG
// costs nothing here.
func NewVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(verifyCodeSpan))
	if err != nil {
		return "", fmt.Errorf("generate verify code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+verifyCodeMin, 10), nil
}

// IsVerifyCodeSyntax reports whether v looks like a code we could have
// issued: exactly 6 ASCII digits.
func IsVerifyCodeSyntax(v string) bool {
	if len(v) != 6 {
		return false
	}
	for _, c := range v {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
