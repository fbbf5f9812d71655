package helpers

import (
	"crypto/rand"
	"math/big"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ResetTokenLength is the length of generated reset and verification tokens.
const ResetTokenLength = 64

// GenerateToken returns n characters drawn uniformly from [A-Za-z0-9].
func GenerateToken(n int) (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = tokenAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// VerifyCodeDigits is the length of the signup verification code.
const VerifyCodeDigits = 6

// GenerateNumericCode returns a zero-padded code of the given number of
// decimal digits.
func GenerateNumericCode(digits int) (string, error) {
	b := make([]byte, digits)
	ten := big.NewInt(10)
	for i := range b {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b[i] = byte('0' + d.Int64())
	}
	return string(b), nil
}
