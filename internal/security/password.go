package security

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const otpCodeLength = 6

// Hasher wraps bcrypt with a configured cost. It hashes passwords and OTP codes alike.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hashed), nil
}

// Matches reports whether plain hashes to hashed. Malformed hashes do not match.
func (h *Hasher) Matches(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// GenerateOTP returns a uniformly random six digit code without a leading zero.
func GenerateOTP() (string, error) {
	lower := big.NewInt(0).Exp(big.NewInt(10), big.NewInt(otpCodeLength-1), nil)
	span := big.NewInt(0).Mul(lower, big.NewInt(9))
	value, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return value.Add(value, lower).String(), nil
}
