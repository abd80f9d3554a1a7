// Package otp generates numeric one-time codes for email verification.
package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

var ten = big.NewInt(10)

// Generator produces fixed-length decimal codes. The randomness source must be
// cryptographically secure; there is deliberately no fallback.
type Generator struct {
	length int
	random io.Reader
}

// NewGenerator returns a generator of common.OTPLength digits backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{length: common.OTPLength, random: rand.Reader}
}

// Generate returns a code whose digits are independent and uniform over 0-9.
func (g *Generator) Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(g.length)

	for i := 0; i < g.length; i++ {
		d, err := rand.Int(g.random, ten)
		if err != nil {
			return "", fmt.Errorf("otp: read random: %w", err)
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}

	return sb.String(), nil
}
