package otp

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
)

// ErrInvalidLength is returned when a generator is built with a length outside 1-18.
var ErrInvalidLength = errors.New("otp length must be between 1 and 18")

// Generator produces fixed-length numeric codes.
type Generator interface {
	Generate() (string, error)
}

// Numeric draws each digit independently and uniformly from 0-9.
type Numeric struct {
	length int
	rand   io.Reader
}

// NewNumeric returns a Numeric generator reading from crypto/rand.
func NewNumeric(length int) (*Numeric, error) {
	if length < 1 || length > 18 {
		return nil, ErrInvalidLength
	}
	return &Numeric{length: length, rand: rand.Reader}, nil
}

// Length reports the number of digits produced.
func (n *Numeric) Length() int {
	return n.length
}

// Generate returns a new code. Leading zeros are kept.
func (n *Numeric) Generate() (string, error) {
	ten := big.NewInt(10)
	code := make([]byte, n.length)
	for i := range code {
		d, err := rand.Int(n.rand, ten)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + d.Int64())
	}
	return string(code), nil
}
