// Package randompkg provides functionality for generating random application common items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	alphabet     = "abcdefghijklmnopqrstuvwxyz"
	digits       = "0123456789"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

func fromAlphabet(a string, n int) string {
	var sb strings.Builder

	k := len(a)

	for i := 0; i < n; i++ {
		c := a[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// String generates a random lowercase string of length n.
func String(n int) string {
	return fromAlphabet(alphabet, n)
}

// Digits generates a random numeric string of length n.
func Digits(n int) string {
	return fromAlphabet(digits, n)
}

// Code generates a random uppercase alphanumeric code of length n.
func Code(n int) string {
	return fromAlphabet(codeAlphabet, n)
}

// Name generates a random display name.
func Name() string {
	s := String(6)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Phone generates a random phone number.
func Phone() string {
	return "+79" + Digits(9)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}
