// Package random provides helpers for generating identifiers and tokens.
package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// String returns a random alphanumeric string of length n.
func String(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate random string: %w", err)
		}
		b[i] = alphanumeric[idx.Int64()]
	}
	return string(b), nil
}

// Hex returns a random hex string encoding n bytes of entropy.
func Hex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// OrderNo returns a new order number of the form ORDER_<unix-ts>_<suffix>.
func OrderNo() (string, error) {
	suffix, err := String(9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORDER_%d_%s", time.Now().Unix(), suffix), nil
}
