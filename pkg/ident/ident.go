// Package ident generates the opaque record identifiers used as store keys
// and bearer tokens.
package ident

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the fixed identifier length for tokens, carts and orders.
const Length = 20

// New returns a random identifier of n characters from a lowercase
// alphanumeric alphabet.
func New(n int) string {
	if n <= 0 {
		n = Length
	}

	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		r, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken.
			panic(err)
		}
		b[i] = alphabet[r.Int64()]
	}

	return string(b)
}
