// Package ticket generates human-readable ticket codes.
package ticket

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator produces ticket codes. The purchase service takes this as a
// dependency so collisions can be forced in tests.
type Generator interface {
	Generate() string
}

// RandomGenerator produces codes of the form BOL-<year>-<6 random
// characters>. Uniqueness is not guaranteed here; the ledger's unique
// constraint catches collisions at insert time.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) Generate() string {
	buf := make([]byte, 6)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is
			// broken; fall back to a time-derived index.
			buf[i] = codeAlphabet[time.Now().UnixNano()%int64(len(codeAlphabet))]
			continue
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("BOL-%d-%s", time.Now().Year(), string(buf))
}

var _ Generator = (*RandomGenerator)(nil)
