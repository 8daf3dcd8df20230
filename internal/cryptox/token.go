package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

const (
	DefaultTokenBytes = 32
	MinTokenBytes     = 16
)

// IdentifierGenerator mints opaque, unguessable identifiers.
type IdentifierGenerator interface {
	Generate() (string, error)
}

// TokenGenerator returns hex strings of n random bytes.
type TokenGenerator struct {
	n int
}

// NewTokenGenerator raises sizes below MinTokenBytes to the minimum; zero
// selects DefaultTokenBytes.
func NewTokenGenerator(n int) *TokenGenerator {
	switch {
	case n == 0:
		n = DefaultTokenBytes
	case n < MinTokenBytes:
		n = MinTokenBytes
	}
	return &TokenGenerator{n: n}
}

func (g *TokenGenerator) Generate() (string, error) {
	s, err := common.MakeRandHexString(g.n)
	if err != nil {
		return "", fmt.Errorf("token: %w", err)
	}
	return s, nil
}
