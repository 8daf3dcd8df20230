package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenGenerator_Sizes(t *testing.T) {
	tests := []struct {
		in      int
		wantLen int
	}{
		{0, DefaultTokenBytes * 2},
		{8, MinTokenBytes * 2},
		{16, 32},
		{48, 96},
	}
	for _, tt := range tests {
		tok, err := NewTokenGenerator(tt.in).Generate()
		require.NoError(t, err)
		assert.Len(t, tok, tt.wantLen)

		_, err = hex.DecodeString(tok)
		assert.NoError(t, err)
	}
}

func TestTokenGenerator_Unique(t *testing.T) {
	g := NewTokenGenerator(0)
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		tok, err := g.Generate()
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}
