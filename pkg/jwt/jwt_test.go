package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	id := Identity{UserID: "u-1", Username: "alice", Role: "store", Store: "MDC - Carioca"}
	tok, err := Generate("s3cret", "estoque-cd", 5, id)
	require.NoError(t, err)

	got, err := Parse("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := Generate("s3cret", "estoque-cd", 5, Identity{UserID: "u-1"})
	require.NoError(t, err)

	_, err = Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	tok, err := Generate("s3cret", "estoque-cd", -1, Identity{UserID: "u-1"})
	require.NoError(t, err)

	_, err = Parse("s3cret", tok)
	assert.Error(t, err)
}

func TestEmptySecret(t *testing.T) {
	_, err := Generate("", "x", 5, Identity{})
	assert.Error(t, err)
	_, err = Parse("", "x")
	assert.Error(t, err)
}
