//go:build unit

package token_test

import (
	"testing"

	"aurelia-commerce/internal/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValue(t *testing.T) {
	a, err := token.NewValue()
	require.NoError(t, err)
	b, err := token.NewValue()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	// 32 random bytes base64url-encoded without padding
	assert.Len(t, a, 43)
}

func TestHash(t *testing.T) {
	h := token.Hash("some-refresh-token")

	assert.Len(t, h, 64)
	assert.Equal(t, h, token.Hash("some-refresh-token"))
	assert.NotEqual(t, h, token.Hash("other-refresh-token"))
	assert.NotContains(t, h, "some-refresh-token")
}
