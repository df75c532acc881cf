package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("mat-khau-bi-mat")
	require.NoError(t, err)
	assert.NotEqual(t, "mat-khau-bi-mat", hash)

	assert.True(t, Verify("mat-khau-bi-mat", hash))
	assert.False(t, Verify("sai-mat-khau", hash))
}

func TestHashTokenIsDeterministic(t *testing.T) {
	a := HashToken("refresh-token-value")
	b := HashToken("refresh-token-value")
	c := HashToken("other-token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestValidate(t *testing.T) {
	assert.False(t, Validate("short"))
	assert.False(t, Validate(""))
	assert.True(t, Validate("12345678"))
	assert.True(t, Validate("đủ dài để dùng"))
}
