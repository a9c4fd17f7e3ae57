package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashSecret_RoundTrip(t *testing.T) {
	Cost = bcrypt.MinCost
	t.Cleanup(func() { Cost = bcrypt.DefaultCost })

	h, err := HashSecret("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.NotEqual(t, "0123456789abcdef0123456789abcdef", h)

	assert.True(t, CheckSecret(h, "0123456789abcdef0123456789abcdef"))
	assert.False(t, CheckSecret(h, "0123456789abcdef0123456789abcdee"))
	assert.False(t, CheckSecret("not-a-hash", "anything"))
}
