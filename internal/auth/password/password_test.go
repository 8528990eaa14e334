package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

func TestHashVerify(t *testing.T) {
	encoded, err := HashWith("correct horse", fast)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"))
	assert.True(t, Verify("correct horse", encoded))
	assert.False(t, Verify("battery staple", encoded))
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, err := HashWith("same", fast)
	require.NoError(t, err)
	b, err := HashWith("same", fast)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$",
	} {
		assert.False(t, Verify("anything", encoded), encoded)
	}
}

func TestDecodeRoundTripsParams(t *testing.T) {
	encoded, err := HashWith("pw", fast)
	require.NoError(t, err)

	p, _, _, err := decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, fast, p)
}
