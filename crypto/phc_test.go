package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var phcParams = Argon2Parameters{Parallelism: 1, Iterations: 2, Memory: 19 * 1024}

func TestPHC_HashAndVerify(t *testing.T) {
	h := Argon2Hasher{}
	phc, err := HashPassword(h, Argon2id, []byte("correct horse"), phcParams, 16, 32)
	require.NoError(t, err)

	encoded := phc.String()
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=19456,t=2,p=1$"), encoded)

	parsed, err := ParsePHC(encoded)
	require.NoError(t, err)
	assert.Equal(t, phc, parsed)

	ok, err := parsed.Verify(h, []byte("correct horse"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = parsed.Verify(h, []byte("battery staple"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPHC_KnownVector(t *testing.T) {
	// from the reference implementation's README:
	// echo -n "password" | ./argon2 somesalt -t 2 -m 16 -p 4 -l 24
	phc, err := ParsePHC("$argon2i$v=19$m=65536,t=2,p=4$c29tZXNhbHQ$RdescudvJCsgt3ub+b+dWRWJTmaaJObG")
	require.NoError(t, err)
	assert.Equal(t, Argon2i, phc.Mode)
	assert.Equal(t, Argon2Parameters{Parallelism: 4, Iterations: 2, Memory: 65536}, phc.Parameters)
	assert.Equal(t, []byte("somesalt"), phc.Salt)
	assert.Len(t, phc.Key, 24)

	ok, err := phc.Verify(Argon2Hasher{}, []byte("password"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParsePHC_Invalid(t *testing.T) {
	for _, s := range []string{
		"",
		"argon2id$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2d$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=16$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=64;t=1;p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=64,t=1,p=300$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$c2FsdA$",
	} {
		_, err := ParsePHC(s)
		assert.ErrorIs(t, err, ErrInvalidPHC, s)
	}
}

func TestPHC_VerifyRefusesOutOfBounds(t *testing.T) {
	phc := &PHC{Mode: Argon2id, Version: 19, Parameters: small, Salt: []byte("somesalt"), Key: make([]byte, 32)}
	_, err := phc.Verify(Argon2Hasher{}, []byte("password"))
	assert.ErrorIs(t, err, ErrBadParameters)
}
