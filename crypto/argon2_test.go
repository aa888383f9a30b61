package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var small = Argon2Parameters{Parallelism: 1, Iterations: 1, Memory: 64}

func TestParseMode(t *testing.T) {
	for in, exp := range map[string]Mode{"argon2id": Argon2id, "Argon2I": Argon2i, " argon2id ": Argon2id} {
		m, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, exp, m)
	}
	for _, in := range []string{"", "argon2d", "scrypt"} {
		_, err := ParseMode(in)
		assert.ErrorIs(t, err, ErrUnknownMode, in)
	}
}

func TestDigest_Deterministic(t *testing.T) {
	h := Argon2Hasher{}
	for _, mode := range Modes() {
		a, err := h.Digest(mode, []byte("password"), []byte("somesalt"), small, 32)
		require.NoError(t, err)
		b, err := h.Digest(mode, []byte("password"), []byte("somesalt"), small, 32)
		require.NoError(t, err)
		assert.Len(t, a, 32)
		assert.Equal(t, a, b)
	}

	id, _ := h.Digest(Argon2id, []byte("password"), []byte("somesalt"), small, 32)
	i, _ := h.Digest(Argon2i, []byte("password"), []byte("somesalt"), small, 32)
	assert.NotEqual(t, id, i, "modes must produce different digests")
}

func TestDigest_Refusals(t *testing.T) {
	h := Argon2Hasher{MaxMemory: 1024}

	_, err := h.Digest(Argon2id, nil, nil, Argon2Parameters{Parallelism: 1, Iterations: 1, Memory: 2048}, 32)
	assert.ErrorIs(t, err, ErrMemoryLimit)

	_, err = h.Digest("argon2d", nil, nil, small, 32)
	assert.ErrorIs(t, err, ErrUnknownMode)

	for _, p := range []Argon2Parameters{
		{Parallelism: 0, Iterations: 1, Memory: 64},
		{Parallelism: 1, Iterations: 0, Memory: 64},
	} {
		_, err = h.Digest(Argon2id, nil, nil, p, 32)
		assert.ErrorIs(t, err, ErrBadParameters, p.String())
	}
	_, err = h.Digest(Argon2id, nil, nil, small, 0)
	assert.ErrorIs(t, err, ErrBadParameters)
}

func TestArgon2Parameters_Verify(t *testing.T) {
	assert.NoError(t, MinArgon2Parameters.Verify())
	assert.NoError(t, RecommendedArgon2Parameters.Verify())
	assert.NoError(t, MaxArgon2Parameters.Verify())

	for _, p := range []Argon2Parameters{
		{Parallelism: 0, Iterations: 3, Memory: 64 * 1024},
		{Parallelism: 1, Iterations: 0, Memory: 64 * 1024},
		{Parallelism: 1, Iterations: 65, Memory: 64 * 1024},
		{Parallelism: 1, Iterations: 1, Memory: 8 * 1024 * 1024},
		{Parallelism: 1, Iterations: 1, Memory: 1024},
	} {
		assert.ErrorIs(t, p.Verify(), ErrBadParameters, p.String())
	}
}

func TestArgon2Parameters_Preset(t *testing.T) {
	assert.Equal(t, "Maximum", MaxArgon2Parameters.Preset())
	assert.Equal(t, "Recommended", RecommendedArgon2Parameters.Preset())
	assert.Equal(t, "Minimal", MinArgon2Parameters.Preset())
	assert.Equal(t, "Below minimum", small.Preset())
	// 1GiB with a single pass outweighs the recommended 64MiB x 3
	assert.Equal(t, "Recommended", Argon2Parameters{Parallelism: 8, Iterations: 1, Memory: 1024 * 1024}.Preset())
	assert.Equal(t, "m=64,t=1,p=1", small.String())
}

func TestRandBytes(t *testing.T) {
	a, err := RandBytes(16)
	require.NoError(t, err)
	b, err := RandBytes(16)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}

func BenchmarkRecommendedArgon2id(b *testing.B) {
	h := Argon2Hasher{}
	salt, _ := RandBytes(16)
	for i := 0; i < b.N; i++ {
		_, _ = h.Digest(Argon2id, []byte("some password"), salt, RecommendedArgon2Parameters, 32)
	}
}
