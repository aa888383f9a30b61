package sysinfo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuardFor(t *testing.T) {
	assert.Equal(t, uint32(1), MemoryGuardFor(0))
	assert.Equal(t, uint32(1), MemoryGuardFor(1024))
	assert.Equal(t, uint32(4*1024*1024), MemoryGuardFor(8<<30))
	assert.Equal(t, uint32(math.MaxUint32), MemoryGuardFor(math.MaxUint64))
}

func TestDetectMemory(t *testing.T) {
	m, err := DetectMemory()
	require.NoError(t, err)
	assert.NotZero(t, m.Total)
	assert.LessOrEqual(t, m.Available, m.Total)
}

func TestDefaultMemoryGuard(t *testing.T) {
	guard, err := DefaultMemoryGuard()
	require.NoError(t, err)
	m, err := DetectMemory()
	require.NoError(t, err)
	assert.NotZero(t, guard)
	assert.Less(t, uint64(guard)*1024, m.Total)
}
