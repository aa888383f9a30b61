package sysinfo

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableProcessorCount(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), AvailableProcessorCount())
}

func TestParallelismFor(t *testing.T) {
	assert.Equal(t, 1, parallelismFor(0))
	assert.Equal(t, 2, parallelismFor(1))
	assert.Equal(t, 16, parallelismFor(8))
	assert.Equal(t, 255, parallelismFor(200))
	assert.Equal(t, parallelismFor(runtime.NumCPU()), DefaultParallelism())
}

func TestDetect(t *testing.T) {
	p := Detect()
	assert.Equal(t, AvailableProcessorCount(), p.Threads)
	assert.GreaterOrEqual(t, p.LogicalCores, 0)
}
