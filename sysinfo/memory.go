package sysinfo

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/mem"
)

// Memory is the machine's RAM in bytes.
type Memory struct {
	Total     uint64 `yaml:"total"`
	Available uint64 `yaml:"available"`
}

func DetectMemory() (Memory, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Memory{}, errors.Wrap(err, "can't get memory info")
	}
	return Memory{Total: vm.Total, Available: vm.Available}, nil
}

// DefaultMemoryGuard is the largest Argon2 memory cost, in KiB, worth attempting on this machine:
// half of the memory currently available. Levels above it fail fast instead of getting the
// process killed.
func DefaultMemoryGuard() (uint32, error) {
	m, err := DetectMemory()
	if err != nil {
		return 0, err
	}
	return MemoryGuardFor(m.Available), nil
}

// MemoryGuardFor is DefaultMemoryGuard for a given amount of available memory.
func MemoryGuardFor(availableBytes uint64) uint32 {
	kib := availableBytes / 2 / 1024
	if kib < 1 {
		return 1
	}
	if kib > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(kib)
}
