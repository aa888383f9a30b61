// Package sysinfo reports the processor and memory the calibration runs on. Calibrated parameters
// are only meaningful for the machine that produced them, so the CLI prints this next to every
// result.
package sysinfo

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Processor describes the CPU as reported by cpuid.
type Processor struct {
	Brand         string `yaml:"brand"`
	PhysicalCores int    `yaml:"physical_cores"`
	LogicalCores  int    `yaml:"logical_cores"`
	Threads       int    `yaml:"available_threads"`
}

func Detect() Processor {
	return Processor{
		Brand:         cpuid.CPU.BrandName,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		Threads:       AvailableProcessorCount(),
	}
}

// AvailableProcessorCount is the number of logical processors this process may run on. cpuid
// reports the package topology, which ignores affinity masks and container quotas, so it is only
// used when the runtime cannot tell.
func AvailableProcessorCount() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	if cpuid.CPU.LogicalCores > 0 {
		return cpuid.CPU.LogicalCores
	}
	return 1
}

// DefaultParallelism is twice the available processors (RFC 9106 section 4), capped at the 255 lanes
// Argon2 supports.
func DefaultParallelism() int {
	return parallelismFor(AvailableProcessorCount())
}

func parallelismFor(cores int) int {
	p := 2 * cores
	if p < 1 {
		return 1
	}
	if p > 255 {
		return 255
	}
	return p
}
