package argon2cal

import (
	"math"
	"time"

	"github.com/alecthomas/units"

	"github.com/kuking/argon2cal/crypto"
)

const (
	// MinMemoryLevel is the smallest memory level ever explored, in KiB.
	MinMemoryLevel uint32 = 1024
	// MaxMemoryLevel is where an unbounded calibration stops growing memory, in KiB (4GiB).
	MaxMemoryLevel uint32 = 4 * 1024 * 1024
	// MaxIterations is the largest pass count Argon2 can be asked for.
	MaxIterations = math.MaxUint32
	// MaxParallelism is the largest lane count Argon2 can be asked for.
	MaxParallelism = math.MaxUint8
)

type Parameters = crypto.Argon2Parameters

// MemoryBudget is either a bounded maximum in KiB or unbounded. The zero value is unbounded.
type MemoryBudget struct {
	max     uint32
	bounded bool
}

func BoundedMemory(kib uint32) MemoryBudget {
	return MemoryBudget{max: kib, bounded: true}
}

func UnboundedMemory() MemoryBudget {
	return MemoryBudget{}
}

// Max returns the maximum in KiB and whether the budget is bounded at all.
func (b MemoryBudget) Max() (uint32, bool) {
	return b.max, b.bounded
}

// Levels lists the memory levels to explore, in KiB, in exploration order.
//
// Bounded budgets halve down from the maximum while at or above max(1024, max/8), producing a
// decreasing sequence. Unbounded budgets double from 1024 up to and including 4GiB, producing an
// increasing sequence.
func (b MemoryBudget) Levels() []uint32 {
	var levels []uint32
	if b.bounded {
		lowerBound := b.max / 8
		if lowerBound < MinMemoryLevel {
			lowerBound = MinMemoryLevel
		}
		for m := b.max; m >= lowerBound && m > 0; m /= 2 {
			levels = append(levels, m)
		}
		return levels
	}
	for m := uint64(MinMemoryLevel); m <= uint64(MaxMemoryLevel); m *= 2 {
		levels = append(levels, uint32(m))
	}
	return levels
}

func (b MemoryBudget) String() string {
	if !b.bounded {
		return "unbounded"
	}
	return units.Base2Bytes(int64(b.max) * 1024).String()
}

// Input is what the operator asks a calibration run for. It is not modified by Run.
type Input struct {
	SaltAndPasswordLength int
	MaxTime               time.Duration
	Parallelism           int
	Memory                MemoryBudget
	MinIterations         int
	HashLength            int
	Mode                  crypto.Mode
}

// Verify returns a *ConfigurationError describing the first invalid field, or nil.
func (in *Input) Verify() error {
	if in == nil {
		return &ConfigurationError{Field: "input", Reason: "missing"}
	}
	if in.SaltAndPasswordLength <= 0 {
		return &ConfigurationError{Field: "salt_and_password_length", Reason: "must be positive"}
	}
	if in.MaxTime.Milliseconds() <= 0 {
		return &ConfigurationError{Field: "max_time", Reason: "must be at least 1ms"}
	}
	if in.Parallelism <= 0 || in.Parallelism > MaxParallelism {
		return &ConfigurationError{Field: "parallelism", Reason: "must be between 1 and 255"}
	}
	if in.HashLength <= 0 || int64(in.HashLength) > MaxIterations {
		return &ConfigurationError{Field: "hash_length", Reason: "must be between 1 and 4294967295"}
	}
	if in.MinIterations < 1 || int64(in.MinIterations) > MaxIterations {
		return &ConfigurationError{Field: "min_iterations", Reason: "must be between 1 and 4294967295"}
	}
	if kib, bounded := in.Memory.Max(); bounded && kib == 0 {
		return &ConfigurationError{Field: "max_memory", Reason: "a bounded budget must be positive"}
	}
	return nil
}

// Result is the slowest parameter set found within budget at one memory level.
type Result struct {
	ElapsedMilliseconds int64      `yaml:"elapsed_ms"`
	Parameters          Parameters `yaml:"parameters"`
}

func (r Result) Elapsed() time.Duration {
	return time.Duration(r.ElapsedMilliseconds) * time.Millisecond
}
