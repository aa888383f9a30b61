package crypto

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// Argon2 parameter presets, following RFC 9106 section 4 and the OWASP password storage guidance.
//
// Minimum accepted: a parameter set costing less than this shall not be accepted (19MiB, 2 passes)
// Recommended: the RFC 9106 option for memory constrained environments (64MiB, 3 passes, 4 lanes)
// Maximum accepted: an upper limit to avoid DoS when verifying foreign hashes (4GiB, 64 passes)

type Mode string

const (
	Argon2id Mode = "argon2id"
	Argon2i  Mode = "argon2i"
)

var (
	ErrUnknownMode   = errors.New("argon2: unknown mode")
	ErrMemoryLimit   = errors.New("argon2: memory above limit")
	ErrBadParameters = errors.New("argon2: invalid parameters")
)

// Modes lists the variants supported by Argon2Hasher. Argon2d is not offered by x/crypto and is not
// suitable for password storage anyway.
func Modes() []Mode {
	return []Mode{Argon2id, Argon2i}
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes() {
		if m == known {
			return m, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownMode, "%q", s)
}

func (m Mode) String() string {
	return string(m)
}

// Argon2Parameters fully determines the cost of one Argon2 invocation. Memory is in KiB.
type Argon2Parameters struct {
	Parallelism uint8  `yaml:"parallelism"`
	Iterations  uint32 `yaml:"iterations"`
	Memory      uint32 `yaml:"memory"`
}

var MinArgon2Parameters = Argon2Parameters{
	Parallelism: 1,
	Iterations:  2,
	Memory:      19 * 1024,
}

var RecommendedArgon2Parameters = Argon2Parameters{
	Parallelism: 4,
	Iterations:  3,
	Memory:      64 * 1024,
}

var MaxArgon2Parameters = Argon2Parameters{
	Parallelism: 255,
	Iterations:  64,
	Memory:      4 * 1024 * 1024,
}

func (p Argon2Parameters) String() string {
	return fmt.Sprintf("m=%d,t=%d,p=%d", p.Memory, p.Iterations, p.Parallelism)
}

// Cost is the number of KiB-passes the parameters make Argon2 walk through.
func (p Argon2Parameters) Cost() uint64 {
	return uint64(p.Memory) * uint64(p.Iterations)
}

// Preset names the strongest preset whose cost p reaches.
func (p Argon2Parameters) Preset() string {
	switch c := p.Cost(); {
	case c >= MaxArgon2Parameters.Cost():
		return "Maximum"
	case c >= RecommendedArgon2Parameters.Cost():
		return "Recommended"
	case c >= MinArgon2Parameters.Cost():
		return "Minimal"
	default:
		return "Below minimum"
	}
}

// Verify checks p is within the accepted presets. Calibration does not use it, a calibrated set is
// only as strong as the machine and budget allow; it guards hashes coming from elsewhere.
func (p Argon2Parameters) Verify() error {
	if p.Parallelism < MinArgon2Parameters.Parallelism {
		return errors.Wrap(ErrBadParameters, "parallelism below minimum")
	}
	if p.Iterations < 1 || p.Iterations > MaxArgon2Parameters.Iterations {
		return errors.Wrapf(ErrBadParameters, "iterations %d out of [1, %d]", p.Iterations, MaxArgon2Parameters.Iterations)
	}
	if p.Memory > MaxArgon2Parameters.Memory {
		return errors.Wrapf(ErrBadParameters, "memory %dKiB above %dKiB", p.Memory, MaxArgon2Parameters.Memory)
	}
	if p.Cost() < MinArgon2Parameters.Cost() {
		return errors.Wrapf(ErrBadParameters, "%v costs less than the minimum %v", p, MinArgon2Parameters)
	}
	return nil
}

// Argon2Hasher computes Argon2 digests. MaxMemory (KiB), when not zero, refuses any invocation
// above it; the Go runtime cannot recover from an allocation failure so this is the only way a
// calibration on a small machine survives large memory levels.
type Argon2Hasher struct {
	MaxMemory uint32
}

func (h Argon2Hasher) Digest(mode Mode, password, salt []byte, p Argon2Parameters, keyLen uint32) (key []byte, err error) {
	if p.Iterations < 1 || p.Parallelism < 1 || keyLen < 1 {
		return nil, errors.Wrapf(ErrBadParameters, "%v keyLen=%d", p, keyLen)
	}
	if h.MaxMemory != 0 && p.Memory > h.MaxMemory {
		return nil, errors.Wrapf(ErrMemoryLimit, "%dKiB requested, %dKiB allowed", p.Memory, h.MaxMemory)
	}

	defer func() {
		if r := recover(); r != nil {
			key = nil
			err = errors.Errorf("argon2: %v", r)
		}
	}()

	switch mode {
	case Argon2id:
		return argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, keyLen), nil
	case Argon2i:
		return argon2.Key(password, salt, p.Iterations, p.Memory, p.Parallelism, keyLen), nil
	default:
		return nil, errors.Wrapf(ErrUnknownMode, "%q", string(mode))
	}
}
