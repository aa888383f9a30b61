// Package config loads calibration settings from a yaml file, fills whatever is missing with
// defaults and turns the result into an argon2cal.Input.
//
//	max_time: 500ms
//	max_memory: 1GiB          # or "unbounded"; a plain number is KiB
//	parallelism: 8
//	min_iterations: 1
//	hash_length: 32
//	salt_and_password_length: 16
//	mode: argon2id
//	hasher_max_memory: 2GiB   # refuse probes above this; empty for half the available
//	                          # memory, "unbounded" for no limit
package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/alecthomas/units"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kuking/argon2cal"
	"github.com/kuking/argon2cal/crypto"
	"github.com/kuking/argon2cal/sysinfo"
)

const Unbounded = "unbounded"

type File struct {
	MaxTime               string `yaml:"max_time,omitempty"`
	MaxMemory             string `yaml:"max_memory,omitempty"`
	Parallelism           int    `yaml:"parallelism,omitempty"`
	MinIterations         int    `yaml:"min_iterations,omitempty"`
	HashLength            int    `yaml:"hash_length,omitempty"`
	SaltAndPasswordLength int    `yaml:"salt_and_password_length,omitempty"`
	Mode                  string `yaml:"mode,omitempty"`
	HasherMaxMemory       string `yaml:"hasher_max_memory,omitempty"`
}

func Defaults() *File {
	return &File{
		MaxTime:               "1s",
		MaxMemory:             Unbounded,
		Parallelism:           sysinfo.DefaultParallelism(),
		MinIterations:         1,
		HashLength:            32,
		SaltAndPasswordLength: 16,
		Mode:                  string(crypto.Argon2id),
	}
}

// Load reads path, an empty path yields the defaults.
func Load(path string) (*File, error) {
	if path == "" {
		return Defaults(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", path)
	}
	f, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", path)
	}
	return f, nil
}

// Parse decodes a yaml document, rejecting unknown keys, and merges the defaults under it.
func Parse(b []byte) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "unable to parse yaml")
	}
	if err := f.MergeDefaults(Defaults()); err != nil {
		return nil, err
	}
	return f, nil
}

// MergeDefaults fills every field of f left at its zero value from d.
func (f *File) MergeDefaults(d *File) error {
	if err := mergo.Merge(f, d); err != nil {
		return errors.Wrap(err, "unable to merge defaults")
	}
	return nil
}

func (f *File) Input() (*argon2cal.Input, error) {
	maxTime, err := time.ParseDuration(f.MaxTime)
	if err != nil {
		return nil, errors.Wrapf(err, "max_time %q", f.MaxTime)
	}
	budget, err := ParseMemoryBudget(f.MaxMemory)
	if err != nil {
		return nil, err
	}
	mode, err := crypto.ParseMode(f.Mode)
	if err != nil {
		return nil, errors.Wrap(err, "mode")
	}
	return &argon2cal.Input{
		SaltAndPasswordLength: f.SaltAndPasswordLength,
		MaxTime:               maxTime,
		Parallelism:           f.Parallelism,
		Memory:                budget,
		MinIterations:         f.MinIterations,
		HashLength:            f.HashLength,
		Mode:                  mode,
	}, nil
}

// Hasher returns the Argon2 hasher with the configured memory guard. Without one the guard is
// derived from the memory available right now.
func (f *File) Hasher() (crypto.Argon2Hasher, error) {
	switch {
	case f.HasherMaxMemory == "":
		kib, err := sysinfo.DefaultMemoryGuard()
		if err != nil {
			return crypto.Argon2Hasher{}, errors.Wrap(err, "deriving hasher_max_memory")
		}
		return crypto.Argon2Hasher{MaxMemory: kib}, nil
	case strings.EqualFold(f.HasherMaxMemory, Unbounded):
		return crypto.Argon2Hasher{}, nil
	}
	kib, err := ParseKiB(f.HasherMaxMemory)
	if err != nil {
		return crypto.Argon2Hasher{}, errors.Wrap(err, "hasher_max_memory")
	}
	return crypto.Argon2Hasher{MaxMemory: kib}, nil
}

func ParseMemoryBudget(s string) (argon2cal.MemoryBudget, error) {
	if s == "" || strings.EqualFold(s, Unbounded) {
		return argon2cal.UnboundedMemory(), nil
	}
	kib, err := ParseKiB(s)
	if err != nil {
		return argon2cal.MemoryBudget{}, errors.Wrap(err, "max_memory")
	}
	return argon2cal.BoundedMemory(kib), nil
}

// ParseKiB reads a size such as "64MiB" or "1GB"; a bare number is taken as KiB.
func ParseKiB(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(n), nil
	}
	b, err := units.ParseBase2Bytes(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid size %q", s)
	}
	kib := int64(b) / 1024
	if kib < 1 || kib > int64(^uint32(0)) {
		return 0, errors.Errorf("size %q out of range", s)
	}
	return uint32(kib), nil
}
