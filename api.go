package argon2cal

import (
	"bytes"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kuking/argon2cal/crypto"
)

// Hasher is the password hashing primitive being calibrated. Only how long Digest takes matters,
// its output is discarded.
type Hasher interface {
	Digest(mode crypto.Mode, password, salt []byte, p Parameters, keyLen uint32) ([]byte, error)
}

// Calibrator searches the memory x iterations space for the slowest parameter sets that still hash
// within a time budget. It keeps no state between runs; runs must not overlap since concurrent
// probes would skew each other's timings.
type Calibrator struct {
	hasher Hasher
	probes ProbeLogger
	l      *logrus.Logger
	now    func() time.Time
}

type Option func(*Calibrator)

// WithLogger sends progress to l, including probe notifications unless WithProbeLogger is given
// after it.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Calibrator) {
		c.l = l
		c.probes = NewLogrusProbeLogger(l)
	}
}

func WithProbeLogger(pl ProbeLogger) Option {
	return func(c *Calibrator) {
		c.probes = pl
	}
}

// WithClock replaces time.Now for measuring probes.
func WithClock(now func() time.Time) Option {
	return func(c *Calibrator) {
		c.now = now
	}
}

// New returns a Calibrator for hasher, the Argon2 implementation from the crypto package if nil.
func New(hasher Hasher, opts ...Option) *Calibrator {
	if hasher == nil {
		hasher = crypto.Argon2Hasher{}
	}
	c := &Calibrator{
		hasher: hasher,
		probes: nopProbeLogger{},
		l:      discardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run calibrates input and returns at most one Result per memory level, most memory first. Levels
// where even input.MinIterations exceeds the budget, or where hashing failed, are left out.
func (c *Calibrator) Run(input *Input) ([]Result, error) {
	if err := input.Verify(); err != nil {
		return nil, err
	}

	password := bytes.Repeat([]byte{'0'}, input.SaltAndPasswordLength)
	salt := bytes.Repeat([]byte{'1'}, input.SaltAndPasswordLength)

	levels := input.Memory.Levels()
	c.l.WithFields(logrus.Fields{
		"maxTime":     input.MaxTime,
		"memory":      input.Memory.String(),
		"parallelism": input.Parallelism,
		"mode":        input.Mode,
		"levels":      len(levels),
	}).Info("starting calibration")

	results := make([]Result, 0, len(levels))
	for _, memory := range levels {
		r, err := c.calibrateLevel(input, password, salt, memory)
		if err != nil {
			var pf *ProbeFailure
			if !errors.As(err, &pf) {
				return nil, err
			}
			pf.Log(c.l)
			continue
		}
		if r == nil {
			c.l.WithField("memory", memory).Info("no iteration count fits the budget at this memory level")
			continue
		}
		c.l.WithFields(logrus.Fields{
			"memory":     memory,
			"iterations": r.Parameters.Iterations,
			"elapsedMs":  r.ElapsedMilliseconds,
		}).Info("memory level calibrated")
		results = append(results, *r)
	}

	if _, bounded := input.Memory.Max(); !bounded {
		for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
			results[i], results[j] = results[j], results[i]
		}
	}
	return results, nil
}

func (c *Calibrator) calibrateLevel(input *Input, password, salt []byte, memory uint32) (*Result, error) {
	maxMs := input.MaxTime.Milliseconds()
	steps, err := ExponentialSearch(int64(input.MinIterations), MaxIterations+1, func(iterations int64) (Comparison, Result, error) {
		p := Parameters{
			Parallelism: uint8(input.Parallelism),
			Iterations:  uint32(iterations),
			Memory:      memory,
		}
		c.probes.BeginProbe(p)
		start := c.now()
		if _, err := c.hasher.Digest(input.Mode, password, salt, p, uint32(input.HashLength)); err != nil {
			c.probes.FailProbe(err)
			return TooHigh, Result{}, &ProbeFailure{Parameters: p, Err: err}
		}
		elapsed := c.now().Sub(start).Milliseconds()
		c.probes.CompleteProbe(elapsed)
		return classify(elapsed, maxMs), Result{ElapsedMilliseconds: elapsed, Parameters: p}, nil
	})
	if err != nil {
		return nil, err
	}
	return slowestWithin(steps, maxMs), nil
}

func classify(elapsed, maxMs int64) Comparison {
	switch {
	case elapsed > maxMs:
		return TooHigh
	case elapsed < maxMs:
		return TooLow
	default:
		return Equal
	}
}

// slowestWithin picks the step with the largest elapsed time not above maxMs. Ties go to the later
// step.
func slowestWithin(steps []Step[Result], maxMs int64) *Result {
	var best *Result
	for i := range steps {
		r := &steps[i].Value
		if r.ElapsedMilliseconds > maxMs {
			continue
		}
		if best == nil || r.ElapsedMilliseconds >= best.ElapsedMilliseconds {
			best = r
		}
	}
	return best
}
