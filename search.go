package argon2cal

import "math"

// Comparison classifies a probed candidate against an implicit monotonic target.
type Comparison int

const (
	TooLow Comparison = iota - 1
	Equal
	TooHigh
)

func (c Comparison) String() string {
	switch c {
	case TooLow:
		return "too low"
	case Equal:
		return "equal"
	case TooHigh:
		return "too high"
	default:
		return "unknown"
	}
}

// Step is one visited candidate, its classification and whatever the probe measured for it.
type Step[T any] struct {
	Candidate int64
	Outcome   Comparison
	Value     T
}

// ExponentialSearch looks for the boundary b in [lo, hi) past which probe reports TooHigh, assuming
// probe is monotonic. It doubles from lo until a candidate is TooHigh or the next doubling would
// reach hi, then bisects between the last candidate that was not TooHigh and that fence. Equal stops
// the search immediately.
//
// Every visited step is returned in visit order; callers fold over them to pick what they need. If
// lo itself is TooHigh it is the only step. A probe error stops the search and is returned along
// with the steps visited before it.
func ExponentialSearch[T any](lo, hi int64, probe func(int64) (Comparison, T, error)) ([]Step[T], error) {
	var steps []Step[T]
	visit := func(candidate int64) (Comparison, error) {
		c, v, err := probe(candidate)
		if err != nil {
			return c, err
		}
		steps = append(steps, Step[T]{Candidate: candidate, Outcome: c, Value: v})
		return c, nil
	}

	if lo >= hi {
		return steps, nil
	}

	c, err := visit(lo)
	if err != nil || c != TooLow {
		return steps, err
	}

	// good is never TooHigh, fence is TooHigh or the artificial hi
	good, fence := lo, hi
	for {
		next := nextDoubling(good)
		if next >= hi {
			break
		}
		c, err = visit(next)
		if err != nil || c == Equal {
			return steps, err
		}
		if c == TooHigh {
			fence = next
			break
		}
		good = next
	}

	// fence > good, so the unsigned difference is the exact gap even when fence-good overflows int64
	for gap := uint64(fence) - uint64(good); gap > 1; gap = uint64(fence) - uint64(good) {
		mid := good + int64(gap/2)
		c, err = visit(mid)
		if err != nil || c == Equal {
			return steps, err
		}
		if c == TooHigh {
			fence = mid
		} else {
			good = mid
		}
	}
	return steps, nil
}

func nextDoubling(x int64) int64 {
	if x <= 0 {
		return 1
	}
	if x > math.MaxInt64/2 {
		return math.MaxInt64
	}
	return x * 2
}
