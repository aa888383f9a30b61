package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/alecthomas/units"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/kuking/argon2cal"
	"github.com/kuking/argon2cal/config"
	"github.com/kuking/argon2cal/crypto"
	"github.com/kuking/argon2cal/sysinfo"
)

// Calibration trusts a single timing per probe. This runs the same calibration over and over and
// reports how much the chosen iteration count moves per memory level, which is the price of that.

var rounds int
var maxTime time.Duration
var maxMemory string
var parallelism int

type spread struct {
	iterations []uint32
	elapsed    []int64
}

func main() {
	flag.IntVarP(&rounds, "rounds", "n", 10, "calibrations to run")
	flag.DurationVar(&maxTime, "max-time", 100*time.Millisecond, "time budget per hash")
	flag.StringVar(&maxMemory, "max-memory", "16MiB", "memory budget")
	flag.IntVarP(&parallelism, "parallelism", "p", 1, "Argon2 lanes")
	flag.Parse()

	budget, err := config.ParseMemoryBudget(maxMemory)
	assertErr(err)

	in := &argon2cal.Input{
		SaltAndPasswordLength: 16,
		MaxTime:               maxTime,
		Parallelism:           parallelism,
		Memory:                budget,
		MinIterations:         1,
		HashLength:            32,
		Mode:                  crypto.Argon2id,
	}
	guard, err := sysinfo.DefaultMemoryGuard()
	assertErr(err)
	logrus.SetLevel(logrus.WarnLevel)
	cal := argon2cal.New(crypto.Argon2Hasher{MaxMemory: guard}, argon2cal.WithLogger(logrus.StandardLogger()))

	fmt.Println("argon2cal soak test:")
	fmt.Printf("1. Calibrating %v times: max time %v, memory %v, parallelism %v\n", rounds, maxTime, budget, parallelism)
	levels := map[uint32]*spread{}
	for i := 0; i < rounds; i++ {
		results, err := cal.Run(in)
		assertErr(err)
		assertOrdered(results, maxTime)
		for _, r := range results {
			s, ok := levels[r.Parameters.Memory]
			if !ok {
				s = &spread{}
				levels[r.Parameters.Memory] = s
			}
			s.iterations = append(s.iterations, r.Parameters.Iterations)
			s.elapsed = append(s.elapsed, r.ElapsedMilliseconds)
		}
		_, _ = os.Stdout.WriteString(".")
		_ = os.Stdout.Sync()
	}
	fmt.Println(" done")

	fmt.Println("2. Iterations chosen per memory level")
	var memories []uint32
	for m := range levels {
		memories = append(memories, m)
	}
	sort.Slice(memories, func(i, j int) bool { return memories[i] > memories[j] })
	for _, m := range memories {
		s := levels[m]
		lo, hi := minMax(s.iterations)
		fmt.Printf("   %8v: found %2d/%d times, iterations %d..%d (spread %d), elapsed %v\n",
			units.Base2Bytes(int64(m)*1024), len(s.iterations), rounds, lo, hi, hi-lo, s.elapsed)
	}
}

func minMax(xs []uint32) (uint32, uint32) {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}

func assertOrdered(results []argon2cal.Result, budget time.Duration) {
	for i, r := range results {
		if r.Elapsed() > budget {
			fmt.Printf("\nERROR: %v took %v, over the %v budget\n", r.Parameters, r.Elapsed(), budget)
			os.Exit(-1)
		}
		if i > 0 && results[i-1].Parameters.Memory <= r.Parameters.Memory {
			fmt.Printf("\nERROR: results not ordered by memory: %v before %v\n", results[i-1].Parameters, r.Parameters)
			os.Exit(-1)
		}
	}
}

func assertErr(err error) {
	if err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(-1)
	}
}
