package main

import (
	"fmt"
	"io"

	"github.com/alecthomas/units"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kuking/argon2cal"
	"github.com/kuking/argon2cal/config"
	"github.com/kuking/argon2cal/sysinfo"
)

// calibrationFlags collects settings given on the command line; whatever is left empty comes from
// the config file or the defaults.
type calibrationFlags struct {
	file config.File
}

func (f *calibrationFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.file.MaxTime, "max-time", "", "longest a single hash may take, e.g. 500ms (default 1s)")
	flags.StringVar(&f.file.MaxMemory, "max-memory", "", "largest memory level to try, e.g. 1GiB; unbounded grows from 1MiB to 4GiB (default unbounded)")
	flags.IntVarP(&f.file.Parallelism, "parallelism", "p", 0, fmt.Sprintf("Argon2 lanes (default %d, twice the available processors)", sysinfo.DefaultParallelism()))
	flags.IntVar(&f.file.MinIterations, "min-iterations", 0, "fewest passes worth considering (default 1)")
	flags.IntVar(&f.file.HashLength, "hash-length", 0, "digest length in bytes (default 32)")
	flags.IntVar(&f.file.SaltAndPasswordLength, "salt-length", 0, "length of the calibration password and salt (default 16)")
	flags.StringVar(&f.file.Mode, "mode", "", "argon2id or argon2i (default argon2id)")
	flags.StringVar(&f.file.HasherMaxMemory, "hasher-max-memory", "", "skip memory levels above this size instead of risking running out of memory (default half the available memory, unbounded for no limit)")
}

// newCalibrator builds the engine behind calibrate and hash --calibrate.
var newCalibrator = func(h argon2cal.Hasher) *argon2cal.Calibrator {
	return argon2cal.New(h, argon2cal.WithLogger(logrus.StandardLogger()))
}

// resolve merges the flags over the config file, the file over the defaults.
func (f *calibrationFlags) resolve() (*config.File, error) {
	file, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	merged := f.file
	if err := merged.MergeDefaults(file); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (f *calibrationFlags) calibrate() (*argon2cal.Input, []argon2cal.Result, error) {
	file, err := f.resolve()
	if err != nil {
		return nil, nil, err
	}
	in, err := file.Input()
	if err != nil {
		return nil, nil, err
	}
	hasher, err := file.Hasher()
	if err != nil {
		return nil, nil, err
	}

	results, err := newCalibrator(hasher).Run(in)
	if err != nil {
		return nil, nil, err
	}
	return in, results, nil
}

func NewCalibrateCommand() *cobra.Command {
	var (
		flags        calibrationFlags
		output       string
		printOptions bool
	)

	cmd := &cobra.Command{
		Use:     "calibrate",
		Short:   "Find the slowest Argon2 parameters within a time budget",
		GroupID: gCalibration,
		Long: `Find the slowest Argon2 parameters within a time budget.

With --max-memory the memory levels tried are the maximum and its halves down to
an eighth of it (never below 1MiB). Without it, memory doubles from 1MiB up to
4GiB. Each level reports the most passes that hash within --max-time; levels
where even --min-iterations is too slow are left out.

Timings are taken once and not averaged, a busy machine calibrates low.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "table" && output != "yaml" {
				return fmt.Errorf("unknown output format %q", output)
			}

			proc := sysinfo.Detect()
			logrus.WithFields(logrus.Fields{
				"cpu":     proc.Brand,
				"threads": proc.Threads,
			}).Info("detected processor")

			in, results, err := flags.calibrate()
			if err != nil {
				return err
			}

			if output == "yaml" {
				return printYAML(cmd.OutOrStdout(), in, proc, results)
			}
			printTable(cmd.OutOrStdout(), in, proc, results, printOptions)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")
	cmd.Flags().BoolVar(&printOptions, "print-options", false, "print the hash command flags for each result")

	return cmd
}

func printTable(w io.Writer, in *argon2cal.Input, proc sysinfo.Processor, results []argon2cal.Result, printOptions bool) {
	fmt.Fprintf(w, "Calibrated %v on %v (%d threads) for at most %v per hash, memory %v\n\n",
		in.Mode, proc.Brand, proc.Threads, in.MaxTime, in.Memory)

	if len(results) == 0 {
		color.New(color.FgYellow).Fprintf(w, "No parameters hash within %v at %d+ passes; raise --max-time or lower --min-iterations.\n",
			in.MaxTime, in.MinIterations)
		return
	}

	fmt.Fprintf(w, "     %-10v %-11v %-12v %-10v %v\n", "Memory", "Iterations", "Parallelism", "Elapsed", "Preset")
	fmt.Fprintf(w, "-----------------------------------------------------------------\n")
	recommended := color.New(color.FgGreen, color.Bold)
	for ndx, r := range results {
		p := r.Parameters
		line := fmt.Sprintf("%3d. %-10v %-11v %-12v %-10v %v", ndx+1,
			units.Base2Bytes(int64(p.Memory)*1024), p.Iterations, p.Parallelism, r.Elapsed(), p.Preset())
		if printOptions {
			line += fmt.Sprintf(",   --memory=%d --iterations=%d --parallelism=%d", p.Memory, p.Iterations, p.Parallelism)
		}
		if ndx == 0 {
			recommended.Fprintln(w, line)
		} else {
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintf(w, "-----------------------------------------------------------------\n")
	fmt.Fprintf(w, "Recommended for this machine: %v\n", results[0].Parameters)
}

type yamlReport struct {
	Processor   sysinfo.Processor  `yaml:"processor"`
	Mode        string             `yaml:"mode"`
	MaxTime     string             `yaml:"max_time"`
	MaxMemory   string             `yaml:"max_memory"`
	Results     []argon2cal.Result `yaml:"results"`
	Recommended *argon2cal.Result  `yaml:"recommended,omitempty"`
}

func printYAML(w io.Writer, in *argon2cal.Input, proc sysinfo.Processor, results []argon2cal.Result) error {
	report := yamlReport{
		Processor: proc,
		Mode:      in.Mode.String(),
		MaxTime:   in.MaxTime.String(),
		MaxMemory: in.Memory.String(),
		Results:   results,
	}
	if len(results) > 0 {
		report.Recommended = &results[0]
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
