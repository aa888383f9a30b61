package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	pwe "github.com/kuking/go-pwentropy"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kuking/argon2cal/config"
	"github.com/kuking/argon2cal/crypto"
)

var ErrWeakPassword = errors.New("password entropy too low")

type passwordFlags struct {
	passwordFile string
}

func (f *passwordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.passwordFile, "password-file", "f", "", "read the password from a file (@file also accepted); prompts when empty")
}

// read returns the password from the file, an interactive prompt or stdin, in that order.
func (f *passwordFlags) read(cmd *cobra.Command) ([]byte, error) {
	if f.passwordFile != "" {
		name := strings.TrimPrefix(f.passwordFile, "@")
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, errors.Wrap(err, "unable to read password file")
		}
		return trimNewline(b), nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, errors.Wrap(err, "unable to read password")
		}
		return b, nil
	}

	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, errors.Wrap(err, "unable to read password from stdin")
	}
	return trimNewline(b), nil
}

func trimNewline(b []byte) []byte {
	s := strings.TrimSuffix(string(b), "\n")
	return []byte(strings.TrimSuffix(s, "\r"))
}

// checkEntropy refuses passwords below minEntropy bits and suggests a generated one instead.
func checkEntropy(w io.Writer, password string, minEntropy float64) error {
	if minEntropy <= 0 {
		return nil
	}
	entropy := pwe.FairEntropy(password)
	if entropy >= minEntropy {
		return nil
	}

	suggestion := pwe.PwGen(pwe.FormatEasy, pwe.Strength256)
	fmt.Fprintf(w, "Est. entropy for provided password is not enough: %2.2f (minimum: %2.2f)\n\n", entropy, minEntropy)
	fmt.Fprintf(w, "Here is one with %2.2f bits of entropy \n"+
		"+-------------------------------------------------------+\n"+
		"| %52v  |\n"+
		"+-------------------------------------------------------+\n", pwe.FairEntropy(suggestion), suggestion)
	return errors.Wrapf(ErrWeakPassword, "%2.2f bits", entropy)
}

func NewHashCommand() *cobra.Command {
	var (
		pw         passwordFlags
		calibrate  bool
		memory     string
		iterations uint32
		lanes      uint8
		mode       string
		saltLength int
		hashLength uint32
		minEntropy float64
	)

	cmd := &cobra.Command{
		Use:     "hash",
		Short:   "Hash a password into an Argon2 PHC string",
		GroupID: gPasswords,
		Long: `Hash a password into an Argon2 PHC string.

Parameters come from --memory, --iterations and --parallelism, or with --calibrate
from the recommended result of a calibration run configured by --config.

Passwords estimated below --min-entropy bits are refused.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := pw.read(cmd)
			if err != nil {
				return err
			}
			if err = checkEntropy(cmd.ErrOrStderr(), string(password), minEntropy); err != nil {
				return err
			}

			m, err := crypto.ParseMode(mode)
			if err != nil {
				return err
			}
			kib, err := config.ParseKiB(memory)
			if err != nil {
				return errors.Wrap(err, "memory")
			}
			params := crypto.Argon2Parameters{Parallelism: lanes, Iterations: iterations, Memory: kib}

			if calibrate {
				in, results, err := (&calibrationFlags{}).calibrate()
				if err != nil {
					return err
				}
				if len(results) == 0 {
					return errors.Errorf("no parameters hash within %v", in.MaxTime)
				}
				params = results[0].Parameters
				m = in.Mode
				hashLength = uint32(in.HashLength)
			}

			if err = params.Verify(); err != nil {
				logrus.WithField("parameters", params.String()).WithError(err).Warn("parameters outside the accepted presets, verify will refuse this hash")
			}

			phc, err := crypto.HashPassword(crypto.Argon2Hasher{}, m, password, params, saltLength, hashLength)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), phc.String())
			return nil
		},
	}

	pw.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&calibrate, "calibrate", false, "calibrate first and use the recommended parameters")
	flags.StringVar(&memory, "memory", "64MiB", "memory size, a bare number is KiB")
	flags.Uint32Var(&iterations, "iterations", crypto.RecommendedArgon2Parameters.Iterations, "number of passes")
	flags.Uint8VarP(&lanes, "parallelism", "p", crypto.RecommendedArgon2Parameters.Parallelism, "number of lanes")
	flags.StringVar(&mode, "mode", string(crypto.Argon2id), "argon2id or argon2i")
	flags.IntVar(&saltLength, "salt-length", 16, "random salt length in bytes")
	flags.Uint32Var(&hashLength, "hash-length", 32, "hash length in bytes")
	flags.Float64Var(&minEntropy, "min-entropy", 64, "minimum estimated password entropy in bits, 0 disables the check")

	return cmd
}
