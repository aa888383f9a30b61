package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kuking/argon2cal"
	"github.com/kuking/argon2cal/crypto"
)

var (
	logLevel   = "info"
	configPath = ""

	// set with -ldflags "-X main.version=..."
	version = "dev"
)

var (
	gCalibration = "Calibration:"
	gPasswords   = "Passwords:"
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	var ce *argon2cal.ConfigurationError
	if errors.As(err, &ce) {
		fmt.Fprintf(os.Stderr, "\nCheck the %s setting, either in the config file or its flag.\n", ce.Field)
	} else if errors.Is(err, crypto.ErrUnknownMode) {
		fmt.Fprintf(os.Stderr, "\nSupported modes: %v\n", crypto.Modes())
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "argon2cal",
		Short: "argon2cal finds the strongest Argon2 parameters this machine can afford",
		Long: `argon2cal finds the strongest Argon2 parameters this machine can afford.

It hashes a password over and over, growing the number of passes for each memory
level until hashing takes as long as allowed but not longer, and lists one
parameter set per memory level, most memory first.

Calibrated parameters only hold for the machine they were measured on: run it on
the hardware that will verify the passwords.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "yaml config file path, flags override its values")

	cmd.AddGroup(
		&cobra.Group{ID: gCalibration, Title: gCalibration},
		&cobra.Group{ID: gPasswords, Title: gPasswords},
	)

	cmd.AddCommand(
		NewCalibrateCommand(),
		NewSysinfoCommand(),
		NewHashCommand(),
		NewVerifyCommand(),
		NewVersionCommand(),
	)

	return cmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("argon2cal %s\n", version)
		},
	}
}
