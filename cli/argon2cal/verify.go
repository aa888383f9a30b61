package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kuking/argon2cal/config"
	"github.com/kuking/argon2cal/crypto"
)

var ErrMismatch = errors.New("password does not match")

func NewVerifyCommand() *cobra.Command {
	var pw passwordFlags

	cmd := &cobra.Command{
		Use:     "verify <phc-string>",
		Short:   "Check a password against an Argon2 PHC string",
		GroupID: gPasswords,
		Long: `Check a password against an Argon2 PHC string.

Hashes with parameters outside the accepted presets (over 4GiB or 64 passes,
or cheaper than 19MiB x 2 passes) are refused without hashing. The config file's
hasher_max_memory applies too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phc, err := crypto.ParsePHC(args[0])
			if err != nil {
				return err
			}
			password, err := pw.read(cmd)
			if err != nil {
				return err
			}

			file, err := config.Load(configPath)
			if err != nil {
				return err
			}
			hasher, err := file.Hasher()
			if err != nil {
				return err
			}

			ok, err := phc.Verify(hasher, password)
			if err != nil {
				return err
			}
			if !ok {
				return ErrMismatch
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	pw.register(cmd)
	return cmd
}
