package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beedata/beekit/crypt"
)

var secretPassword string

var encryptCmd = &cobra.Command{
	Use:   "encrypt <text>",
	Short: "Encrypt a secret with the configured password",
	Long: `Encrypt derives a key from the password and prints the encrypted text.
The password comes from --password or from the secrets section of the
configuration file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword()
		if err != nil {
			return err
		}
		enc, err := crypt.Encrypt(args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), enc)
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <text>",
	Short: "Decrypt a secret with the configured password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword()
		if err != nil {
			return err
		}
		plain, err := crypt.Decrypt(args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), plain)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{encryptCmd, decryptCmd} {
		c.Flags().StringVarP(&secretPassword, "password", "p", "", "Password; defaults to secrets.password from the config")
	}
}

// resolvePassword prefers the flag and falls back to the config file.
func resolvePassword() (string, error) {
	if secretPassword != "" {
		return secretPassword, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Secrets.Password == "" {
		return "", errors.New("no password: set --password or secrets.password in the config")
	}
	return cfg.Secrets.Password, nil
}
