package main

import (
	"fmt"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"instapaperkobo/internal/crypto"
)

func init() {
	rootCmd.AddCommand(encryptCmd)
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt <plaintext>",
	Short: "Encrypt a secret with the configured Kobo serial",
	Long: dedent.Dedent(`
		Encrypts a value, usually the Instapaper password, with a key derived
		from kobo.serial. Paste the output into instapaper.password.`),
	Example: dedent.Dedent(`
		instapaperkobo encrypt 'my instapaper password'`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sealed, err := crypto.Encrypt(args[0], cfg.Kobo.Serial)
		if err != nil {
			return err
		}
		fmt.Println(sealed)
		return nil
	},
}
