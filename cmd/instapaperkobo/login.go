package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with the configured credentials and cache the access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.store.ClearToken(); err != nil {
			return err
		}
		if err := s.login(cmd.Context()); err != nil {
			return err
		}
		green.Printf("Logged in as %s\n", s.cfg.Instapaper.Username)
		return nil
	},
}
