package main

import (
	"github.com/spf13/cobra"

	"instapaperkobo/internal/app"
	"instapaperkobo/internal/webserver"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Kobo sync endpoints backed by Instapaper",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := authenticatedSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		application := app.NewApp(
			app.WithConfig(s.cfg),
			app.WithInstapaperClient(s.client),
			app.WithLogger(s.log.Named("kobo")),
		)
		return webserver.ListenAndServe(cmd.Context(), s.cfg.Server.Port, application, s.log)
	},
}
