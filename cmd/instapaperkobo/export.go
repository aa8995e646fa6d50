package main

import (
	"time"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"instapaperkobo/internal/export"
	"instapaperkobo/internal/mail"
)

func init() {
	exportCmd.Flags().BoolP("send", "s", false, "Mail the exported files to the configured receiver")
	exportCmd.Flags().IntP("mail-timeout", "m", 120, "Mail timeout in seconds, increase it if sending lot of files")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export new articles from a folder to EPUB files",
	Long: dedent.Dedent(`
		Exports every article in export.folder that was not exported before to
		an EPUB under export.dir, including its highlights. Exported bookmarks
		are remembered in the state database and, with export.archive, archived
		on Instapaper.`),
	Example: dedent.Dedent(`
		# Export starred articles
		instapaperkobo export

		# Export and mail them to the e-reader
		instapaperkobo export --send`),
	RunE: func(cmd *cobra.Command, args []string) error {
		send, _ := cmd.Flags().GetBool("send")
		timeout, err := cmd.Flags().GetInt("mail-timeout")
		if err != nil {
			timeout = 0
		}

		s, err := authenticatedSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if send && !s.cfg.Mail.Enabled() {
			red.Println("Mail is not configured, skipping --send")
			send = false
		}

		exporter := export.New(s.client, s.store, export.Options{
			Dir:        s.cfg.Export.Dir,
			Folder:     s.cfg.Export.Folder,
			Limit:      s.cfg.Export.Limit,
			Archive:    s.cfg.Export.Archive,
			Highlights: s.cfg.Export.Highlights,
		}, s.log.Named("export"))

		result, err := exporter.Run(cmd.Context())
		if err != nil {
			return err
		}
		for _, f := range result.Files {
			cyan.Println(f)
		}
		for _, f := range result.Failures {
			red.Printf("bookmark %d: %v\n", f.BookmarkID, f.Err)
		}
		green.Printf("Exported %d articles\n", len(result.Files))

		if send && len(result.Files) > 0 {
			sender := mail.NewSMTPSender(s.cfg.Mail, s.log.Named("mail"))
			if err := sender.Send(result.Files, time.Duration(timeout)*time.Second); err != nil {
				return err
			}
			green.Printf("Mailed %d files to %s\n", len(result.Files), s.cfg.Mail.Receiver)
		}
		return nil
	},
}
