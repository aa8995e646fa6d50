package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	red      = color.New(color.FgRed)
	green    = color.New(color.FgGreen)
	cyan     = color.New(color.FgCyan)
	cyanBold = color.New(color.FgCyan).Add(color.Bold)
)

const defaultConfigPath = "./config.yaml"

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "Path to config file")
}

var rootCmd = &cobra.Command{
	Use:   "instapaperkobo",
	Short: "Instapaper client and Kobo reading-list bridge",
	Long: `instapaperkobo talks to the Instapaper Full API.

It serves the Pocket-compatible endpoints a Kobo e-reader syncs against,
lists and edits bookmarks from the command line, and exports articles
to EPUB files that can optionally be mailed to an e-reader.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}
