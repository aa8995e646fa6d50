package main

import (
	"fmt"
	"strconv"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"instapaperkobo/internal/instapaper"
)

func init() {
	bookmarksCmd.Flags().StringP("folder", "f", "unread", "Folder: unread, starred, archive or a folder id")
	bookmarksCmd.Flags().IntP("limit", "l", instapaper.DefaultBookmarkLimit, "Number of bookmarks to list (1-500)")

	rootCmd.AddCommand(bookmarksCmd, foldersCmd, highlightsCmd)
}

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List bookmarks in a folder",
	Example: dedent.Dedent(`
		# Unread articles
		instapaperkobo bookmarks

		# The 100 most recent starred articles
		instapaperkobo bookmarks --folder starred --limit 100`),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, _ := cmd.Flags().GetString("folder")
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := authenticatedSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		bookmarks, err := s.client.GetBookmarks(cmd.Context(), folder, limit, nil)
		if err != nil {
			return err
		}
		for _, b := range bookmarks {
			star := " "
			if b.Starred {
				star = "*"
			}
			cyanBold.Printf("%d", b.BookmarkID)
			fmt.Printf(" %s %s\n", star, b.Title)
			cyan.Printf("    %s\n", b.URL)
		}
		green.Printf("%d bookmarks in %s\n", len(bookmarks), folder)
		return nil
	},
}

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List user folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := authenticatedSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		folders, err := s.client.GetFolders(cmd.Context())
		if err != nil {
			return err
		}
		for _, f := range folders {
			cyanBold.Printf("%d", f.FolderID)
			fmt.Printf(" %s\n", f.Title)
		}
		green.Printf("%d folders\n", len(folders))
		return nil
	},
}

var highlightsCmd = &cobra.Command{
	Use:   "highlights <bookmark-id>",
	Short: "List the highlights of a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bookmark id %q", args[0])
		}

		s, err := authenticatedSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		highlights, err := s.client.Bookmark(id).GetHighlights(cmd.Context())
		if err != nil {
			return err
		}
		for _, h := range highlights {
			cyanBold.Printf("%d", h.HighlightID)
			fmt.Printf(" %q\n", h.Text)
			if h.Note != "" {
				cyan.Printf("    note: %s\n", h.Note)
			}
		}
		green.Printf("%d highlights\n", len(highlights))
		return nil
	},
}
