package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"instapaperkobo/internal/instapaper"
)

type bookmarkAction func(*instapaper.Bookmark, context.Context) (*instapaper.Response, error)

var bookmarkActions = map[string]bookmarkAction{
	"star":      (*instapaper.Bookmark).Star,
	"unstar":    (*instapaper.Bookmark).Unstar,
	"archive":   (*instapaper.Bookmark).Archive,
	"unarchive": (*instapaper.Bookmark).Unarchive,
	"delete":    (*instapaper.Bookmark).Delete,
}

func actionNames() string {
	names := make([]string, 0, len(bookmarkActions))
	for name := range bookmarkActions {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

func init() {
	rootCmd.AddCommand(actionCmd)
}

var actionCmd = &cobra.Command{
	Use:   fmt.Sprintf("action <%s> <bookmark-id>", actionNames()),
	Short: "Apply an action to a bookmark",
	Example: dedent.Dedent(`
		instapaperkobo action star 123456
		instapaperkobo action archive 123456`),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		perform, ok := bookmarkActions[args[0]]
		if !ok {
			return fmt.Errorf("unknown action %q, expected one of %s", args[0], actionNames())
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bookmark id %q", args[1])
		}

		s, err := authenticatedSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if _, err := perform(s.client.Bookmark(id), cmd.Context()); err != nil {
			return err
		}
		green.Printf("%s: bookmark %d\n", args[0], id)
		return nil
	},
}
