package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"instapaperkobo/internal/store"
)

func init() {
	exportsCmd.Flags().IntP("limit", "l", 20, "Number of exports to show, 0 for all")
	rootCmd.AddCommand(exportsCmd)
}

// recentExports returns at most n export records, newest first.
func recentExports(st *store.Store, n int) ([]store.Export, error) {
	exports, err := st.Exports()
	if err != nil {
		return nil, fmt.Errorf("error reading export history: %w", err)
	}
	if n > 0 && len(exports) > n {
		exports = exports[:n]
	}
	return exports, nil
}

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Show previously exported articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		exports, err := recentExports(s.store, limit)
		if err != nil {
			return err
		}
		for _, e := range exports {
			cyanBold.Printf("%d", e.BookmarkID)
			fmt.Printf(" %s %s\n", e.ExportedAt.Format("2006-01-02 15:04"), e.Title)
			cyan.Printf("    %s\n", e.Path)
		}
		green.Printf("%d exports\n", len(exports))
		return nil
	},
}
