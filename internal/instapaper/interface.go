package instapaper

import (
	"context"
)

// ClientInterface defines the interface for the Instapaper API client.
type ClientInterface interface {
	GetBookmarks(ctx context.Context, folder string, limit int, have []int64) ([]*Bookmark, error)
	GetFolders(ctx context.Context) ([]*Folder, error)
	Bookmark(id int64) *Bookmark
	NewBookmark(rawURL, title string) *Bookmark
}

var (
	_ ClientInterface = (*Client)(nil)
	_ Resource        = (*Bookmark)(nil)
	_ Resource        = (*Folder)(nil)
	_ Resource        = (*Highlight)(nil)
)
