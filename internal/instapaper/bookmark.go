package instapaper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Bookmark is an Instapaper bookmark (article).
type Bookmark struct {
	resource

	BookmarkID        int64
	Title             string
	Description       string
	Hash              string
	URL               string
	ProgressTimestamp Timestamp
	Time              Timestamp
	Progress          float64
	Starred           bool
	Type              string
	PrivateSource     string
}

func (c *Client) newBookmarkFrom(data map[string]any) *Bookmark {
	return &Bookmark{
		resource:          resource{client: c, kind: bookmarkKind},
		BookmarkID:        int64Attr(data, "bookmark_id"),
		Title:             stringAttr(data, "title"),
		Description:       stringAttr(data, "description"),
		Hash:              stringAttr(data, "hash"),
		URL:               stringAttr(data, "url"),
		ProgressTimestamp: timestampAttr(data, "progress_timestamp", c.log),
		Time:              timestampAttr(data, "time", c.log),
		Progress:          floatAttr(data, "progress"),
		Starred:           boolAttr(data, "starred"),
		Type:              stringAttr(data, "type"),
		PrivateSource:     stringAttr(data, "private_source"),
	}
}

// Bookmark returns a handle for an existing bookmark known only by id.
func (c *Client) Bookmark(id int64) *Bookmark {
	return &Bookmark{resource: resource{client: c, kind: bookmarkKind}, BookmarkID: id}
}

// NewBookmark returns a bookmark that does not exist remotely yet; call Add
// to save it.
func (c *Client) NewBookmark(rawURL, title string) *Bookmark {
	return &Bookmark{resource: resource{client: c, kind: bookmarkKind}, URL: rawURL, Title: title}
}

func (b *Bookmark) Identify() string {
	return strconv.FormatInt(b.BookmarkID, 10)
}

func (b *Bookmark) SubmitParams() url.Values {
	p := params{}
	p.setInt("bookmark_id", b.BookmarkID)
	p.setString("title", b.Title)
	p.setString("description", b.Description)
	p.setString("hash", b.Hash)
	p.setString("url", b.URL)
	p.setTime("progress_timestamp", b.ProgressTimestamp)
	p.setTime("time", b.Time)
	p.setFloat("progress", b.Progress)
	p.setBool("starred", b.Starred)
	p.setString("type", b.Type)
	p.setString("private_source", b.PrivateSource)
	return url.Values(p)
}

func (b *Bookmark) Perform(ctx context.Context, action Action) (*Response, error) {
	return b.perform(ctx, action, b.Identify())
}

// Add saves the bookmark.
func (b *Bookmark) Add(ctx context.Context) (*Response, error) {
	return b.add(ctx, b.SubmitParams())
}

func (b *Bookmark) Delete(ctx context.Context) (*Response, error) {
	return b.Perform(ctx, ActionDelete)
}

func (b *Bookmark) Star(ctx context.Context) (*Response, error) {
	return b.Perform(ctx, ActionStar)
}

func (b *Bookmark) Unstar(ctx context.Context) (*Response, error) {
	return b.Perform(ctx, ActionUnstar)
}

func (b *Bookmark) Archive(ctx context.Context) (*Response, error) {
	return b.Perform(ctx, ActionArchive)
}

func (b *Bookmark) Unarchive(ctx context.Context) (*Response, error) {
	return b.Perform(ctx, ActionUnarchive)
}

// GetText fetches the processed article. The API answers with HTML, so the
// result normally carries a RawPayload.
func (b *Bookmark) GetText(ctx context.Context) (*Response, error) {
	return b.Perform(ctx, ActionGetText)
}

// GetHighlights lists the highlights of the bookmark. This endpoint is only
// served as a GET under API version 1.1.
func (b *Bookmark) GetHighlights(ctx context.Context) ([]*Highlight, error) {
	path := fmt.Sprintf("%s/%s/highlights", b.kind.collection, b.Identify())
	resp, err := b.client.Request(ctx, path, nil, Method(http.MethodGet), APIVersion(HighlightsAPIVersion))
	if err != nil {
		return nil, fmt.Errorf("failed to get highlights for bookmark %d: %w", b.BookmarkID, err)
	}
	highlights, err := collect(resp, "highlight", b.client.newHighlightFrom)
	if err != nil {
		return nil, fmt.Errorf("failed to get highlights for bookmark %d: %w", b.BookmarkID, err)
	}
	return highlights, nil
}

func (b *Bookmark) String() string {
	return fmt.Sprintf("Bookmark %d: %s", b.BookmarkID, b.Title)
}
