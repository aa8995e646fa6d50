package instapaper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Highlight is a passage highlighted in a bookmark.
type Highlight struct {
	resource

	HighlightID int64
	Text        string
	Note        string
	Time        Timestamp
	Position    int64
	ArticleID   int64
	Type        string
	Slug        string
}

func (c *Client) newHighlightFrom(data map[string]any) *Highlight {
	return &Highlight{
		resource:    resource{client: c, kind: highlightKind},
		HighlightID: int64Attr(data, "highlight_id"),
		Text:        stringAttr(data, "text"),
		Note:        stringAttr(data, "note"),
		Time:        timestampAttr(data, "time", c.log),
		Position:    int64Attr(data, "position"),
		ArticleID:   int64Attr(data, "article_id"),
		Type:        stringAttr(data, "type"),
		Slug:        stringAttr(data, "slug"),
	}
}

func (h *Highlight) Identify() string {
	return strconv.FormatInt(h.HighlightID, 10)
}

func (h *Highlight) SubmitParams() url.Values {
	p := params{}
	p.setInt("highlight_id", h.HighlightID)
	p.setString("text", h.Text)
	p.setString("note", h.Note)
	p.setTime("time", h.Time)
	p.setInt("position", h.Position)
	p.setInt("article_id", h.ArticleID)
	p.setString("type", h.Type)
	p.setString("slug", h.Slug)
	return url.Values(p)
}

func (h *Highlight) Perform(ctx context.Context, action Action) (*Response, error) {
	return h.perform(ctx, action, h.Identify())
}

// Add submits the highlight's non-empty attributes to highlights/add.
func (h *Highlight) Add(ctx context.Context) (*Response, error) {
	return h.add(ctx, h.SubmitParams())
}

func (h *Highlight) Delete(ctx context.Context) (*Response, error) {
	return h.Perform(ctx, ActionDelete)
}

// Create would save a new highlight on its bookmark. It is not supported.
func (h *Highlight) Create(ctx context.Context) (*Response, error) {
	return nil, fmt.Errorf("bookmarks/%d/highlight: %w", h.ArticleID, ErrNotImplemented)
}

func (h *Highlight) String() string {
	return fmt.Sprintf("Highlight %d for Article %d", h.HighlightID, h.ArticleID)
}
