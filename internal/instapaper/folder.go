package instapaper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Folder is a user-created Instapaper folder.
type Folder struct {
	resource

	FolderID     int64
	Title        string
	DisplayTitle string
	SyncToMobile bool
	Position     int64
	Type         string
	Slug         string
}

func (c *Client) newFolderFrom(data map[string]any) *Folder {
	return &Folder{
		resource:     resource{client: c, kind: folderKind},
		FolderID:     int64Attr(data, "folder_id"),
		Title:        stringAttr(data, "title"),
		DisplayTitle: stringAttr(data, "display_title"),
		SyncToMobile: boolAttr(data, "sync_to_mobile"),
		Position:     int64Attr(data, "position"),
		Type:         stringAttr(data, "type"),
		Slug:         stringAttr(data, "slug"),
	}
}

// NewFolder returns a folder that does not exist remotely yet; call Add to
// create it.
func (c *Client) NewFolder(title string) *Folder {
	return &Folder{resource: resource{client: c, kind: folderKind}, Title: title}
}

func (f *Folder) Identify() string {
	return strconv.FormatInt(f.FolderID, 10)
}

func (f *Folder) SubmitParams() url.Values {
	p := params{}
	p.setInt("folder_id", f.FolderID)
	p.setString("title", f.Title)
	p.setString("display_title", f.DisplayTitle)
	p.setBool("sync_to_mobile", f.SyncToMobile)
	p.setInt("position", f.Position)
	p.setString("type", f.Type)
	p.setString("slug", f.Slug)
	return url.Values(p)
}

func (f *Folder) Perform(ctx context.Context, action Action) (*Response, error) {
	return f.perform(ctx, action, f.Identify())
}

// Add creates the folder.
func (f *Folder) Add(ctx context.Context) (*Response, error) {
	return f.add(ctx, f.SubmitParams())
}

func (f *Folder) Delete(ctx context.Context) (*Response, error) {
	return f.Perform(ctx, ActionDelete)
}

// SetOrder would reorder the user's folders. It is not supported.
func (f *Folder) SetOrder(ctx context.Context, folderIDs []int64) ([]*Folder, error) {
	return nil, fmt.Errorf("folders/set_order: %w", ErrNotImplemented)
}

func (f *Folder) String() string {
	return fmt.Sprintf("Folder %d: %s", f.FolderID, f.Title)
}
