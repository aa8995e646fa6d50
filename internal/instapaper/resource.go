package instapaper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Action names a remote operation on a single resource.
type Action string

const (
	ActionDelete    Action = "delete"
	ActionStar      Action = "star"
	ActionUnstar    Action = "unstar"
	ActionArchive   Action = "archive"
	ActionUnarchive Action = "unarchive"
	ActionGetText   Action = "get_text"
)

// Resource is the behaviour shared by bookmarks, folders and highlights.
type Resource interface {
	// Identify returns the resource id as sent to the API.
	Identify() string
	// SubmitParams returns the non-empty declared attributes.
	SubmitParams() url.Values
	// Perform runs a simple action: a request whose only parameter is the id.
	Perform(ctx context.Context, action Action) (*Response, error)
}

type route struct {
	method string
}

// kind describes one remote collection.
type kind struct {
	collection string
	idField    string
	actions    map[Action]route
}

var (
	bookmarkKind = &kind{
		collection: "bookmarks",
		idField:    "bookmark_id",
		actions: map[Action]route{
			ActionDelete:    {method: http.MethodPost},
			ActionStar:      {method: http.MethodPost},
			ActionUnstar:    {method: http.MethodPost},
			ActionArchive:   {method: http.MethodPost},
			ActionUnarchive: {method: http.MethodPost},
			ActionGetText:   {method: http.MethodPost},
		},
	}
	folderKind = &kind{
		collection: "folders",
		idField:    "folder_id",
		actions: map[Action]route{
			ActionDelete: {method: http.MethodPost},
		},
	}
	highlightKind = &kind{
		collection: "highlights",
		idField:    "highlight_id",
		actions: map[Action]route{
			ActionDelete: {method: http.MethodPost},
		},
	}
)

// resource is embedded by every variant and issues its requests.
type resource struct {
	client *Client
	kind   *kind
}

func (r resource) perform(ctx context.Context, action Action, id string) (*Response, error) {
	rt, ok := r.kind.actions[action]
	if !ok {
		return nil, fmt.Errorf("action %q is not supported for %s", action, r.kind.collection)
	}
	if id == "" || id == "0" {
		return nil, &InvalidArgumentError{Name: r.kind.idField, Err: errors.New("resource has no id")}
	}

	form := url.Values{}
	form.Set(r.kind.idField, id)

	resp, err := r.client.Request(ctx, r.kind.collection+"/"+string(action), form, Method(rt.method))
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s %s: %w", action, r.kind.collection, id, err)
	}
	return resp, nil
}

func (r resource) add(ctx context.Context, submit url.Values) (*Response, error) {
	resp, err := r.client.Request(ctx, r.kind.collection+"/add", submit)
	if err != nil {
		return nil, fmt.Errorf("failed to add to %s: %w", r.kind.collection, err)
	}
	return resp, nil
}
