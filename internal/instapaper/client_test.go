package instapaper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("consumer-key", "consumer-secret",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRequestDelay(0),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, server
}

func writeBody(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("Failed to write response: %v", err)
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("key", "secret")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.BaseURL.String() != DefaultBaseURL {
		t.Errorf("Expected BaseURL to be %s, got %s", DefaultBaseURL, client.BaseURL.String())
	}
	if client.APIVersion != "1" {
		t.Errorf("Expected APIVersion to be 1, got %s", client.APIVersion)
	}
	if _, _, ok := client.Token(); ok {
		t.Error("Expected no token before login")
	}

	if _, err := NewClient("", "secret"); err == nil {
		t.Error("Expected error for empty consumer key, got nil")
	}
	if _, err := NewClient("key", "secret", WithBaseURL("invalid-url")); err == nil {
		t.Error("Expected error for invalid URL, got nil")
	}
}

func TestLogin(t *testing.T) {
	var listAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/1/oauth/access_token":
			if r.Method != http.MethodPost {
				t.Errorf("Expected POST method, got %s", r.Method)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("Failed to parse form: %v", err)
			}
			if r.PostForm.Get("x_auth_mode") != "client_auth" {
				t.Errorf("Expected x_auth_mode 'client_auth', got '%s'", r.PostForm.Get("x_auth_mode"))
			}
			if r.PostForm.Get("x_auth_username") != "jane@example.com" {
				t.Errorf("Expected x_auth_username 'jane@example.com', got '%s'", r.PostForm.Get("x_auth_username"))
			}
			if r.PostForm.Get("x_auth_password") != "hunter2" {
				t.Errorf("Expected x_auth_password 'hunter2', got '%s'", r.PostForm.Get("x_auth_password"))
			}
			if !strings.Contains(r.Header.Get("Authorization"), `oauth_consumer_key="consumer-key"`) {
				t.Errorf("Expected request signed with consumer key, got '%s'", r.Header.Get("Authorization"))
			}
			if strings.Contains(r.Header.Get("Authorization"), "oauth_token=") {
				t.Errorf("Expected access token request signed without a token, got '%s'", r.Header.Get("Authorization"))
			}
			writeBody(t, w, "oauth_token_secret=abc&oauth_token=xyz")
		case "/api/1/bookmarks/list":
			listAuth = r.Header.Get("Authorization")
			writeBody(t, w, "[]")
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	if err := client.Login(ctx, "jane@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	token, secret, ok := client.Token()
	if !ok || token != "xyz" || secret != "abc" {
		t.Errorf("Expected token xyz/abc, got %s/%s (ok=%v)", token, secret, ok)
	}

	if _, err := client.GetBookmarks(ctx, "", 0, nil); err != nil {
		t.Fatalf("GetBookmarks failed: %v", err)
	}
	if !strings.HasPrefix(listAuth, "OAuth ") || !strings.Contains(listAuth, `oauth_token="xyz"`) {
		t.Errorf("Expected subsequent request signed with token xyz, got '%s'", listAuth)
	}
	if !strings.Contains(listAuth, `oauth_signature_method="HMAC-SHA1"`) {
		t.Errorf("Expected HMAC-SHA1 signature, got '%s'", listAuth)
	}
}

func TestLoginFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "plain text error", body: "Invalid xAuth credentials."},
		{name: "missing secret", body: "oauth_token=xyz"},
		{name: "empty body", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				writeBody(t, w, tt.body)
			})

			err := client.Login(context.Background(), "jane", "wrong")
			var authErr *AuthenticationError
			if !errors.As(err, &authErr) {
				t.Fatalf("Expected AuthenticationError, got %v", err)
			}
			if _, _, ok := client.Token(); ok {
				t.Error("Expected token to stay unset after failed login")
			}
		})
	}
}

func TestRequestRawFallback(t *testing.T) {
	html := "<html><body><h1>Article</h1></body></html>"
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		writeBody(t, w, html)
	})

	resp, err := client.Request(context.Background(), "bookmarks/get_text", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	raw, ok := resp.Raw()
	if !ok {
		t.Fatalf("Expected RawPayload, got %T", resp.Data)
	}
	if string(raw) != html {
		t.Errorf("Expected body '%s', got '%s'", html, raw)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "text/html" {
		t.Errorf("Expected Content-Type header to be kept, got '%s'", resp.Header.Get("Content-Type"))
	}
}

func TestRequestErrorEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeBody(t, w, `[{"type":"error","error_code":1241,"message":"Invalid or missing bookmark_id"}]`)
	})

	_, err := client.Request(context.Background(), "bookmarks/star", nil)
	var apiErr *RemoteAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected RemoteAPIError, got %v", err)
	}
	if apiErr.Code != 1241 || apiErr.Message != "Invalid or missing bookmark_id" {
		t.Errorf("Unexpected error contents: %+v", apiErr)
	}
}

func TestRequestAuthFailure(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantAuth bool
	}{
		{name: "plain 401", status: http.StatusUnauthorized, body: "Invalid OAuth token", wantAuth: true},
		{name: "error element with 403", status: http.StatusForbidden, body: `[{"type":"error","error_code":403,"message":"Not authorized"}]`, wantAuth: true},
		{name: "error element with 400", status: http.StatusBadRequest, body: `[{"type":"error","error_code":1241,"message":"Invalid bookmark_id"}]`, wantAuth: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reported []error
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				writeBody(t, w, tt.body)
			}))
			defer server.Close()

			client, err := NewClient("key", "secret",
				WithBaseURL(server.URL),
				WithRequestDelay(0),
				WithAuthFailureHandler(func(err error) { reported = append(reported, err) }),
			)
			if err != nil {
				t.Fatalf("NewClient failed: %v", err)
			}

			_, err = client.Request(context.Background(), "bookmarks/list", nil)
			var apiErr *RemoteAPIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected RemoteAPIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if IsAuthError(err) != tt.wantAuth {
				t.Errorf("IsAuthError() = %v, want %v", IsAuthError(err), tt.wantAuth)
			}
			if (len(reported) == 1) != tt.wantAuth {
				t.Errorf("Expected handler called=%v, got %d calls", tt.wantAuth, len(reported))
			}
		})
	}
}

func TestRequestMethodAndVersion(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET method, got %s", r.Method)
		}
		if r.URL.Path != "/api/1.1/some/path" {
			t.Errorf("Expected to request '/api/1.1/some/path', got '%s'", r.URL.Path)
		}
		if r.ContentLength > 0 {
			t.Errorf("Expected no body on GET, got %d bytes", r.ContentLength)
		}
		writeBody(t, w, `{"ok":true}`)
	})

	resp, err := client.Request(context.Background(), "some/path", nil, Method(http.MethodGet), APIVersion("1.1"))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	doc, ok := resp.Data.(JSONPayload)
	if !ok {
		t.Fatalf("Expected JSONPayload, got %T", resp.Data)
	}
	if doc.Value.(map[string]any)["ok"] != true {
		t.Errorf("Expected decoded JSON, got %v", doc.Value)
	}
}

func TestRequestDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, "[]")
	}))
	defer server.Close()

	delay := 30 * time.Millisecond
	client, err := NewClient("key", "secret",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRequestDelay(delay),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := client.Request(context.Background(), "folders/list", nil); err != nil {
			t.Fatalf("Request failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Errorf("Expected at least %s for two requests, took %s", 2*delay, elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Request(ctx, "folders/list", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRequestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := NewClient("key", "secret", WithBaseURL(baseURL), WithRequestDelay(0))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.Request(context.Background(), "folders/list", nil)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if transportErr.Method != http.MethodPost {
		t.Errorf("Expected method POST, got %s", transportErr.Method)
	}
}

const bookmarksListResponse = `[
	{"type":"meta"},
	{"type":"user","user_id":54321,"username":"jane@example.com"},
	{"type":"bookmark","bookmark_id":1,"title":"First","url":"https://example.com/1","time":1400000000,"progress":0.5,"starred":"1","hash":"h1"},
	{"type":"bookmark","bookmark_id":2,"title":"Second","url":"https://example.com/2","time":1400000100,"progress":0,"starred":"0","hash":"h2"},
	{"type":"bookmark","bookmark_id":3,"title":"Third","url":"https://example.com/3","time":1400000200,"progress":1,"starred":"0","hash":"h3"}
]`

func TestGetBookmarks(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/1/bookmarks/list" {
			t.Errorf("Expected to request '/api/1/bookmarks/list', got '%s'", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Failed to parse form: %v", err)
		}
		if r.PostForm.Get("folder_id") != "starred" {
			t.Errorf("Expected folder_id 'starred', got '%s'", r.PostForm.Get("folder_id"))
		}
		if r.PostForm.Get("limit") != "5" {
			t.Errorf("Expected limit '5', got '%s'", r.PostForm.Get("limit"))
		}
		if r.PostForm.Get("have") != "10,11,12" {
			t.Errorf("Expected have '10,11,12', got '%s'", r.PostForm.Get("have"))
		}
		writeBody(t, w, bookmarksListResponse)
	})

	bookmarks, err := client.GetBookmarks(context.Background(), "starred", 5, []int64{10, 11, 12})
	if err != nil {
		t.Fatalf("GetBookmarks failed: %v", err)
	}
	if len(bookmarks) != 3 {
		t.Fatalf("Expected 3 bookmarks, got %d", len(bookmarks))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if bookmarks[i].Title != want {
			t.Errorf("Expected bookmark %d to be '%s', got '%s'", i, want, bookmarks[i].Title)
		}
		if bookmarks[i].BookmarkID != int64(i+1) {
			t.Errorf("Expected bookmark %d id %d, got %d", i, i+1, bookmarks[i].BookmarkID)
		}
	}
	if !bookmarks[0].Starred || bookmarks[1].Starred {
		t.Errorf("Expected only the first bookmark starred, got %v %v", bookmarks[0].Starred, bookmarks[1].Starred)
	}
	if bookmarks[0].Time.Unix() != 1400000000 {
		t.Errorf("Expected time 1400000000, got %d", bookmarks[0].Time.Unix())
	}
}

func TestGetBookmarksLargeIDs(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, `[{"type":"bookmark","bookmark_id":9007199254740993,"title":"Big"}]`)
	})

	bookmarks, err := client.GetBookmarks(context.Background(), "", 0, nil)
	if err != nil {
		t.Fatalf("GetBookmarks failed: %v", err)
	}
	if len(bookmarks) != 1 {
		t.Fatalf("Expected 1 bookmark, got %d", len(bookmarks))
	}
	if bookmarks[0].BookmarkID != 9007199254740993 {
		t.Errorf("Expected id 9007199254740993, got %d", bookmarks[0].BookmarkID)
	}
	if bookmarks[0].Identify() != "9007199254740993" {
		t.Errorf("Expected identifier 9007199254740993, got %s", bookmarks[0].Identify())
	}
}

func TestDecodePayloadTrailingData(t *testing.T) {
	if _, ok := decodePayload([]byte(`[] trailing`)).(RawPayload); !ok {
		t.Error("Expected body with trailing data to fall back to raw")
	}
	if _, ok := decodePayload([]byte("[]\n")).(JSONPayload); !ok {
		t.Error("Expected single JSON document to decode")
	}
}

func TestGetBookmarksDefaults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Failed to parse form: %v", err)
		}
		if r.PostForm.Get("folder_id") != "unread" {
			t.Errorf("Expected folder_id 'unread', got '%s'", r.PostForm.Get("folder_id"))
		}
		if r.PostForm.Get("limit") != "25" {
			t.Errorf("Expected limit '25', got '%s'", r.PostForm.Get("limit"))
		}
		if _, ok := r.PostForm["have"]; ok {
			t.Error("Expected no have parameter")
		}
		writeBody(t, w, "[]")
	})

	bookmarks, err := client.GetBookmarks(context.Background(), "", 0, nil)
	if err != nil {
		t.Fatalf("GetBookmarks failed: %v", err)
	}
	if len(bookmarks) != 0 {
		t.Errorf("Expected no bookmarks, got %d", len(bookmarks))
	}
}

func TestGetBookmarksErrorElement(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, `[
			{"type":"meta"},
			{"type":"bookmark","bookmark_id":1,"title":"First"},
			{"type":"error","error_code":1040,"message":"Rate-limit exceeded"}
		]`)
	})

	bookmarks, err := client.GetBookmarks(context.Background(), "unread", 10, nil)
	var apiErr *RemoteAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected RemoteAPIError, got %v", err)
	}
	if apiErr.Code != 1040 {
		t.Errorf("Expected error code 1040, got %d", apiErr.Code)
	}
	if bookmarks != nil {
		t.Errorf("Expected no partial list, got %d bookmarks", len(bookmarks))
	}
}

func TestGetBookmarksInvalidLimit(t *testing.T) {
	for _, limit := range []int{-1, 501, 1000} {
		t.Run(fmt.Sprint(limit), func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("Expected no request for an invalid limit")
			})

			_, err := client.GetBookmarks(context.Background(), "unread", limit, nil)
			var argErr *InvalidArgumentError
			if !errors.As(err, &argErr) {
				t.Fatalf("Expected InvalidArgumentError, got %v", err)
			}
			if argErr.Name != "limit" {
				t.Errorf("Expected argument name 'limit', got '%s'", argErr.Name)
			}
		})
	}
}

func TestGetBookmarksRawBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, "<html>maintenance</html>")
	})

	if _, err := client.GetBookmarks(context.Background(), "unread", 10, nil); err == nil {
		t.Error("Expected error for non-JSON list response, got nil")
	}
}

func TestGetFolders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/1/folders/list" {
			t.Errorf("Expected to request '/api/1/folders/list', got '%s'", r.URL.Path)
		}
		writeBody(t, w, `[
			{"type":"folder","folder_id":100,"title":"Reading","display_title":"Reading","sync_to_mobile":1,"position":1,"slug":"reading"},
			{"type":"folder","folder_id":101,"title":"Later","display_title":"Later","sync_to_mobile":0,"position":2,"slug":"later"}
		]`)
	})

	folders, err := client.GetFolders(context.Background())
	if err != nil {
		t.Fatalf("GetFolders failed: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("Expected 2 folders, got %d", len(folders))
	}
	if folders[0].FolderID != 100 || folders[0].Slug != "reading" || !folders[0].SyncToMobile {
		t.Errorf("Unexpected first folder: %+v", folders[0])
	}
	if folders[1].Position != 2 || folders[1].SyncToMobile {
		t.Errorf("Unexpected second folder: %+v", folders[1])
	}
}

func TestGetFoldersErrorElement(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, `[{"type":"folder","folder_id":100},{"type":"error","error_code":1500,"message":"Unexpected service error"}]`)
	})

	folders, err := client.GetFolders(context.Background())
	var apiErr *RemoteAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected RemoteAPIError, got %v", err)
	}
	if folders != nil {
		t.Errorf("Expected no partial list, got %d folders", len(folders))
	}
}
