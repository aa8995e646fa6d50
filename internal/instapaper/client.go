package instapaper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"instapaperkobo/internal/logger"
)

const (
	DefaultBaseURL       = "https://www.instapaper.com"
	DefaultAPIVersion    = "1"
	HighlightsAPIVersion = "1.1"
	DefaultRequestDelay  = 200 * time.Millisecond
	DefaultBookmarkLimit = 25
	MaxBookmarkLimit     = 500

	defaultHTTPTimeout = 10 * time.Second
	accessTokenPath    = "oauth/access_token"
)

// Client represents an Instapaper API client.
type Client struct {
	BaseURL    *url.URL
	APIVersion string

	delay    time.Duration
	log      *logger.Logger
	validate *validator.Validate

	mu            sync.Mutex
	signer        *signer
	onAuthFailure func(error)
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL points the client at another host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		parsed, err := url.ParseRequestURI(baseURL)
		if err != nil {
			return fmt.Errorf("failed to parse base URL: %w", err)
		}
		c.BaseURL = parsed
		return nil
	}
}

// WithAPIVersion sets the default API version.
func WithAPIVersion(version string) Option {
	return func(c *Client) error {
		c.APIVersion = version
		return nil
	}
}

// WithHTTPClient sets the client the signer hands signed requests to.
// Timeouts must be configured here.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.signer.base = hc
		return nil
	}
}

// WithRequestDelay sets the pause taken before every request.
func WithRequestDelay(d time.Duration) Option {
	return func(c *Client) error {
		c.delay = d
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithAuthFailureHandler registers fn to be called when the API rejects the
// access token. fn runs while the client is locked and must not call it.
func WithAuthFailureHandler(fn func(error)) Option {
	return func(c *Client) error {
		c.onAuthFailure = fn
		return nil
	}
}

// NewClient creates a new Instapaper API client for the given consumer
// credentials. Call Login or SetToken before anything else.
func NewClient(consumerKey, consumerSecret string, opts ...Option) (*Client, error) {
	if consumerKey == "" || consumerSecret == "" {
		return nil, errors.New("consumer key and secret are required")
	}
	base, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		BaseURL:    base,
		APIVersion: DefaultAPIVersion,
		delay:      DefaultRequestDelay,
		log:        logger.Nop(),
		validate:   validator.New(),
		signer: newSigner(consumerKey, consumerSecret, &http.Client{
			Timeout: defaultHTTPTimeout,
		}),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Login exchanges a username and password for an access token (XAuth).
// Subsequent requests are signed with the new token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("x_auth_mode", "client_auth")
	form.Set("x_auth_username", username)
	form.Set("x_auth_password", password)

	resp, err := c.Request(ctx, accessTokenPath, form, RawBody())
	if err != nil {
		return fmt.Errorf("failed to request access token: %w", err)
	}

	body, _ := resp.Raw()
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return &AuthenticationError{Body: string(body)}
	}
	token, secret := values.Get("oauth_token"), values.Get("oauth_token_secret")
	if token == "" || secret == "" {
		return &AuthenticationError{Body: string(body)}
	}

	c.SetToken(token, secret)
	c.log.Infof("Logged in as %s", username)
	return nil
}

// SetToken replaces the access token, e.g. with one cached from an earlier
// login.
func (c *Client) SetToken(token, secret string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signer.setToken(token, secret)
}

// Token returns the current access token. ok is false before login.
func (c *Client) Token() (token, secret string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signer.tokenPair()
}

type requestOptions struct {
	method     string
	apiVersion string
	raw        bool
}

// RequestOption adjusts a single Request call.
type RequestOption func(*requestOptions)

// Method sets the HTTP method. The default is POST.
func Method(method string) RequestOption {
	return func(o *requestOptions) { o.method = method }
}

// APIVersion overrides the client's API version for one call.
func APIVersion(version string) RequestOption {
	return func(o *requestOptions) { o.apiVersion = version }
}

// RawBody skips JSON decoding.
func RawBody() RequestOption {
	return func(o *requestOptions) { o.raw = true }
}

func (c *Client) endpoint(version, path string) *url.URL {
	return c.BaseURL.JoinPath("api", version, path)
}

// Request sends a signed request to api/<version>/<path>. POST parameters
// are form encoded in the body. The body is decoded as JSON unless RawBody
// is given; a body that is not JSON is returned as a RawPayload.
func (c *Client) Request(ctx context.Context, path string, params url.Values, opts ...RequestOption) (*Response, error) {
	o := requestOptions{method: http.MethodPost, apiVersion: c.APIVersion}
	for _, opt := range opts {
		opt(&o)
	}

	reqURL := c.endpoint(o.apiVersion, path)
	var reqBody io.Reader
	var form url.Values
	if o.method == http.MethodPost && len(params) > 0 {
		form = params
		reqBody = strings.NewReader(params.Encode())
	} else if len(params) > 0 {
		reqURL.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, o.method, reqURL.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.pause(ctx); err != nil {
		return nil, err
	}

	resp, err := c.signer.do(req, form)
	if err != nil {
		return nil, &TransportError{Method: o.method, URL: reqURL.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: o.method, URL: reqURL.String(), Err: err}
	}
	c.log.Debugf("URL: %s; STATUS: %d; CONTENT: %.50s ...", reqURL.Redacted(), resp.StatusCode, body)

	result := &Response{StatusCode: resp.StatusCode, Header: resp.Header}
	if o.raw {
		result.Data = RawPayload(body)
		return result, nil
	}
	result.Data = decodePayload(body)
	if err := remoteError(result, body); err != nil {
		if IsAuthError(err) && c.onAuthFailure != nil {
			c.onAuthFailure(err)
		}
		return nil, err
	}
	return result, nil
}

// remoteError returns the error element of a JSON response, or a
// RemoteAPIError for a 401/403 answer that carries none.
func remoteError(resp *Response, body []byte) error {
	var apiErr *RemoteAPIError
	if err := checkErrorEnvelope(resp.Data); errors.As(err, &apiErr) {
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &RemoteAPIError{
			StatusCode: resp.StatusCode,
			Code:       resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
	return nil
}

// pause is the fixed inter-request delay. It does not adapt to throttling
// responses.
func (c *Client) pause(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GetBookmarks lists bookmarks in folder ("unread", "starred", "archive" or
// a folder id). limit 0 selects the default of 25. have excludes bookmarks
// the caller already holds.
func (c *Client) GetBookmarks(ctx context.Context, folder string, limit int, have []int64) ([]*Bookmark, error) {
	if folder == "" {
		folder = "unread"
	}
	if limit == 0 {
		limit = DefaultBookmarkLimit
	}
	if err := c.validate.Var(limit, "min=1,max=500"); err != nil {
		return nil, &InvalidArgumentError{Name: "limit", Err: err}
	}

	form := url.Values{}
	form.Set("folder_id", folder)
	form.Set("limit", strconv.Itoa(limit))
	if len(have) > 0 {
		ids := make([]string, len(have))
		for i, id := range have {
			ids[i] = strconv.FormatInt(id, 10)
		}
		form.Set("have", strings.Join(ids, ","))
	}

	resp, err := c.Request(ctx, "bookmarks/list", form)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	bookmarks, err := collect(resp, "bookmark", c.newBookmarkFrom)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// GetFolders lists the user's folders.
func (c *Client) GetFolders(ctx context.Context) ([]*Folder, error) {
	resp, err := c.Request(ctx, "folders/list", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	folders, err := collect(resp, "folder", c.newFolderFrom)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}
