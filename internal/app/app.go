package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"

	"instapaperkobo/internal/config"
	"instapaperkobo/internal/instapaper"
	"instapaperkobo/internal/logger"
	"instapaperkobo/internal/models"
)

// App holds the application's core dependencies and configuration.
type App struct {
	Config           *config.Config
	InstapaperClient instapaper.ClientInterface
	Logger           *logger.Logger
	HTTPClient       *http.Client
}

// Option is a functional option for configuring the App.
type Option func(*App)

// NewApp creates a new App instance with the given options.
func NewApp(opts ...Option) *App {
	app := &App{
		Logger:     logger.Nop(),
		HTTPClient: newImageHTTPClient(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// WithConfig sets the application configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithInstapaperClient sets the Instapaper API client.
func WithInstapaperClient(client instapaper.ClientInterface) Option {
	return func(a *App) {
		a.InstapaperClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithImageHTTPClient sets the client used to fetch remote images.
func WithImageHTTPClient(c *http.Client) Option {
	return func(a *App) {
		a.HTTPClient = c
	}
}

// errPrivateAddress is returned when an image host resolves to an address
// inside the local network.
var errPrivateAddress = errors.New("refusing to fetch from a non-public address")

// publicOnly is a net.Dialer control hook. It runs after name resolution, so
// it also covers hosts that resolve to local addresses.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s", errPrivateAddress, host)
	}
	return nil
}

// newImageHTTPClient returns the client used for remote images. It only
// dials public addresses and ignores proxy settings.
func newImageHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: publicOnly}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: 30 * time.Second, Transport: transport}
}

// folderForState maps a Pocket item state to an Instapaper folder.
func folderForState(state string) string {
	switch state {
	case "archive":
		return "archive"
	case "favorite":
		return "starred"
	}
	return "unread"
}

// parseSince accepts epoch seconds as a JSON number or string.
func parseSince(v any) (time.Time, bool) {
	var secs int64
	switch s := v.(type) {
	case float64:
		secs = int64(s)
	case string:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		secs = n
	default:
		return time.Time{}, false
	}
	if secs <= 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// lastTouched is the latest of the save time and the reading progress time.
func lastTouched(b *instapaper.Bookmark) time.Time {
	t := b.Time.Time
	if b.ProgressTimestamp.Valid() && b.ProgressTimestamp.After(t) {
		t = b.ProgressTimestamp.Time
	}
	return t
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func koboItem(b *instapaper.Bookmark, folder string) models.KoboArticleItem {
	id := b.Identify()
	favorite := "0"
	if b.Starred {
		favorite = "1"
	}
	status := "0"
	var timeRead int64
	if folder == "archive" {
		status = "1"
		timeRead = unixOrZero(b.ProgressTimestamp.Time)
	}
	return models.KoboArticleItem{
		Authors:       map[string]models.KoboAuthor{},
		Excerpt:       b.Description,
		Favorite:      favorite,
		GivenTitle:    b.Title,
		GivenURL:      b.URL,
		HasImage:      "0",
		HasVideo:      "0",
		Image:         models.KoboImage{Src: ""},
		Images:        map[string]models.KoboImage{},
		IsArticle:     "1",
		ItemID:        id,
		ResolvedID:    id,
		ResolvedTitle: b.Title,
		ResolvedURL:   b.URL,
		Status:        status,
		Tags:          map[string]models.KoboTag{},
		TimeAdded:     unixOrZero(b.Time.Time),
		TimeRead:      timeRead,
		TimeUpdated:   unixOrZero(lastTouched(b)),
		Videos:        []any{},
		Optional:      map[string]any{},
	}
}

// HandleKoboGet handles the /api/kobo/get endpoint.
func (a *App) HandleKoboGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.KoboGetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		a.Logger.Errorf("Error decoding /api/kobo/get request: %v, URL: %s, Params: %v", err, r.URL.Path, r.URL.Query())
		return
	}

	count, _ := strconv.Atoi(req.Count)
	offset, _ := strconv.Atoi(req.Offset)
	folder := folderForState(req.State)

	ctx := r.Context()
	bookmarks, err := a.InstapaperClient.GetBookmarks(ctx, folder, instapaper.MaxBookmarkLimit, nil)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get bookmarks: %v", err), http.StatusInternalServerError)
		a.Logger.Errorf("Error getting bookmarks for /api/kobo/get: %v, URL: %s, Params: %v", err, r.URL.Path, r.URL.Query())
		return
	}

	if since, ok := parseSince(req.Since); ok {
		filtered := bookmarks[:0]
		for _, b := range bookmarks {
			if !lastTouched(b).Before(since) {
				filtered = append(filtered, b)
			}
		}
		bookmarks = filtered
	}

	resultList := make(map[string]models.KoboArticleItem)
	processedCount := 0
	for i, b := range bookmarks {
		if i < offset {
			continue
		}
		if processedCount >= count && count != 0 {
			break
		}
		resultList[b.Identify()] = koboItem(b, folder)
		processedCount++
	}

	resp := models.KoboGetResponse{
		Status: 1,
		List:   resultList,
		Total:  len(bookmarks),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.Logger.Errorf("Error encoding response for /api/kobo/get: %v, URL: %s, Params: %v", err, r.URL.Path, r.URL.Query())
	}
}

// downloadFolders are searched in order for the requested article.
var downloadFolders = []string{"unread", "starred", "archive"}

// HandleKoboDownload handles the /api/kobo/download endpoint.
func (a *App) HandleKoboDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		a.Logger.Errorf("Error parsing form for /api/kobo/download: %v, URL: %s, Params: %v", err, r.URL.Path, r.URL.Query())
		return
	}

	reqURLStr := r.FormValue("url")
	if reqURLStr == "" {
		http.Error(w, "Missing 'url' parameter", http.StatusBadRequest)
		a.Logger.Warnf("Missing 'url' parameter in /api/kobo/download request, URL: %s, Params: %v", r.URL.Path, r.URL.Query())
		return
	}

	ctx := r.Context()
	var bookmarkFound *instapaper.Bookmark
	for _, folder := range downloadFolders {
		bookmarks, err := a.InstapaperClient.GetBookmarks(ctx, folder, instapaper.MaxBookmarkLimit, nil)
		if err != nil {
			a.Logger.Errorf("Error searching Instapaper folder %s in /api/kobo/download: %v, URL: %s, Params: %v", folder, err, r.URL.Path, r.URL.Query())
			continue
		}
		for _, b := range bookmarks {
			if match, _ := compareURLs(b.URL, reqURLStr); match {
				bookmarkFound = b
				break
			}
		}
		if bookmarkFound != nil {
			break
		}
	}

	if bookmarkFound == nil {
		http.Error(w, "Article not found", http.StatusNotFound)
		return
	}

	textResp, err := bookmarkFound.GetText(ctx)
	if err != nil {
		http.Error(w, "Failed to fetch article content", http.StatusInternalServerError)
		a.Logger.Errorf("Error fetching article content for bookmark %d in /api/kobo/download: %v, URL: %s, Params: %v", bookmarkFound.BookmarkID, err, r.URL.Path, r.URL.Query())
		return
	}
	articleHTML, ok := textResp.Raw()
	if !ok {
		http.Error(w, "Unexpected article content", http.StatusBadGateway)
		a.Logger.Errorf("Article text for bookmark %d in /api/kobo/download was JSON, not HTML", bookmarkFound.BookmarkID)
		return
	}

	article, images, err := extractImages(articleHTML)
	if err != nil {
		http.Error(w, "Failed to process article HTML", http.StatusInternalServerError)
		a.Logger.Errorf("Error processing article HTML for bookmark %d in /api/kobo/download: %v, URL: %s, Params: %v", bookmarkFound.BookmarkID, err, r.URL.Path, r.URL.Query())
		return
	}

	response := models.KoboDownloadResponse{
		Images:  images,
		Article: article,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		a.Logger.Errorf("Error encoding response for /api/kobo/download: %v, URL: %s, Params: %v", err, r.URL.Path, r.URL.Query())
	}
}

// extractImages replaces every <img> with an IMG_n comment, which is how the
// Kobo reader expects image placeholders, and returns the image table.
func extractImages(articleHTML []byte) (string, map[string]models.KoboImage, error) {
	doc, err := html.Parse(bytes.NewReader(articleHTML))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse article HTML: %w", err)
	}

	images := make(map[string]models.KoboImage)
	var imageIndex int
	var processNode func(*html.Node)
	processNode = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, attr := range n.Attr {
				if attr.Key == "src" {
					id := strconv.Itoa(imageIndex)
					images[id] = models.KoboImage{ImageID: id, ItemID: id, Src: attr.Val}
					comment := &html.Node{
						Type: html.CommentNode,
						Data: fmt.Sprintf("IMG_%d", imageIndex),
					}
					if n.Parent != nil {
						n.Parent.InsertBefore(comment, n)
						n.Parent.RemoveChild(n)
					}
					imageIndex++
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			processNode(c)
			c = next
		}
	}
	processNode(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", nil, fmt.Errorf("failed to render modified HTML: %w", err)
	}
	return buf.String(), images, nil
}

// compareURLs reports whether two URLs point at the same article: same
// scheme, same host ignoring a leading "www.", same path. Query strings and
// fragments are ignored.
func compareURLs(url1, url2 string) (bool, error) {
	u1, err := url.Parse(url1)
	if err != nil {
		return false, err
	}
	u2, err := url.Parse(url2)
	if err != nil {
		return false, err
	}
	host1 := strings.TrimPrefix(u1.Host, "www.")
	host2 := strings.TrimPrefix(u2.Host, "www.")
	return u1.Scheme == u2.Scheme && host1 == host2 && u1.Path == u2.Path, nil
}

// HandleKoboSend handles the /api/kobo/send endpoint.
func (a *App) HandleKoboSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.KoboSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		a.Logger.Errorf("Error decoding /api/kobo/send request: %v, URL: %s, Params: %v", err, r.URL.Path, r.URL.Query())
		return
	}

	ctx := r.Context()
	actionResults := make([]bool, len(req.Actions))
	allSucceeded := true

	for i, action := range req.Actions {
		var err error
		if action.Action == "add" {
			_, err = a.InstapaperClient.NewBookmark(action.URL, "").Add(ctx)
		} else {
			err = a.applyToBookmark(r, action)
		}

		if err != nil {
			a.Logger.Errorf("Error processing action '%s' in /api/kobo/send: %v, URL: %s, Params: %v", action.Action, err, r.URL.Path, r.URL.Query())
			actionResults[i] = false
			allSucceeded = false
		} else {
			actionResults[i] = true
		}
	}

	response := models.KoboSendResponse{
		Status:        allSucceeded,
		ActionResults: actionResults,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		a.Logger.Errorf("Error encoding response for /api/kobo/send: %v, URL: %s, Params: %v", err, r.URL.Path, r.URL.Query())
	}
}

func (a *App) applyToBookmark(r *http.Request, action models.KoboAction) error {
	id, err := strconv.ParseInt(action.ItemID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item_id %q: %w", action.ItemID, err)
	}
	bookmark := a.InstapaperClient.Bookmark(id)
	ctx := r.Context()

	switch action.Action {
	case "archive":
		_, err = bookmark.Archive(ctx)
	case "readd":
		_, err = bookmark.Unarchive(ctx)
	case "favorite":
		_, err = bookmark.Star(ctx)
	case "unfavorite":
		_, err = bookmark.Unstar(ctx)
	case "delete":
		_, err = bookmark.Delete(ctx)
	default:
		err = fmt.Errorf("unknown action: %s", action.Action)
	}
	return err
}

// HandleConvertImage handles the /api/convert-image endpoint.
func (a *App) HandleConvertImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	imageURL := r.URL.Query().Get("url")
	if imageURL == "" {
		http.Error(w, "Missing 'url' parameter", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, imageURL, nil)
	if err == nil && req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		err = fmt.Errorf("unsupported scheme %q", req.URL.Scheme)
	}
	if err != nil {
		a.Logger.Warnf("Invalid image URL %s in /api/convert-image: %v", imageURL, err)
		a.returnPlaceholderImage(w, r, "Invalid image URL")
		return
	}
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		a.Logger.Warnf("Failed to fetch image %s in /api/convert-image: %v, URL: %s, Params: %v", imageURL, err, r.URL.Path, r.URL.Query())
		a.returnPlaceholderImage(w, r, "Image fetch failed")
		return
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.Logger.Warnf("Error closing response body for image %s in /api/convert-image: %v", imageURL, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		a.Logger.Warnf("Failed to fetch image %s in /api/convert-image: status %d, URL: %s, Params: %v", imageURL, resp.StatusCode, r.URL.Path, r.URL.Query())
		a.returnPlaceholderImage(w, r, "Image not found")
		return
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		a.Logger.Warnf("Failed to decode image %s in /api/convert-image: %v, URL: %s, Params: %v", imageURL, err, r.URL.Path, r.URL.Query())
		a.returnPlaceholderImage(w, r, "Image decoding failed")
		return
	}

	b := img.Bounds()
	rgbImg := image.NewRGBA(b)
	draw.Draw(rgbImg, b, img, image.Point{}, draw.Src)

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := jpeg.Encode(w, rgbImg, &jpeg.Options{Quality: 85}); err != nil {
		a.Logger.Errorf("Failed to encode JPEG for image %s in /api/convert-image: %v", imageURL, err)
	}
}

func (a *App) returnPlaceholderImage(w http.ResponseWriter, r *http.Request, message string) {
	width, height := 800, 600
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	point := fixed.Point26_6{X: fixed.I(20), Y: fixed.I(300)}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  point,
	}
	d.DrawString(message)

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: 85}); err != nil {
		a.Logger.Errorf("Error encoding placeholder image: %v, URL: %s, Params: %v", err, r.URL.Path, r.URL.Query())
	}
}
