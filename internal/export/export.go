package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bmaupin/go-epub"
	"github.com/gosimple/slug"

	"instapaperkobo/internal/instapaper"
	"instapaperkobo/internal/logger"
	"instapaperkobo/internal/store"
)

// Options selects what is exported and what happens afterwards.
type Options struct {
	Dir        string
	Folder     string
	Limit      int
	Archive    bool
	Highlights bool
}

// Ledger remembers exported bookmarks so they are not fetched again.
type Ledger interface {
	ExportedIDs() ([]int64, error)
	MarkExported(e store.Export) error
}

// Failure is a bookmark that could not be exported.
type Failure struct {
	BookmarkID int64
	Err        error
}

// Result lists what a run produced.
type Result struct {
	Files    []string
	Failures []Failure
}

// Exporter writes one EPUB per bookmark under Dir/<year>/<month>/.
type Exporter struct {
	client instapaper.ClientInterface
	ledger Ledger
	opts   Options
	log    *logger.Logger
	now    func() time.Time
}

func New(client instapaper.ClientInterface, ledger Ledger, opts Options, log *logger.Logger) *Exporter {
	return &Exporter{client: client, ledger: ledger, opts: opts, log: log, now: time.Now}
}

// Run exports every bookmark in the configured folder that was not exported
// before. A failing bookmark is recorded in the result and skipped.
func (e *Exporter) Run(ctx context.Context) (*Result, error) {
	have, err := e.ledger.ExportedIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to read exported bookmarks: %w", err)
	}
	seen := make(map[int64]bool, len(have))
	for _, id := range have {
		seen[id] = true
	}

	bookmarks, err := e.client.GetBookmarks(ctx, e.opts.Folder, e.opts.Limit, have)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, b := range bookmarks {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if seen[b.BookmarkID] {
			continue
		}

		e.log.Infof("Processing %s", b)
		path, err := e.exportBookmark(ctx, b)
		if err != nil {
			e.log.Warnf("Could not export bookmark %d: %v", b.BookmarkID, err)
			result.Failures = append(result.Failures, Failure{BookmarkID: b.BookmarkID, Err: err})
			continue
		}
		result.Files = append(result.Files, path)

		if err := e.ledger.MarkExported(store.Export{
			BookmarkID: b.BookmarkID,
			Hash:       b.Hash,
			Title:      b.Title,
			Path:       path,
			ExportedAt: e.now(),
		}); err != nil {
			return result, fmt.Errorf("failed to record export of bookmark %d: %w", b.BookmarkID, err)
		}

		if e.opts.Archive {
			if _, err := b.Archive(ctx); err != nil {
				e.log.Warnf("Could not archive bookmark %d: %v", b.BookmarkID, err)
			}
		}
	}

	e.log.Infof("Saved %d article EPUBs to %s", len(result.Files), e.opts.Dir)
	return result, nil
}

func (e *Exporter) exportBookmark(ctx context.Context, b *instapaper.Bookmark) (string, error) {
	resp, err := b.GetText(ctx)
	if err != nil {
		return "", err
	}
	text, ok := resp.Raw()
	if !ok {
		return "", errors.New("article text is not HTML")
	}

	var highlights []*instapaper.Highlight
	if e.opts.Highlights {
		highlights, err = b.GetHighlights(ctx)
		if err != nil {
			e.log.Warnf("Could not fetch highlights for bookmark %d: %v", b.BookmarkID, err)
		}
	}

	title, body, err := renderArticle(b, text, highlights)
	if err != nil {
		return "", err
	}

	path := e.pathFor(b, title)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	book := epub.NewEpub(title)
	if b.Description != "" {
		book.SetDescription(b.Description)
	}
	if host := hostOf(b.URL); host != "" {
		book.SetAuthor(host)
	}
	if _, err := book.AddSection(body, title, "", ""); err != nil {
		return "", fmt.Errorf("failed to add article to epub: %w", err)
	}
	if err := book.Write(path); err != nil {
		return "", fmt.Errorf("failed to write epub: %w", err)
	}
	return path, nil
}

// pathFor files the article by the month it was saved in.
func (e *Exporter) pathFor(b *instapaper.Bookmark, title string) string {
	saved := b.Time.Time
	if !b.Time.Valid() {
		saved = e.now()
	}
	name := slug.Make(title)
	if name == "" {
		name = strconv.FormatInt(b.BookmarkID, 10)
	}
	return filepath.Join(e.opts.Dir,
		strconv.Itoa(saved.Year()),
		strconv.Itoa(int(saved.Month())),
		name+".epub")
}

// renderArticle cleans the article HTML and prepends a title and origin
// line. Highlights, if any, are appended.
func renderArticle(b *instapaper.Bookmark, text []byte, highlights []*instapaper.Highlight) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(text))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse article: %w", err)
	}
	doc.Find("script, style, noscript, iframe").Remove()

	title := b.Title
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = fmt.Sprintf("Bookmark %d", b.BookmarkID)
	}

	content, err := doc.Find("body").First().Html()
	if err != nil {
		return "", "", fmt.Errorf("failed to render article: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("<h1>" + html.EscapeString(title) + "</h1>")
	if host := hostOf(b.URL); host != "" {
		fmt.Fprintf(&sb, `<p class="origin"><a href="%s">%s</a></p>`, html.EscapeString(b.URL), html.EscapeString(host))
	}
	sb.WriteString(content)

	if len(highlights) > 0 {
		sb.WriteString("<h2>Highlights</h2>")
		for _, h := range highlights {
			sb.WriteString("<blockquote>" + html.EscapeString(h.Text) + "</blockquote>")
			if h.Note != "" {
				sb.WriteString("<p>" + html.EscapeString(h.Note) + "</p>")
			}
		}
	}
	return title, sb.String(), nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
