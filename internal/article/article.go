// Package article pulls readable structure out of a web article and turns it
// into a storyboard for one of the composition templates.
package article

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MinContentLength is the shortest body text worth building a video from.
	MinContentLength = 100

	// MaxContentLength caps the text kept for analysis.
	MaxContentLength = 20000

	userAgent = "reelwright/1.0"
)

var ErrNoContent = errors.New("no usable article content")

var whitespace = regexp.MustCompile(`\s+`)

// Article is the readable content of a page.
type Article struct {
	URL        string   `json:"url,omitempty"`
	Title      string   `json:"title"`
	Headings   []string `json:"headings,omitempty"`
	Paragraphs []string `json:"paragraphs,omitempty"`
	ListItems  []string `json:"list_items,omitempty"`
	Quotes     []string `json:"quotes,omitempty"`
	Images     []string `json:"images,omitempty"`
}

// Text joins the article body into one whitespace-normalised string, capped
// at MaxContentLength bytes.
func (a *Article) Text() string {
	parts := make([]string, 0, 1+len(a.Headings)+len(a.Paragraphs)+len(a.ListItems)+len(a.Quotes))
	parts = append(parts, a.Title)
	parts = append(parts, a.Headings...)
	parts = append(parts, a.Paragraphs...)
	parts = append(parts, a.ListItems...)
	parts = append(parts, a.Quotes...)

	text := strings.TrimSpace(strings.Join(parts, " "))
	if len(text) > MaxContentLength {
		text = strings.ToValidUTF8(text[:MaxContentLength], "")
	}
	return text
}

// Extract parses an HTML document. Content inside <article> or <main> is
// preferred when the page has one.
func Extract(r io.Reader, pageURL string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer, aside").Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	a := &Article{URL: pageURL}
	a.Title = clean(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	if a.Title == "" {
		a.Title = clean(root.Find("h1").First().Text())
	}
	if a.Title == "" {
		a.Title = clean(doc.Find("title").First().Text())
	}

	root.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		a.Headings = appendText(a.Headings, s.Text())
	})
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("blockquote").Length() > 0 {
			return
		}
		a.Paragraphs = appendText(a.Paragraphs, s.Text())
	})
	root.Find("ol > li, ul > li").Each(func(_ int, s *goquery.Selection) {
		a.ListItems = appendText(a.ListItems, s.Text())
	})
	root.Find("blockquote").Each(func(_ int, s *goquery.Selection) {
		a.Quotes = appendText(a.Quotes, s.Text())
	})
	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && img != "" {
		a.Images = append(a.Images, img)
	}
	root.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if src := strings.TrimSpace(s.AttrOr("src", "")); src != "" {
			a.Images = append(a.Images, src)
		}
	})

	if len(a.Text()) < MinContentLength {
		return nil, ErrNoContent
	}
	return a, nil
}

func clean(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func appendText(dst []string, s string) []string {
	if s = clean(s); s != "" {
		dst = append(dst, s)
	}
	return dst
}

// Fetcher downloads article pages.
type Fetcher struct {
	client *http.Client
}

// NewFetcher wires an HTTP client; a nil client gets a 20 second timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Fetcher{client: client}
}

func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article returned %s", resp.Status)
	}

	return Extract(io.LimitReader(resp.Body, 5<<20), pageURL)
}
