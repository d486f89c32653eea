// Package chart scrapes the Billboard Hot 100 chart page into (song, artist) pairs.
package chart

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/chartpull/internal/models"
	"github.com/desertthunder/chartpull/internal/shared"
	"golang.org/x/net/html"
)

// DefaultURL is the published Hot 100 chart page.
const DefaultURL = "https://www.billboard.com/charts/hot-100/"

// Chart row selectors. The page renders each entry as a
// ul.o-chart-results-list-row containing an h3#title-of-a-story for the song
// title and a span.c-label.a-no-trucate for the artist line.
const (
	rowClass    = "o-chart-results-list-row"
	titleID     = "title-of-a-story"
	labelClass  = "c-label"
	artistClass = "a-no-trucate"
)

// Scraper fetches and parses the chart page.
type Scraper struct {
	client *http.Client
	url    string
}

// NewScraper creates a Scraper for the default chart URL.
func NewScraper() *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 30 * time.Second},
		url:    DefaultURL,
	}
}

// NewScraperWithClient creates a Scraper with a custom HTTP client and URL.
// An empty url falls back to [DefaultURL].
func NewScraperWithClient(client *http.Client, url string) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if url == "" {
		url = DefaultURL
	}
	return &Scraper{client: client, url: url}
}

// Fetch retrieves the chart page and extracts entries in page display order.
func (s *Scraper) Fetch(ctx context.Context) ([]models.ChartEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Browser headers to avoid being blocked or served different content
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrChartFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", shared.ErrChartFetch, resp.StatusCode)
	}

	return Parse(resp.Body)
}

// Parse extracts chart entries from an HTML document.
//
// Returns [shared.ErrChartLayout] when no chart rows are found, which
// indicates the page structure no longer matches the selectors.
func Parse(r io.Reader) ([]models.ChartEntry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chart HTML: %w", err)
	}

	var entries []models.ChartEntry
	for _, row := range findAll(doc, isChartRow) {
		title := findFirst(row, isTitleNode)
		artist := findFirst(row, isArtistNode)
		if title == nil || artist == nil {
			return nil, fmt.Errorf("%w: row missing title or artist", shared.ErrChartLayout)
		}

		entries = append(entries, models.ChartEntry{
			Song:   strings.TrimSpace(textContent(title)),
			Artist: strings.TrimSpace(textContent(artist)),
		})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no chart rows found", shared.ErrChartLayout)
	}

	return entries, nil
}

func isChartRow(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "ul" && hasClass(n, rowClass)
}

func isTitleNode(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "h3" && attr(n, "id") == titleID
}

func isArtistNode(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "span" && hasClass(n, labelClass) && hasClass(n, artistClass)
}

// findAll collects every node in the subtree matching the predicate, in document order.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	if match(n) {
		found = append(found, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		found = append(found, findAll(c, match)...)
	}
	return found
}

// findFirst returns the first node in the subtree matching the predicate, or nil.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
