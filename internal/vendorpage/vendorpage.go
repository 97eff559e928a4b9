// Package vendorpage fetches a vendor's product page and reduces it to a
// short markdown preview. The preview lets a user sanity-check a parsed
// vendor (does the page exist, does the price match) without leaving the
// wizard.
package vendorpage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/kmi-labs/kiba/internal/vendors"
)

// ErrNotHTTPS is returned for plain-http or malformed product links.
var ErrNotHTTPS = errors.New("vendorpage: product links must use https")

const (
	maxBodyBytes   = 2 << 20
	maxPreviewRune = 2000
	userAgent      = "kiba-wizard/1.0"
)

// Preview is the reduced view of a fetched product page.
type Preview struct {
	URL          string  `json:"url"`
	Title        string  `json:"title,omitempty"`
	Markdown     string  `json:"markdown"`
	PriceUSD     float64 `json:"price_usd,omitempty"`
	Availability string  `json:"availability"`

	// PriceMatches is false when the page quotes a different price than
	// the research prose did.
	PriceMatches bool `json:"price_matches"`
}

// Fetcher downloads and converts vendor pages.
type Fetcher struct {
	http      *http.Client
	converter *md.Converter
}

// NewFetcher creates a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Fetcher{
		http:      &http.Client{Timeout: timeout},
		converter: converter,
	}
}

// Fetch downloads the page and builds a Preview. expectedPrice is the price
// the research prose claimed; pass zero when none was parsed.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, expectedPrice float64) (*Preview, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
		return nil, ErrNotHTTPS
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("vendorpage: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vendorpage: fetch %s: %w", parsed.Host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vendorpage: fetch %s: status %d", parsed.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("vendorpage: read %s: %w", parsed.Host, err)
	}

	return f.build(parsed, body, expectedPrice)
}

func (f *Fetcher) build(pageURL *url.URL, body []byte, expectedPrice float64) (*Preview, error) {
	article, err := readability.FromReader(strings.NewReader(string(body)), pageURL)
	if err != nil {
		return nil, fmt.Errorf("vendorpage: extract content: %w", err)
	}

	source := article.Content
	if strings.TrimSpace(source) == "" {
		source = string(body)
	}
	markdown, err := f.converter.ConvertString(source)
	if err != nil {
		return nil, fmt.Errorf("vendorpage: render markdown: %w", err)
	}
	markdown = truncate(strings.TrimSpace(markdown), maxPreviewRune)

	pagePrice := vendors.PriceIn(article.TextContent)
	if pagePrice == 0 {
		pagePrice = vendors.PriceIn(markdown)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = htmlTitle(body)
	}

	return &Preview{
		URL:          pageURL.String(),
		Title:        title,
		Markdown:     markdown,
		PriceUSD:     pagePrice,
		Availability: vendors.AvailabilityIn(article.TextContent),
		PriceMatches: priceMatches(expectedPrice, pagePrice),
	}, nil
}

// priceMatches tolerates a 5% spread between the quoted and page price.
// Missing data on either side counts as a match.
func priceMatches(expected, actual float64) bool {
	if expected == 0 || actual == 0 {
		return true
	}
	diff := expected - actual
	if diff < 0 {
		diff = -diff
	}
	return diff/expected <= 0.05
}

// htmlTitle pulls the <title> element out of raw HTML.
func htmlTitle(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil && title == ""; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
