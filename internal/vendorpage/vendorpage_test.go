package vendorpage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const productHTML = `<!DOCTYPE html>
<html>
<head><title>Rugged Laptop 14 | Example Store</title></head>
<body>
<nav>Home / Laptops / Rugged</nav>
<article>
<h1>Rugged Laptop 14</h1>
<p>MIL-SPEC chassis with a 14 inch display, designed for field deployments
where drops, dust and vibration would destroy a consumer machine. Includes a
three year on-site warranty and hot-swappable batteries for long shifts.</p>
<p>Price: $1,899.00 per unit. In stock and ships within two business days.</p>
</article>
</body>
</html>`

func newTestFetcher(t *testing.T, handler http.HandlerFunc) (*Fetcher, string) {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)
	fetcher := NewFetcher(5 * time.Second)
	fetcher.http = server.Client()
	return fetcher, server.URL
}

func TestFetchBuildsPreview(t *testing.T) {
	fetcher, baseURL := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(productHTML))
	})

	preview, err := fetcher.Fetch(context.Background(), baseURL+"/product/rugged-14", 1899.00)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(preview.Title, "Rugged Laptop 14") {
		t.Errorf("unexpected title %q", preview.Title)
	}
	if !strings.Contains(preview.Markdown, "Rugged Laptop 14") {
		t.Errorf("markdown missing heading:\n%s", preview.Markdown)
	}
	if preview.PriceUSD != 1899.00 {
		t.Errorf("expected page price 1899.00, got %v", preview.PriceUSD)
	}
	if preview.Availability != "in_stock" {
		t.Errorf("expected in_stock, got %s", preview.Availability)
	}
	if !preview.PriceMatches {
		t.Error("expected matching price")
	}
}

func TestFetchFlagsPriceMismatch(t *testing.T) {
	fetcher, baseURL := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(productHTML))
	})

	preview, err := fetcher.Fetch(context.Background(), baseURL+"/product/rugged-14", 2500.00)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if preview.PriceMatches {
		t.Errorf("expected mismatch between 2500.00 and %v", preview.PriceUSD)
	}
}

func TestFetchRejectsPlainHTTP(t *testing.T) {
	fetcher := NewFetcher(time.Second)
	if _, err := fetcher.Fetch(context.Background(), "http://example.com/product", 0); err != ErrNotHTTPS {
		t.Fatalf("expected ErrNotHTTPS, got %v", err)
	}
	if _, err := fetcher.Fetch(context.Background(), "not a url", 0); err != ErrNotHTTPS {
		t.Fatalf("expected ErrNotHTTPS for garbage input, got %v", err)
	}
}

func TestFetchSurfacesBadStatus(t *testing.T) {
	fetcher, baseURL := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := fetcher.Fetch(context.Background(), baseURL+"/gone", 0)
	if err == nil {
		t.Fatal("expected error for 404 page")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestHTMLTitleFallback(t *testing.T) {
	page := []byte(`<html><head><title>  Fallback Title </title></head><body><p>x</p></body></html>`)
	if got := htmlTitle(page); got != "Fallback Title" {
		t.Fatalf("expected trimmed title, got %q", got)
	}
	if got := htmlTitle([]byte("<html><body>no title</body></html>")); got != "" {
		t.Fatalf("expected empty title, got %q", got)
	}
}

func TestPriceMatchesTolerance(t *testing.T) {
	cases := []struct {
		expected, actual float64
		want             bool
	}{
		{0, 1899, true},
		{1899, 0, true},
		{1899, 1899, true},
		{1899, 1850, true},
		{1899, 1500, false},
		{100, 106, false},
	}
	for _, tc := range cases {
		if got := priceMatches(tc.expected, tc.actual); got != tc.want {
			t.Errorf("priceMatches(%v, %v) = %v, want %v", tc.expected, tc.actual, got, tc.want)
		}
	}
}
