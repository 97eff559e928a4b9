// Package vendors extracts structured vendor candidates from the prose the
// vendor research endpoint returns. The backend answers in free text; the
// heuristics here are deliberately conservative so a garbled answer degrades
// to an empty list rather than invented vendors.
package vendors

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Vendor is one candidate extracted from research prose.
type Vendor struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Website      string   `json:"website,omitempty"`
	PriceUSD     float64  `json:"price_usd,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
	Availability string   `json:"availability"`
	Evidence     []string `json:"evidence,omitempty"`
	Score        float64  `json:"score"`
	USBased      bool     `json:"us_based"`
}

const (
	// minProseLength guards against error strings and refusals being
	// parsed as vendor lists.
	minProseLength = 50

	maxVendors = 10

	minPlausiblePrice = 1
	maxPlausiblePrice = 100_000
)

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s<>")\]]+`)
	pricePattern = regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)

	// Ratings appear as "4.5/5", "4.5 out of 5" or "4.5 stars".
	ratingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d(?:\.\d)?)\s*/\s*5`),
		regexp.MustCompile(`(\d(?:\.\d)?)\s+out of 5`),
		regexp.MustCompile(`(\d(?:\.\d)?)\s+stars?`),
	}
)

// knownVendors maps retailer domains to display names. Anything off this
// list keeps a name derived from its domain.
var knownVendors = map[string]string{
	"cdw.com":          "CDW",
	"bhphotovideo.com": "B&H Photo Video",
	"newegg.com":       "Newegg",
	"microcenter.com":  "Micro Center",
	"insight.com":      "Insight",
	"amazon.com":       "Amazon",
	"bestbuy.com":      "Best Buy",
	"adorama.com":      "Adorama",
	"connection.com":   "Connection",
	"zones.com":        "Zones",
	"wwt.com":          "WWT",
	"shi.com":          "SHI",
}

// Parse extracts up to ten vendors from research prose. Short or empty input
// yields no vendors.
func Parse(output string) []Vendor {
	trimmed := strings.TrimSpace(output)
	if len(trimmed) < minProseLength {
		return nil
	}

	links := urlPattern.FindAllString(trimmed, -1)
	seen := map[string]struct{}{}
	var vendors []Vendor

	for _, link := range links {
		if len(vendors) >= maxVendors {
			break
		}
		domain := rootDomain(link)
		if domain == "" {
			continue
		}
		if _, dup := seen[domain]; dup {
			continue
		}
		seen[domain] = struct{}{}

		context := surrounding(trimmed, link)
		vendor := Vendor{
			ID:           fmt.Sprintf("vendor_%d", len(vendors)+1),
			Name:         vendorName(domain, context, link),
			Website:      link,
			PriceUSD:     extractPrice(context),
			Rating:       extractRating(context),
			Availability: extractAvailability(context),
			Score:        0.9 - 0.05*float64(len(vendors)),
			USBased:      IsUSVendor(link, context),
		}
		if snippet := strings.TrimSpace(context); snippet != "" {
			vendor.Evidence = []string{snippet}
		}
		vendors = append(vendors, vendor)
	}
	return vendors
}

// IsUSVendor decides whether a vendor looks US-based from its website and the
// text around it. The host must carry a US-common TLD and the surrounding
// text must name a US state or the country; anywhere else is non-US.
func IsUSVendor(website, context string) bool {
	host := strings.ToLower(rootDomain(website))
	usSuffixes := []string{".com", ".us", ".org", ".net"}
	allowed := false
	for _, suffix := range usSuffixes {
		if strings.HasSuffix(host, suffix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	lower := strings.ToLower(context)
	if strings.Contains(lower, "united states") || strings.Contains(lower, "usa") {
		return true
	}
	usIndicators := []string{
		" al ", " ak ", " az ", " ar ", " ca ", " co ", " ct ", " de ", " fl ",
		" ga ", " hi ", " id ", " il ", " in ", " ia ", " ks ", " ky ", " la ",
		" me ", " md ", " ma ", " mi ", " mn ", " ms ", " mo ", " mt ", " ne ",
		" nv ", " nh ", " nj ", " nm ", " ny ", " nc ", " nd ", " oh ", " ok ",
		" or ", " pa ", " ri ", " sc ", " sd ", " tn ", " tx ", " ut ", " vt ",
		" va ", " wa ", " wv ", " wi ", " wy ",
	}
	padded := " " + lower + " "
	for _, ind := range usIndicators {
		if strings.Contains(padded, ind) {
			return true
		}
	}
	return false
}

func rootDomain(link string) string {
	parsed, err := url.Parse(strings.TrimRight(link, ".,;"))
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host
}

// vendorName resolves a display name: the known-domain table first, then the
// text leading the link on its line, then a name derived from the domain.
func vendorName(domain, context, link string) string {
	if name, ok := knownVendors[domain]; ok {
		return name
	}
	if name := nameFromContext(context, link); name != "" {
		return name
	}
	base := domain
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	if base == "" {
		return domain
	}
	return strings.ToUpper(base[:1]) + base[1:]
}

// listMarkerPattern strips leading "1." / "-" / "*" list markers.
var listMarkerPattern = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)

// parentheticalPattern drops trailing location notes like "(Denver, CO)".
var parentheticalPattern = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// nameFromContext pulls a vendor name written before the link, in forms like
// "1. Acme Supply - https://..." or "**Acme Supply** https://...".
func nameFromContext(context, link string) string {
	idx := strings.Index(context, link)
	if idx <= 0 {
		return ""
	}
	prefix := context[:idx]
	if nl := strings.LastIndexByte(prefix, '\n'); nl >= 0 {
		prefix = prefix[nl+1:]
	}
	prefix = listMarkerPattern.ReplaceAllString(prefix, "")
	prefix = strings.Trim(prefix, " \t*_")
	prefix = strings.TrimRight(prefix, " -–:|")
	prefix = parentheticalPattern.ReplaceAllString(prefix, "")
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || len(prefix) > 60 {
		return ""
	}
	return prefix
}

// surrounding returns the text near the link: the full line it appears on
// plus the following line, which is where prices and stock notes land.
func surrounding(text, link string) string {
	idx := strings.Index(text, link)
	if idx < 0 {
		return ""
	}
	start := strings.LastIndexByte(text[:idx], '\n') + 1
	end := idx + len(link)
	for lines := 0; lines < 2 && end < len(text); {
		next := strings.IndexByte(text[end:], '\n')
		if next < 0 {
			end = len(text)
			break
		}
		end += next + 1
		lines++
	}
	return strings.TrimRight(text[start:end], "\n")
}

// PriceIn returns the first plausible USD price mentioned in text, or zero.
func PriceIn(text string) float64 {
	return extractPrice(text)
}

// AvailabilityIn classifies stock language in text.
func AvailabilityIn(text string) string {
	return extractAvailability(text)
}

func extractPrice(context string) float64 {
	for _, match := range pricePattern.FindAllStringSubmatch(context, -1) {
		raw := strings.ReplaceAll(match[1], ",", "")
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if price >= minPlausiblePrice && price <= maxPlausiblePrice {
			return price
		}
	}
	return 0
}

func extractRating(context string) float64 {
	for _, pattern := range ratingPatterns {
		match := pattern.FindStringSubmatch(context)
		if match == nil {
			continue
		}
		rating, err := strconv.ParseFloat(match[1], 64)
		if err != nil || rating <= 0 || rating > 5 {
			continue
		}
		return rating
	}
	return 0
}

func extractAvailability(context string) string {
	lower := strings.ToLower(context)
	switch {
	case strings.Contains(lower, "out of stock"), strings.Contains(lower, "sold out"):
		return "out_of_stock"
	case strings.Contains(lower, "backorder"), strings.Contains(lower, "pre-order"):
		return "backorder"
	case strings.Contains(lower, "in stock"), strings.Contains(lower, "available"):
		return "in_stock"
	default:
		return "unknown"
	}
}
