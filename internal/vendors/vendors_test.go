package vendors

import (
	"strings"
	"testing"
)

const sampleProse = `Here are US vendors that can deliver rugged laptops to Wichita, KS within 30 days:

1. CDW - https://www.cdw.com/product/rugged-laptop
   Price: $1,899.00 per unit, rated 4.5/5 by enterprise buyers. In stock.

2. B&H Photo Video - https://www.bhphotovideo.com/c/product/rugged
   Price: $2,049.99, 4.7 out of 5. Currently on backorder.

3. Granite Supply (Denver, CO) - https://granitesupply.example.com/catalog
   Quote available on request. Out of stock until next quarter.
`

func TestParseExtractsVendors(t *testing.T) {
	vendors := Parse(sampleProse)
	if len(vendors) != 3 {
		t.Fatalf("expected 3 vendors, got %d", len(vendors))
	}

	first := vendors[0]
	if first.ID != "vendor_1" {
		t.Errorf("expected vendor_1, got %s", first.ID)
	}
	if first.Name != "CDW" {
		t.Errorf("expected known-domain name CDW, got %s", first.Name)
	}
	if first.PriceUSD != 1899.00 {
		t.Errorf("expected price 1899.00, got %v", first.PriceUSD)
	}
	if first.Rating != 4.5 {
		t.Errorf("expected rating 4.5, got %v", first.Rating)
	}
	if first.Availability != "in_stock" {
		t.Errorf("expected in_stock, got %s", first.Availability)
	}
	if first.Score != 0.9 {
		t.Errorf("expected score 0.9, got %v", first.Score)
	}

	second := vendors[1]
	if second.Name != "B&H Photo Video" {
		t.Errorf("expected B&H Photo Video, got %s", second.Name)
	}
	if second.Availability != "backorder" {
		t.Errorf("expected backorder, got %s", second.Availability)
	}
	if second.Score != 0.85 {
		t.Errorf("expected score 0.85, got %v", second.Score)
	}

	third := vendors[2]
	if third.Name != "Granite Supply" {
		t.Errorf("expected name from surrounding text, got %s", third.Name)
	}
	if third.Availability != "out_of_stock" {
		t.Errorf("expected out_of_stock, got %s", third.Availability)
	}
	if third.PriceUSD != 0 {
		t.Errorf("expected no price, got %v", third.PriceUSD)
	}
}

func TestParseRejectsShortInput(t *testing.T) {
	for _, input := range []string{"", "   ", "no vendors found"} {
		if got := Parse(input); got != nil {
			t.Errorf("expected nil for %q, got %v", input, got)
		}
	}
}

func TestParseDeduplicatesDomains(t *testing.T) {
	prose := strings.Repeat("Buy from https://www.cdw.com/a and https://cdw.com/b today. ", 3)
	vendors := Parse(prose)
	if len(vendors) != 1 {
		t.Fatalf("expected one vendor after dedup, got %d", len(vendors))
	}
}

func TestParseCapsAtTenVendors(t *testing.T) {
	var b strings.Builder
	b.WriteString("Vendors able to fulfill this order across the United States:\n")
	for i := 0; i < 15; i++ {
		b.WriteString("- https://vendor")
		b.WriteByte(byte('a' + i))
		b.WriteString(".com/catalog $500.00 in stock\n")
	}
	vendors := Parse(b.String())
	if len(vendors) != 10 {
		t.Fatalf("expected cap of 10 vendors, got %d", len(vendors))
	}
	if vendors[9].Score < 0.449 || vendors[9].Score > 0.451 {
		t.Fatalf("expected descending score 0.45 for last vendor, got %v", vendors[9].Score)
	}
}

func TestParseIgnoresImplausiblePrices(t *testing.T) {
	prose := `Vendor pricing summary for the requested configuration follows below.
https://www.newegg.com/item costs $950,000.00 for the bundle but $1,250.00 per unit.`
	vendors := Parse(prose)
	if len(vendors) != 1 {
		t.Fatalf("expected one vendor, got %d", len(vendors))
	}
	if vendors[0].PriceUSD != 1250.00 {
		t.Fatalf("expected first plausible price 1250.00, got %v", vendors[0].PriceUSD)
	}
}

func TestVendorNameFallsBackToDomain(t *testing.T) {
	prose := `Vendors able to fulfill this order across the United States today:
- https://vendorpro.example.net/catalog listing, $450.00, currently available`
	parsed := Parse(prose)
	if len(parsed) != 1 {
		t.Fatalf("expected one vendor, got %d", len(parsed))
	}
	if parsed[0].Name != "Vendorpro" {
		t.Fatalf("expected domain-derived name, got %q", parsed[0].Name)
	}
	if parsed[0].Availability != "in_stock" {
		t.Fatalf("expected available to map to in_stock, got %q", parsed[0].Availability)
	}
}

func TestIsUSVendor(t *testing.T) {
	cases := []struct {
		website string
		context string
		want    bool
	}{
		{"https://vendor.ca/shop", "ships from Toronto", false},
		{"https://vendor.co.uk/shop", "ships from London", false},
		{"https://vendor.de/shop", "", false},
		{"https://vendor.fr/shop", "12 Rue de Rivoli, Paris, France", false},
		{"https://vendor.com/shop", "Warehouse in Dallas, TX with same-day pickup", true},
		{"https://vendor.us/shop", "Wichita KS distribution center", true},
		{"https://vendor.com/shop", "serving customers across the United States", true},
		{"https://vendor.com/shop", "Ships from Tokyo, Japan", false},
		{"https://vendor.com/shop", "no location given", false},
	}
	for _, tc := range cases {
		if got := IsUSVendor(tc.website, tc.context); got != tc.want {
			t.Errorf("IsUSVendor(%q, %q) = %v, want %v", tc.website, tc.context, got, tc.want)
		}
	}
}
