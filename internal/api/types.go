package api

// Types mirror the JSON bodies exchanged with the procurement backend. Field
// names follow the wire format, which uses snake_case throughout.

// FollowupQuestion is a clarifying question the backend wants answered before
// it can produce useful recommendations.
type FollowupQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Kind     string   `json:"kind,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// VendorSearch is the query scaffold attached to each variant so the vendor
// finder can be launched without re-deriving search terms.
type VendorSearch struct {
	ModelName     string   `json:"model_name"`
	SpecFragments []string `json:"spec_fragments"`
	RegionHint    string   `json:"region_hint,omitempty"`
	BudgetHintUSD float64  `json:"budget_hint_usd,omitempty"`
	QuerySeed     string   `json:"query_seed,omitempty"`
}

// SpecVariant is one recommended product configuration.
type SpecVariant struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Specs             []string     `json:"specs"`
	EstimatedPriceUSD float64      `json:"estimated_price_usd"`
	MeetsBudget       bool         `json:"meets_budget"`
	ValueNote         string       `json:"value_note,omitempty"`
	Rationale         string       `json:"rationale,omitempty"`
	Score             float64      `json:"score"`
	VendorSearch      VendorSearch `json:"vendor_search"`
}

// IntakeRequest starts a new procurement session from a free-text need.
type IntakeRequest struct {
	Text string `json:"text"`
}

// IntakeResult is the backend's first response: a session plus either
// follow-up questions or immediate recommendations.
type IntakeResult struct {
	SessionID        string             `json:"session_id"`
	Followups        []FollowupQuestion `json:"followups,omitempty"`
	Summary          string             `json:"summary,omitempty"`
	Variants         []SpecVariant      `json:"variants,omitempty"`
	RecommendedIndex int                `json:"recommended_index"`
}

// FollowupsRequest submits answers to the clarifying questions.
type FollowupsRequest struct {
	SessionID string            `json:"session_id"`
	Answers   map[string]string `json:"answers"`
}

// AnswersPatch updates stored answers on an existing session.
type AnswersPatch struct {
	Answers map[string]string `json:"answers"`
}

// SessionState is the server-side view of a procurement session.
type SessionState struct {
	SessionID        string             `json:"session_id"`
	OriginalText     string             `json:"original_text,omitempty"`
	Answers          map[string]string  `json:"answers,omitempty"`
	Followups        []FollowupQuestion `json:"followups,omitempty"`
	Summary          string             `json:"summary,omitempty"`
	Variants         []SpecVariant      `json:"variants,omitempty"`
	RecommendedIndex int                `json:"recommended_index"`
}

// SummaryResult holds the generated requirements summary.
type SummaryResult struct {
	Summary string `json:"summary"`
}

// RecommendationsResult holds generated spec variants.
type RecommendationsResult struct {
	Variants         []SpecVariant `json:"variants"`
	RecommendedIndex int           `json:"recommended_index"`
}

// SuggestVendorsRequest asks for a vendor shortlist for a chosen variant.
type SuggestVendorsRequest struct {
	SessionID string       `json:"session_id"`
	VariantID string       `json:"variant_id"`
	Search    VendorSearch `json:"search"`
}

// SuggestedVendor is one structured vendor suggestion.
type SuggestedVendor struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	Note    string `json:"note,omitempty"`
}

// SuggestVendorsResult wraps the suggested shortlist.
type SuggestVendorsResult struct {
	Vendors []SuggestedVendor `json:"vendors"`
}

// VendorFinderRequest runs the research-style vendor search. The backend
// answers with prose that the client parses locally.
type VendorFinderRequest struct {
	Query        string  `json:"query"`
	City         string  `json:"city,omitempty"`
	State        string  `json:"state,omitempty"`
	WindowDays   int     `json:"window_days,omitempty"`
	BudgetUSD    float64 `json:"budget_usd,omitempty"`
	MaxVendors   int     `json:"max_vendors,omitempty"`
	RequireUS    bool    `json:"require_us,omitempty"`
	SessionID    string  `json:"session_id,omitempty"`
	VariantID    string  `json:"variant_id,omitempty"`
	RegionHint   string  `json:"region_hint,omitempty"`
	QuerySeed    string  `json:"query_seed,omitempty"`
	ExtraContext string  `json:"extra_context,omitempty"`
}

// VendorFinderResult carries the prose research output plus any links the
// backend already validated.
type VendorFinderResult struct {
	OutputText     string   `json:"output_text"`
	ValidatedLinks []string `json:"validated_links,omitempty"`
}

// RFQVendor is a vendor addressed by a request for quote.
type RFQVendor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	Website string `json:"website,omitempty"`
}

// RFQLineItem is one line of the RFQ scope.
type RFQLineItem struct {
	Description string `json:"description"`
	Qty         int    `json:"qty"`
	UOM         string `json:"uom"`
}

// RFQRequest asks the backend to render RFQ documents for selected vendors.
type RFQRequest struct {
	SessionID       string        `json:"session_id,omitempty"`
	ProductName     string        `json:"product_name"`
	ScopeBrief      string        `json:"scope_brief"`
	TechnicalPOC    string        `json:"technical_poc"`
	SelectedVendors []RFQVendor   `json:"selected_vendors"`
	LineItems       []RFQLineItem `json:"line_items,omitempty"`
	DeliveryCity    string        `json:"delivery_city,omitempty"`
	DeliveryState   string        `json:"delivery_state,omitempty"`
	WindowDays      int           `json:"window_days,omitempty"`
	ValidityDays    int           `json:"validity_days,omitempty"`
}

// RFQDocument is one rendered RFQ addressed to a single vendor.
type RFQDocument struct {
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

// RFQResult is the rendered RFQ package.
type RFQResult struct {
	RFQID       string        `json:"rfq_id"`
	Competitive bool          `json:"competitive"`
	Documents   []RFQDocument `json:"documents"`
}
