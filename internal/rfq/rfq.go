// Package rfq assembles and validates request-for-quote payloads before they
// are sent to the backend for rendering. Validation runs client-side so a
// user sees every missing field at once instead of one 422 at a time.
package rfq

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kmi-labs/kiba/internal/api"
	"github.com/kmi-labs/kiba/internal/vendors"
)

const (
	// MinVendors and MaxVendors bound how many vendors one RFQ can address.
	MinVendors = 1
	MaxVendors = 3

	// DefaultValidityDays is how long quotes are requested to stay valid.
	DefaultValidityDays = 30
)

// ValidationError reports every problem with a payload in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "rfq: invalid payload: " + strings.Join(e.Problems, "; ")
}

// NewPayload builds an RFQ request from the wizard's selections, filling in
// delivery defaults and the validity window.
func NewPayload(sessionID, productName, scopeBrief, technicalPOC string, selected []vendors.Vendor) api.RFQRequest {
	req := api.RFQRequest{
		SessionID:    sessionID,
		ProductName:  strings.TrimSpace(productName),
		ScopeBrief:   strings.TrimSpace(scopeBrief),
		TechnicalPOC: strings.TrimSpace(technicalPOC),
		ValidityDays: DefaultValidityDays,
	}
	for _, v := range selected {
		req.SelectedVendors = append(req.SelectedVendors, api.RFQVendor{
			ID:      v.ID,
			Name:    v.Name,
			Website: v.Website,
		})
	}
	return req
}

// Validate checks a payload against the submission rules. It returns a
// *ValidationError listing every violation, or nil when the payload is ready.
func Validate(req api.RFQRequest) error {
	var problems []string

	n := len(req.SelectedVendors)
	if n < MinVendors || n > MaxVendors {
		problems = append(problems, fmt.Sprintf("select between %d and %d vendors (have %d)", MinVendors, MaxVendors, n))
	}
	for i, v := range req.SelectedVendors {
		if strings.TrimSpace(v.Name) == "" {
			problems = append(problems, fmt.Sprintf("vendor %d is missing a name", i+1))
		}
	}
	if strings.TrimSpace(req.ProductName) == "" {
		problems = append(problems, "product_name is required")
	}
	if strings.TrimSpace(req.ScopeBrief) == "" {
		problems = append(problems, "scope_brief is required")
	}
	if strings.TrimSpace(req.TechnicalPOC) == "" {
		problems = append(problems, "technical_poc is required")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Competitive reports whether the payload addresses enough vendors to count
// as a competitive procurement.
func Competitive(req api.RFQRequest) bool {
	return len(req.SelectedVendors) >= 2
}

// NewID mints an RFQ identifier: a timestamp for humans plus a uuid fragment
// so two RFQs generated in the same second stay distinct.
func NewID(now time.Time) string {
	stamp := now.UTC().Format("20060102-150405")
	frag := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("RFQ-%s-%s", stamp, frag)
}
