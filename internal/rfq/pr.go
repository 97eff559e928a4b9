package rfq

import (
	"strings"

	"github.com/kmi-labs/kiba/internal/gate"
)

// Defaults stamped on purchase requisitions raised by the wizard.
const (
	DefaultProcurementKind = "Purchase Order"
	DefaultProgram         = "Applied Research"
)

// PRVendor identifies the vendor a requisition is raised against.
type PRVendor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
}

// PRPayload is the purchase requisition raised when the decision gate passes
// and the cart goes straight to approvals.
type PRPayload struct {
	ProcurementKind   string          `json:"procurementKind"`
	Program           string          `json:"program"`
	ProjectKeys       []string        `json:"projectKeys,omitempty"`
	SpendType         string          `json:"spendType"`
	Budgeted          bool            `json:"budgeted"`
	EstimatedCost     float64         `json:"estimatedCost"`
	Competitive       bool            `json:"competitive"`
	Justification     string          `json:"justification,omitempty"`
	Vendor            PRVendor        `json:"vendor"`
	LineItems         []gate.LineItem `json:"lineItems"`
	RequiredApprovers []string        `json:"requiredApprovers"`
}

// NewPR assembles a purchase requisition from a passed gate decision. The
// vendor is the first selected one; its priced line items carry over.
func NewPR(input gate.Context, decision gate.Decision, justification string) PRPayload {
	pr := PRPayload{
		ProcurementKind:   DefaultProcurementKind,
		Program:           DefaultProgram,
		SpendType:         input.ProcurementContext.ProcurementType,
		Budgeted:          input.ProcurementContext.Budgeted,
		EstimatedCost:     input.ProcurementContext.EstimatedCost,
		Competitive:       len(input.SelectedVendors) >= 2,
		Justification:     strings.TrimSpace(justification),
		RequiredApprovers: decision.Result.RequiredApprovers,
	}
	if len(input.SelectedVendors) > 0 {
		v := input.SelectedVendors[0]
		pr.Vendor = PRVendor{ID: v.ID, Name: v.Name, Website: v.Website}
		pr.LineItems = input.Pricing[v.ID]
	}
	if len(pr.LineItems) == 0 {
		pr.LineItems = input.Items
	}
	return pr
}
