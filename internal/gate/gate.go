// Package gate implements the G1 decision gate: a rule-based checklist that
// routes a cart of selected vendors to either direct approvals or RFQ
// generation. Evaluation is pure and synchronous; it never calls the backend.
package gate

import (
	"fmt"
	"strings"
)

// Recommendation values produced by Decide.
const (
	ProceedToApprovals = "PROCEED_TO_APPROVALS"
	GenerateRFQs       = "GENERATE_RFQS"
)

// Reason codes attached to a failing evaluation.
const (
	ReasonMissingPrice         = "MISSING_PRICE"
	ReasonInvalidPrice         = "INVALID_PRICE"
	ReasonMissingCurrency      = "MISSING_CURRENCY"
	ReasonMissingLeadTime      = "MISSING_LEAD_TIME"
	ReasonMissingDeliveryTerms = "MISSING_DELIVERY_TERMS"
	ReasonMissingQuoteValidity = "MISSING_QUOTE_VALIDITY"
	ReasonInsufficientEvidence = "INSUFFICIENT_EVIDENCE"
	ReasonInsufficientSpecs    = "INSUFFICIENT_SPECS"
	ReasonSoleSourceJust       = "SOLE_SOURCE_JUST_REQUIRED"
	ReasonContractRequired     = "CONTRACT_REQUIRED"
	ReasonUnbudgeted           = "UNBUDGETED_PROCUREMENT"
)

// Procurement types recognized by the approver matrix.
const (
	TypeCCApprovedSpendPlan = "CC_APPROVED_SPEND_PLAN"
	TypeCCNotInSpendPlan    = "CC_NOT_IN_SPEND_PLAN"
	TypeProcCompetitive     = "PROC_COMPETITIVE"
	TypeProcSoleSource      = "PROC_SOLE_SOURCE"
	TypeBidsAndProposals    = "BIDS_AND_PROPOSALS"
	TypeROMS                = "ROMS"
)

// Approver roles.
const (
	RolePMO       = "PMO"
	RoleEVP       = "EVP"
	RoleFinance   = "Finance"
	RoleContracts = "Contracts"
	RolePresident = "President"
)

// Spend thresholds in USD for the approver matrix.
const (
	ccApprovalThreshold    = 5_000
	presidentThreshold     = 250_000
	ssjContractsThreshold  = 250_000
	romsFinanceThreshold   = 250_000
	romsPresidentThreshold = 500_000
)

// LineItem is one priced line in the cart.
type LineItem struct {
	SKU           string  `json:"sku"`
	Desc          string  `json:"desc"`
	Qty           int     `json:"qty"`
	UOM           string  `json:"uom"`
	UnitPrice     float64 `json:"unitPrice"`
	Currency      string  `json:"currency"`
	LeadDays      int     `json:"leadDays"`
	DeliveryTerms string  `json:"deliveryTerms,omitempty"`
	QuoteValidity string  `json:"quoteValidity,omitempty"`
}

// VendorRef identifies a selected vendor in the cart.
type VendorRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Website string `json:"website,omitempty"`
}

// ProcurementContext carries the business-rule inputs for the evaluation.
type ProcurementContext struct {
	ProcurementType  string  `json:"procurementType"`
	EstimatedCost    float64 `json:"estimatedCost"`
	Budgeted         bool    `json:"budgeted"`
	SpendPlanStatus  string  `json:"spendPlanStatus,omitempty"`
	IsSoleSource     bool    `json:"isSoleSource"`
	SSJAmount        float64 `json:"ssjAmount"`
	ContractRequired bool    `json:"contractRequired"`
	ContractExecuted bool    `json:"contractExecuted"`
}

// Context is the full input to the gate: selected vendors, the cart's line
// items, per-vendor pricing keyed by vendor ID, and the procurement context.
type Context struct {
	SelectedVendors    []VendorRef           `json:"selectedVendors"`
	Items              []LineItem            `json:"items"`
	Pricing            map[string][]LineItem `json:"pricing"`
	ProcurementContext ProcurementContext    `json:"procurementContext"`
}

// Result is the raw evaluation outcome.
type Result struct {
	Passed            bool     `json:"passed"`
	ReasonCodes       []string `json:"reasonCodes"`
	MissingItems      []string `json:"missingItems"`
	Recommendations   []string `json:"recommendations"`
	RequiredApprovers []string `json:"requiredApprovers"`
}

// ChecklistItem is one row of the readiness checklist shown in the cart step.
type ChecklistItem struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Status   string `json:"status"` // PASS, FAIL or WARNING
	Message  string `json:"message,omitempty"`
	Required bool   `json:"required"`
}

// Decision pairs the evaluation with the checklist and routing recommendation.
type Decision struct {
	Recommendation string          `json:"recommendation"`
	Reason         string          `json:"reason"`
	Result         Result          `json:"g1Result"`
	Readiness      float64         `json:"readinessPercentage"`
	Checklist      []ChecklistItem `json:"checklist"`
}

// Evaluate runs the three rule families over the cart and resolves the
// required approvers. Passed is true only when nothing is missing.
func Evaluate(ctx Context) Result {
	var reasonCodes, missingItems, recommendations []string

	codes, missing := checkPricingCompleteness(ctx.SelectedVendors, ctx.Items, ctx.Pricing)
	reasonCodes = append(reasonCodes, codes...)
	missingItems = append(missingItems, missing...)

	codes, missing = checkDocumentSufficiency(ctx.SelectedVendors, ctx.Items)
	reasonCodes = append(reasonCodes, codes...)
	missingItems = append(missingItems, missing...)

	codes, recs := checkBusinessRules(ctx.ProcurementContext)
	reasonCodes = append(reasonCodes, codes...)
	recommendations = append(recommendations, recs...)

	approvers, _ := ResolveApprovers(ctx.ProcurementContext)

	passed := len(reasonCodes) == 0 && len(missingItems) == 0
	if !passed {
		recommendations = append(recommendations, "Consider generating RFQs to gather missing information")
	}

	return Result{
		Passed:            passed,
		ReasonCodes:       reasonCodes,
		MissingItems:      missingItems,
		Recommendations:   recommendations,
		RequiredApprovers: approvers,
	}
}

// Decide evaluates the cart and wraps the result with the checklist,
// readiness percentage and routing recommendation.
func Decide(ctx Context) Decision {
	result := Evaluate(ctx)
	checklist := buildChecklist(result)

	recommendation := GenerateRFQs
	reason := fmt.Sprintf("Missing items: %s", strings.Join(result.MissingItems, ", "))
	if result.Passed {
		recommendation = ProceedToApprovals
		reason = "All requirements met for direct procurement approval"
	}

	return Decision{
		Recommendation: recommendation,
		Reason:         reason,
		Result:         result,
		Readiness:      readinessPercentage(checklist),
		Checklist:      checklist,
	}
}

func checkPricingCompleteness(vendors []VendorRef, items []LineItem, pricing map[string][]LineItem) (codes, missing []string) {
	for _, vendor := range vendors {
		vendorPricing := pricing[vendor.ID]
		if len(vendorPricing) == 0 {
			codes = append(codes, ReasonMissingPrice)
			missing = append(missing, fmt.Sprintf("No pricing available for %s", vendor.Name))
			continue
		}

		for _, item := range items {
			priced, ok := findBySKU(vendorPricing, item.SKU)
			if !ok {
				codes = append(codes, ReasonMissingPrice)
				missing = append(missing, fmt.Sprintf("Missing price for %s from %s", item.Desc, vendor.Name))
				continue
			}
			if priced.UnitPrice <= 0 {
				codes = append(codes, ReasonInvalidPrice)
				missing = append(missing, fmt.Sprintf("Invalid unit price for %s from %s", item.Desc, vendor.Name))
			}
			if strings.TrimSpace(priced.Currency) == "" {
				codes = append(codes, ReasonMissingCurrency)
				missing = append(missing, fmt.Sprintf("Missing currency for %s from %s", item.Desc, vendor.Name))
			}
			if priced.LeadDays <= 0 {
				codes = append(codes, ReasonMissingLeadTime)
				missing = append(missing, fmt.Sprintf("Missing lead time for %s from %s", item.Desc, vendor.Name))
			}
			if strings.TrimSpace(priced.DeliveryTerms) == "" {
				codes = append(codes, ReasonMissingDeliveryTerms)
				missing = append(missing, fmt.Sprintf("Missing delivery terms for %s from %s", item.Desc, vendor.Name))
			}
			if strings.TrimSpace(priced.QuoteValidity) == "" {
				codes = append(codes, ReasonMissingQuoteValidity)
				missing = append(missing, fmt.Sprintf("Missing quote validity for %s from %s", item.Desc, vendor.Name))
			}
		}
	}
	return codes, missing
}

func checkDocumentSufficiency(vendors []VendorRef, items []LineItem) (codes, missing []string) {
	hasQuoteEvidence := false
	for _, v := range vendors {
		if strings.TrimSpace(v.Contact) != "" && strings.TrimSpace(v.Website) != "" {
			hasQuoteEvidence = true
			break
		}
	}
	if !hasQuoteEvidence {
		codes = append(codes, ReasonInsufficientEvidence)
		missing = append(missing, "No quote evidence or vendor contact information")
	}

	hasSpecs := false
	for _, item := range items {
		if len(item.Desc) > 10 {
			hasSpecs = true
			break
		}
	}
	if !hasSpecs {
		codes = append(codes, ReasonInsufficientSpecs)
		missing = append(missing, "Insufficient product specifications")
	}
	return codes, missing
}

func checkBusinessRules(pc ProcurementContext) (codes, recs []string) {
	if pc.IsSoleSource && pc.SSJAmount == 0 {
		codes = append(codes, ReasonSoleSourceJust)
		recs = append(recs, "Sole source justification required for non-competitive procurement")
	}
	if pc.ContractRequired && !pc.ContractExecuted {
		codes = append(codes, ReasonContractRequired)
		recs = append(recs, "Contract execution required before proceeding")
	}
	if !pc.Budgeted && pc.SpendPlanStatus == "NOT_IN_PLAN" {
		codes = append(codes, ReasonUnbudgeted)
		recs = append(recs, "Unbudgeted procurement requires additional approvals")
	}
	return codes, recs
}

// ResolveApprovers applies the approval matrix to the procurement context and
// returns the required roles plus the reason for each.
func ResolveApprovers(pc ProcurementContext) ([]string, []string) {
	required := map[string]struct{}{}
	var reasons []string
	add := func(role, reason string) {
		if _, ok := required[role]; !ok {
			required[role] = struct{}{}
		}
		reasons = append(reasons, reason)
	}

	switch pc.ProcurementType {
	case TypeCCApprovedSpendPlan:
		return nil, []string{"No approvals required: CC purchase from approved spend plan"}

	case TypeCCNotInSpendPlan:
		if pc.EstimatedCost > ccApprovalThreshold {
			add(RolePMO, "PMO: CC > $5k")
			add(RoleFinance, "Finance: CC > $5k")
		}

	case TypeProcCompetitive:
		add(RolePMO, "PMO: Competitive procurement")
		add(RoleEVP, "EVP: Policy")
		add(RoleFinance, "Finance: Policy")
		if pc.ContractExecuted {
			add(RoleContracts, "Contracts: Executed by a contract")
		}
		if pc.EstimatedCost > presidentThreshold {
			add(RolePresident, "President: > $250k")
		}

	case TypeProcSoleSource:
		add(RolePMO, "PMO: Sole source")
		add(RoleEVP, "EVP: Policy")
		add(RoleFinance, "Finance: Policy")
		if pc.ContractExecuted || pc.SSJAmount > ssjContractsThreshold {
			add(RoleContracts, "Contracts: Contract/SSJ > $250k")
		}
		if pc.EstimatedCost > presidentThreshold {
			add(RolePresident, "President: > $250k")
		}

	case TypeBidsAndProposals:
		add(RolePMO, "PMO: B&P baseline")
		add(RoleEVP, "EVP: B&P baseline")
		add(RoleFinance, "Finance: B&P baseline")
		if pc.EstimatedCost > presidentThreshold {
			add(RolePresident, "President: > $250k")
		}

	case TypeROMS:
		add(RolePMO, "PMO: ROMS")
		add(RoleEVP, "EVP: ROMS")
		if pc.EstimatedCost > romsFinanceThreshold {
			add(RoleFinance, "Finance: ROMS > $250k")
		}
		if pc.EstimatedCost > romsPresidentThreshold {
			add(RolePresident, "President: ROMS > $500k")
		}
	}

	// Stable role order for display and tests.
	order := []string{RolePMO, RoleEVP, RoleFinance, RoleContracts, RolePresident}
	var roles []string
	for _, role := range order {
		if _, ok := required[role]; ok {
			roles = append(roles, role)
		}
	}
	return roles, reasons
}

var pricingCodes = []string{
	ReasonMissingPrice, ReasonInvalidPrice, ReasonMissingCurrency,
	ReasonMissingLeadTime, ReasonMissingDeliveryTerms, ReasonMissingQuoteValidity,
}

var documentCodes = []string{ReasonInsufficientEvidence, ReasonInsufficientSpecs}

var businessCodes = []string{ReasonSoleSourceJust, ReasonContractRequired, ReasonUnbudgeted}

func buildChecklist(result Result) []ChecklistItem {
	pricingOK := !containsAny(result.ReasonCodes, pricingCodes)
	docsOK := !containsAny(result.ReasonCodes, documentCodes)
	businessOK := !containsAny(result.ReasonCodes, businessCodes)
	approversResolved := len(result.RequiredApprovers) > 0

	checklist := []ChecklistItem{
		{
			ID:       "pricing",
			Label:    "Complete pricing for all vendors",
			Status:   passFail(pricingOK),
			Message:  pick(pricingOK, "All vendors have complete pricing", "Missing pricing information"),
			Required: true,
		},
		{
			ID:       "documents",
			Label:    "Sufficient supporting documents",
			Status:   passFail(docsOK),
			Message:  pick(docsOK, "All required documents available", "Missing supporting documents"),
			Required: true,
		},
		{
			ID:       "business_rules",
			Label:    "Business rules compliance",
			Status:   passFail(businessOK),
			Message:  pick(businessOK, "All business rules satisfied", "Business rule violations detected"),
			Required: true,
		},
	}

	approverItem := ChecklistItem{
		ID:       "approvers",
		Label:    "Approver roster resolved",
		Status:   "WARNING",
		Message:  "Approver resolution pending",
		Required: true,
	}
	if approversResolved {
		approverItem.Status = "PASS"
		approverItem.Message = fmt.Sprintf("%d approvers identified", len(result.RequiredApprovers))
	}
	return append(checklist, approverItem)
}

func readinessPercentage(checklist []ChecklistItem) float64 {
	var required, passed int
	for _, item := range checklist {
		if !item.Required {
			continue
		}
		required++
		if item.Status == "PASS" {
			passed++
		}
	}
	if required == 0 {
		return 0
	}
	return float64(passed) / float64(required) * 100
}

func findBySKU(items []LineItem, sku string) (LineItem, bool) {
	for _, item := range items {
		if item.SKU == sku {
			return item, true
		}
	}
	return LineItem{}, false
}

func containsAny(values, targets []string) bool {
	for _, v := range values {
		for _, t := range targets {
			if v == t {
				return true
			}
		}
	}
	return false
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func pick(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
