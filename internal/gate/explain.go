package gate

// fixes maps each reason code to the concrete action that clears it. The
// wording is stable so the cart screen can render it verbatim.
var fixes = map[string]string{
	ReasonMissingPrice:         "Request a formal quote with unit pricing from each selected vendor.",
	ReasonInvalidPrice:         "Correct the unit price; it must be greater than zero.",
	ReasonMissingCurrency:      "Confirm the quote currency with the vendor and record it on each line.",
	ReasonMissingLeadTime:      "Ask each vendor for a committed lead time in days.",
	ReasonMissingDeliveryTerms: "Capture delivery terms (FOB point, shipping responsibility) on the quote.",
	ReasonMissingQuoteValidity: "Ask the vendor how long the quoted pricing remains valid.",
	ReasonInsufficientEvidence: "Add a vendor contact and website so the quote can be verified.",
	ReasonInsufficientSpecs:    "Expand the item description so reviewers can identify the product.",
	ReasonSoleSourceJust:       "Attach a sole source justification with the justified amount.",
	ReasonContractRequired:     "Route the contract for execution before requesting approvals.",
	ReasonUnbudgeted:           "Add the purchase to the spend plan or obtain unbudgeted spend approval.",
}

// Explanation pairs a reason code with its suggested fix.
type Explanation struct {
	Code string `json:"code"`
	Fix  string `json:"fix"`
}

// Explain returns a fix for every reason code in the result, in the order the
// codes were raised. Unknown codes get a generic fallback.
func Explain(result Result) []Explanation {
	seen := map[string]struct{}{}
	var out []Explanation
	for _, code := range result.ReasonCodes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		fix, ok := fixes[code]
		if !ok {
			fix = "Review the flagged item with the procurement team."
		}
		out = append(out, Explanation{Code: code, Fix: fix})
	}
	return out
}
