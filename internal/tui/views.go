// internal/tui/views.go
//
// Rendering for each wizard screen. Layout follows a fixed pattern: a header
// with the step breadcrumb, the step's own content, an optional alert line,
// and the journey log tail at the bottom.

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kmi-labs/kiba/internal/gate"
	"github.com/kmi-labs/kiba/internal/session"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)

	crumbActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF"))

	crumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7BC96F"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7BC96F"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F2C94C"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
)

var stepLabels = []string{
	"Intake", "Follow-ups", "Summary", "Variants", "Vendors", "Cart", "RFQ",
}

// View renders the current state to a string.
func (a *App) View() string {
	sections := []string{
		headerStyle.Render("⬡ KIBA · procurement wizard"),
		a.renderBreadcrumb(),
		a.renderStep(),
	}
	if a.busy {
		sections = append(sections, fmt.Sprintf("%s %s... press x to cancel", a.spinner.View(), a.busyLabel))
	}
	if a.alert != "" {
		sections = append(sections, alertStyle.Render("! "+a.alert))
	}
	if a.statusMsg != "" {
		sections = append(sections, statusStyle.Render(a.statusMsg))
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, helpStyle.Render(a.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderBreadcrumb() string {
	parts := make([]string, len(stepLabels))
	for i, label := range stepLabels {
		if session.Step(i) == a.state.Step {
			parts[i] = crumbActiveStyle.Render(label)
		} else {
			parts[i] = crumbStyle.Render(label)
		}
	}
	return strings.Join(parts, crumbStyle.Render(" › "))
}

func (a *App) renderStep() string {
	switch a.state.Step {
	case session.StepIntake:
		return a.renderIntake()
	case session.StepFollowups:
		return a.renderFollowups()
	case session.StepSummary:
		return a.renderSummary()
	case session.StepVariants:
		return a.variantList.View()
	case session.StepVendorSearch:
		return a.renderVendorSearch()
	case session.StepCart:
		return a.renderCart()
	case session.StepRFQ:
		return a.renderRFQ()
	}
	return ""
}

func (a *App) renderIntake() string {
	labels := []string{"Product", "Quantity", "Budget (USD)"}
	lines := []string{"What do you need to procure?"}
	for i, input := range a.intakeInputs {
		label := labels[i]
		if a.intakeFocus == i {
			label = crumbActiveStyle.Render(label)
		} else {
			label = dimStyle.Render(label)
		}
		lines = append(lines, label, input.View())
	}
	scopeLabel := "Scope"
	if a.intakeFocus == len(a.intakeInputs) {
		scopeLabel = crumbActiveStyle.Render(scopeLabel)
	} else {
		scopeLabel = dimStyle.Render(scopeLabel)
	}
	lines = append(lines, scopeLabel, boxStyle.Render(a.intakeScope.View()))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a *App) renderFollowups() string {
	if len(a.state.Followups) == 0 {
		return dimStyle.Render("No clarifying questions.")
	}
	q := a.state.Followups[a.followupIdx]
	lines := []string{
		dimStyle.Render(fmt.Sprintf("Question %d of %d", a.followupIdx+1, len(a.state.Followups))),
		q.Question,
	}
	if len(q.Options) > 0 {
		lines = append(lines, dimStyle.Render("Options: "+strings.Join(q.Options, ", ")))
	}
	lines = append(lines, boxStyle.Render(a.answerInput.View()))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a *App) renderSummary() string {
	summary := a.state.Summary
	if strings.TrimSpace(summary) == "" {
		summary = dimStyle.Render("No summary yet. Press r to generate one.")
	}
	return boxStyle.Render(summary)
}

func (a *App) renderVendorSearch() string {
	sections := []string{a.vendorList.View()}
	if n := len(a.state.SelectedVendorIDs); n > 0 {
		sections = append(sections, statusStyle.Render(fmt.Sprintf("%d vendor(s) selected", n)))
	}
	if p := a.preview; p != nil {
		lines := []string{crumbActiveStyle.Render("PREVIEW · " + p.Title)}
		if p.PriceUSD > 0 {
			price := fmt.Sprintf("$%.2f · %s", p.PriceUSD, p.Availability)
			if !p.PriceMatches {
				price = failStyle.Render(price + " (differs from research)")
			}
			lines = append(lines, price)
		}
		lines = append(lines, dimStyle.Render(firstLines(p.Markdown, 8)))
		sections = append(sections, boxStyle.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderCart() string {
	decision := a.state.GateDecision
	if decision == nil {
		return dimStyle.Render("Press g to evaluate the cart.")
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Readiness: %.0f%%", decision.Readiness))
	for _, item := range decision.Checklist {
		lines = append(lines, fmt.Sprintf("%s %s: %s", checklistIcon(item.Status), item.Label, item.Message))
	}
	lines = append(lines, "")
	lines = append(lines, crumbActiveStyle.Render("Recommendation: "+decision.Recommendation))
	lines = append(lines, dimStyle.Render(decision.Reason))

	if approvers := decision.Result.RequiredApprovers; len(approvers) > 0 {
		lines = append(lines, "Required approvers: "+strings.Join(approvers, ", "))
	}
	for _, exp := range gate.Explain(decision.Result) {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("· %s: %s", exp.Code, exp.Fix)))
	}
	if pr := a.state.PR; pr != nil {
		lines = append(lines, "",
			statusStyle.Render(fmt.Sprintf("PR · %s · %s · $%.2f", pr.Vendor.Name, pr.SpendType, pr.EstimatedCost)))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func checklistIcon(status string) string {
	switch status {
	case "PASS":
		return passStyle.Render("✓")
	case "FAIL":
		return failStyle.Render("✗")
	default:
		return warnStyle.Render("~")
	}
}

func (a *App) renderRFQ() string {
	if result := a.state.RFQResult; result != nil {
		lines := []string{
			statusStyle.Render(fmt.Sprintf("RFQ %s", result.RFQID)),
		}
		if result.Competitive {
			lines = append(lines, dimStyle.Render("Competitive procurement"))
		}
		for _, doc := range result.Documents {
			lines = append(lines, "", crumbActiveStyle.Render(doc.VendorName+" · "+doc.Subject), doc.Body)
		}
		return boxStyle.Render(strings.Join(lines, "\n"))
	}

	labels := []string{"Product", "Scope", "Technical POC"}
	var lines []string
	for i, input := range a.rfqInputs {
		label := labels[i]
		if rfqField(i) == a.rfqFocus {
			label = crumbActiveStyle.Render(label)
		} else {
			label = dimStyle.Render(label)
		}
		lines = append(lines, label, input.View())
	}
	lines = append(lines, "", dimStyle.Render(fmt.Sprintf("Addressed to: %s", a.selectedVendorNames())))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) selectedVendorNames() string {
	var names []string
	for _, v := range a.state.SelectedVendors() {
		names = append(names, v.Name)
	}
	if len(names) == 0 {
		return "no vendors selected"
	}
	return strings.Join(names, ", ")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	head := headerStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := dimStyle.Render(strings.Join(lines, "\n"))
	return boxStyle.Render(head + "\n" + body)
}

func (a *App) helpLine() string {
	common := "enter continue · esc back · ctrl+c quit"
	switch a.state.Step {
	case session.StepIntake:
		return "tab next field · enter continue · ctrl+c quit"
	case session.StepSummary:
		return "r regenerate · " + common
	case session.StepVariants:
		return "↑/↓ choose · r regenerate · " + common
	case session.StepVendorSearch:
		return "space select · p preview page · s search again · " + common
	case session.StepCart:
		return "g re-evaluate · " + common
	case session.StepRFQ:
		return "tab next field · enter submit · esc back · ctrl+c quit"
	}
	return common
}
