// internal/tui/app.go
//
// This is the main TUI for the kiba procurement wizard.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The wizard walks one screen per procurement step: intake, follow-ups,
// summary, spec variants, vendor search, cart with the decision gate, and
// finally RFQ generation. Heavy work happens on the backend; every call runs
// as a tea.Cmd so the UI stays responsive and can be cancelled with "x".

package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kmi-labs/kiba/internal/api"
	"github.com/kmi-labs/kiba/internal/config"
	"github.com/kmi-labs/kiba/internal/gate"
	"github.com/kmi-labs/kiba/internal/logbook"
	"github.com/kmi-labs/kiba/internal/rfq"
	"github.com/kmi-labs/kiba/internal/session"
	"github.com/kmi-labs/kiba/internal/vendorpage"
	"github.com/kmi-labs/kiba/internal/vendors"
)

// Backend is the slice of the API client the wizard needs. Tests swap in a
// fake so Update can be driven without a server.
type Backend interface {
	StartIntake(ctx context.Context, text string) (*api.IntakeResult, error)
	SubmitFollowups(ctx context.Context, sessionID string, answers map[string]string) (*api.IntakeResult, error)
	GenerateSummary(ctx context.Context, sessionID string) (*api.SummaryResult, error)
	GenerateRecommendations(ctx context.Context, sessionID string) (*api.RecommendationsResult, error)
	FindVendors(ctx context.Context, req api.VendorFinderRequest) (*api.VendorFinderResult, error)
	GenerateRFQ(ctx context.Context, req api.RFQRequest) (*api.RFQResult, error)
}

// PageFetcher previews a vendor's product page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string, expectedPrice float64) (*vendorpage.Preview, error)
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithBackend overrides the backend client used by the wizard.
func WithBackend(backend Backend) AppOption {
	return func(a *App) {
		if backend != nil {
			a.backend = backend
		}
	}
}

// WithPageFetcher overrides the vendor page fetcher.
func WithPageFetcher(fetcher PageFetcher) AppOption {
	return func(a *App) {
		if fetcher != nil {
			a.fetcher = fetcher
		}
	}
}

// Messages produced by backend commands.
type (
	intakeDoneMsg       struct{ result *api.IntakeResult }
	followupsDoneMsg    struct{ result *api.IntakeResult }
	summaryDoneMsg      struct{ result *api.SummaryResult }
	variantsDoneMsg     struct{ result *api.RecommendationsResult }
	vendorSearchDoneMsg struct{ result *api.VendorFinderResult }
	previewDoneMsg      struct{ preview *vendorpage.Preview }
	rfqDoneMsg          struct{ result *api.RFQResult }

	requestFailedMsg struct {
		op  string
		err error
	}
)

// rfqField indexes the focusable RFQ form fields.
type rfqField int

const (
	fieldProduct rfqField = iota
	fieldScope
	fieldPOC
)

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config  *config.Config
	backend Backend
	fetcher PageFetcher
	logbook *logbook.Logbook
	repo    *session.Repository
	state   *session.State

	preview *vendorpage.Preview

	// In-flight request handling
	busy      bool
	busyLabel string
	cancel    context.CancelFunc

	// UI components
	spinner      spinner.Model
	intakeInputs [3]textinput.Model
	intakeScope  textarea.Model
	intakeFocus  int
	answerInput  textinput.Model
	followupIdx  int
	variantList  list.Model
	vendorList   list.Model
	rfqInputs    [3]textinput.Model
	rfqFocus     rfqField

	alert     string
	statusMsg string

	width  int
	height int
}

type variantItem struct {
	variant     api.SpecVariant
	recommended bool
}

func (i variantItem) Title() string {
	title := fmt.Sprintf("%s · $%.2f", i.variant.Name, i.variant.EstimatedPriceUSD)
	if i.recommended {
		title += " ★ recommended"
	}
	if !i.variant.MeetsBudget {
		title += " (over budget)"
	}
	return title
}

func (i variantItem) Description() string {
	desc := strings.Join(i.variant.Specs, ", ")
	if i.variant.ValueNote != "" {
		desc += " · " + i.variant.ValueNote
	}
	return desc
}

func (i variantItem) FilterValue() string { return i.variant.Name }

type vendorItem struct {
	vendor   vendors.Vendor
	selected bool
}

func (i vendorItem) Title() string {
	marker := "[ ]"
	if i.selected {
		marker = "[x]"
	}
	title := fmt.Sprintf("%s %s", marker, i.vendor.Name)
	if i.vendor.PriceUSD > 0 {
		title += fmt.Sprintf(" · $%.2f", i.vendor.PriceUSD)
	}
	return title
}

func (i vendorItem) Description() string {
	parts := []string{i.vendor.Availability}
	if i.vendor.Website != "" {
		parts = append(parts, i.vendor.Website)
	}
	if !i.vendor.USBased {
		parts = append(parts, "non-US")
	}
	return strings.Join(parts, " · ")
}

func (i vendorItem) FilterValue() string { return i.vendor.Name }

// NewApp creates the wizard, resuming saved state when a previous run left
// some behind.
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.New(projectDir)
	if err != nil {
		return nil, err
	}
	logPath := filepath.Join(cfg.LogsDir(), "journey.log")
	lb, err := logbook.New(logPath)
	if err != nil {
		lb = nil
	}

	repo := session.NewRepository(cfg.StateDir())
	state, err := repo.Load()
	switch {
	case err == nil:
		lb.Info("Session resumed at %s", state.Step)
	case errors.Is(err, session.ErrStateNotFound):
		state = &session.State{Step: session.StepIntake}
		lb.Step("", state.Step.String())
	default:
		return nil, err
	}

	var intakeInputs [3]textinput.Model
	for i := range intakeInputs {
		intakeInputs[i] = textinput.New()
	}
	intakeInputs[0].Placeholder = "Product name"
	intakeInputs[1].Placeholder = "Quantity"
	intakeInputs[2].Placeholder = "Budget in USD"
	intakeInputs[0].SetValue(state.Intake.Product)
	intakeInputs[1].SetValue(state.Intake.Quantity)
	intakeInputs[2].SetValue(state.Intake.Budget)
	intakeInputs[0].Focus()

	intakeScope := textarea.New()
	intakeScope.Placeholder = "Scope: what it is for, constraints, delivery needs..."
	intakeScope.SetValue(state.Intake.Scope)

	answerInput := textinput.New()
	answerInput.Placeholder = "Your answer"

	variantList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	variantList.Title = "Spec Variants"
	variantList.SetShowStatusBar(false)
	variantList.SetFilteringEnabled(false)

	vendorList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	vendorList.Title = "Vendors"
	vendorList.SetShowStatusBar(false)
	vendorList.SetFilteringEnabled(false)

	var rfqInputs [3]textinput.Model
	for i := range rfqInputs {
		rfqInputs[i] = textinput.New()
	}
	rfqInputs[fieldProduct].Placeholder = "Product name"
	rfqInputs[fieldScope].Placeholder = "Scope brief"
	rfqInputs[fieldPOC].Placeholder = "Technical point of contact"
	rfqInputs[fieldProduct].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	app := &App{
		config:       cfg,
		backend:      api.New(cfg.BaseURL(), cfg.Timeout()),
		fetcher:      vendorpage.NewFetcher(cfg.Timeout()),
		logbook:      lb,
		repo:         repo,
		state:        state,
		spinner:      sp,
		intakeInputs: intakeInputs,
		intakeScope:  intakeScope,
		answerInput:  answerInput,
		variantList:  variantList,
		vendorList:   vendorList,
		rfqInputs:    rfqInputs,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.syncListsFromState()
	return app, nil
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textarea.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.intakeScope.SetWidth(max(20, msg.Width-8))
		a.variantList.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		a.vendorList.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case requestFailedMsg:
		a.finishRequest()
		if errors.Is(msg.err, context.Canceled) {
			a.statusMsg = fmt.Sprintf("%s cancelled", msg.op)
			a.logInfo("%s cancelled by user", msg.op)
			return a, nil
		}
		a.alert = msg.err.Error()
		a.logError("%s failed: %v", msg.op, msg.err)
		return a, nil

	case intakeDoneMsg:
		return a.handleIntakeDone(msg.result)

	case followupsDoneMsg:
		return a.handleFollowupsDone(msg.result)

	case summaryDoneMsg:
		a.finishRequest()
		a.state.Summary = msg.result.Summary
		a.saveState()
		return a, nil

	case variantsDoneMsg:
		return a.handleVariantsDone(msg.result)

	case vendorSearchDoneMsg:
		return a.handleVendorSearchDone(msg.result)

	case previewDoneMsg:
		a.finishRequest()
		a.preview = msg.preview
		if !msg.preview.PriceMatches {
			a.statusMsg = fmt.Sprintf("Page quotes $%.2f, which differs from the researched price", msg.preview.PriceUSD)
		} else {
			a.statusMsg = "Page preview loaded"
		}
		return a, nil

	case rfqDoneMsg:
		a.finishRequest()
		if msg.result.RFQID == "" {
			msg.result.RFQID = rfq.NewID(time.Now())
		}
		a.state.RFQResult = msg.result
		a.statusMsg = fmt.Sprintf("RFQ %s generated for %d vendors", msg.result.RFQID, len(msg.result.Documents))
		a.logInfo("RFQ %s generated", msg.result.RFQID)
		a.saveState()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.updateFocusedComponent(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.saveState()
		return a, tea.Quit

	case "x":
		if a.busy {
			a.cancelRequest()
			return a, nil
		}

	case "esc":
		if a.busy {
			return a, nil
		}
		return a.goBack()

	case "enter":
		if a.busy {
			return a, nil
		}
		return a.handleEnter()
	}

	if a.busy {
		return a, nil
	}
	return a.stepSpecificKey(msg)
}

func (a *App) handleEnter() (tea.Model, tea.Cmd) {
	a.alert = ""
	switch a.state.Step {
	case session.StepIntake:
		return a.submitIntake()
	case session.StepFollowups:
		return a.submitAnswer()
	case session.StepSummary:
		return a.advanceTo(session.StepVariants)
	case session.StepVariants:
		return a.chooseVariant()
	case session.StepVendorSearch:
		return a.advanceToCart()
	case session.StepCart:
		return a.followGateRecommendation()
	case session.StepRFQ:
		return a.submitRFQ()
	}
	return a, nil
}

// stepSpecificKey handles hotkeys that only exist on some screens.
func (a *App) stepSpecificKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch a.state.Step {
	case session.StepSummary:
		if key == "r" {
			return a, a.generateSummaryCmd()
		}
	case session.StepVariants:
		if key == "r" {
			return a, a.generateVariantsCmd()
		}
	case session.StepVendorSearch:
		switch key {
		case " ":
			a.toggleSelectedVendor()
			return a, nil
		case "s":
			return a, a.findVendorsCmd()
		case "p":
			return a, a.previewVendorCmd()
		}
	case session.StepCart:
		if key == "g" {
			a.runGate()
			return a, nil
		}
	}
	return a.updateFocusedComponent(msg)
}

func (a *App) updateFocusedComponent(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.state.Step {
	case session.StepIntake:
		if msg, ok := msg.(tea.KeyMsg); ok && (msg.String() == "tab" || msg.String() == "shift+tab") {
			a.focusIntakeField(msg.String() == "tab")
			return a, nil
		}
		if a.intakeFocus < len(a.intakeInputs) {
			a.intakeInputs[a.intakeFocus], cmd = a.intakeInputs[a.intakeFocus].Update(msg)
		} else {
			a.intakeScope, cmd = a.intakeScope.Update(msg)
		}
	case session.StepFollowups:
		a.answerInput, cmd = a.answerInput.Update(msg)
	case session.StepVariants:
		a.variantList, cmd = a.variantList.Update(msg)
	case session.StepVendorSearch:
		a.vendorList, cmd = a.vendorList.Update(msg)
	case session.StepRFQ:
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "tab" {
			a.focusNextRFQField()
			return a, nil
		}
		a.rfqInputs[a.rfqFocus], cmd = a.rfqInputs[a.rfqFocus].Update(msg)
	}
	return a, cmd
}

// --- Step transitions ---

// focusIntakeField moves intake focus forward or backward across the three
// inputs and the scope textarea.
func (a *App) focusIntakeField(forward bool) {
	if a.intakeFocus < len(a.intakeInputs) {
		a.intakeInputs[a.intakeFocus].Blur()
	} else {
		a.intakeScope.Blur()
	}
	fields := len(a.intakeInputs) + 1
	if forward {
		a.intakeFocus = (a.intakeFocus + 1) % fields
	} else {
		a.intakeFocus = (a.intakeFocus + fields - 1) % fields
	}
	if a.intakeFocus < len(a.intakeInputs) {
		a.intakeInputs[a.intakeFocus].Focus()
	} else {
		a.intakeScope.Focus()
	}
}

func (a *App) submitIntake() (tea.Model, tea.Cmd) {
	intake := session.Intake{
		Product:  a.intakeInputs[0].Value(),
		Quantity: a.intakeInputs[1].Value(),
		Budget:   a.intakeInputs[2].Value(),
		Scope:    a.intakeScope.Value(),
	}
	if intake.Empty() {
		a.alert = "Describe your need before continuing"
		return a, nil
	}
	text := intake.Compose()
	a.state.Intake = intake
	a.state.NeedText = text
	return a, a.callBackend("Intake", func(ctx context.Context) (tea.Msg, error) {
		result, err := a.backend.StartIntake(ctx, text)
		if err != nil {
			return nil, err
		}
		return intakeDoneMsg{result: result}, nil
	})
}

func (a *App) handleIntakeDone(result *api.IntakeResult) (tea.Model, tea.Cmd) {
	a.finishRequest()
	a.state.SessionID = result.SessionID
	a.state.Summary = result.Summary
	a.state.Variants = result.Variants
	a.state.RecommendedIndex = result.RecommendedIndex
	a.state.Followups = result.Followups
	a.state.Answers = map[string]string{}
	a.followupIdx = 0

	if len(result.Followups) > 0 {
		a.answerInput.SetValue("")
		a.answerInput.Focus()
		return a.advanceTo(session.StepFollowups)
	}
	// No clarification needed: the backend answered with recommendations.
	a.syncListsFromState()
	return a.advanceTo(session.StepSummary)
}

func (a *App) submitAnswer() (tea.Model, tea.Cmd) {
	answer := strings.TrimSpace(a.answerInput.Value())
	if answer == "" {
		a.alert = "Answer the question or press esc to go back"
		return a, nil
	}
	question := a.state.Followups[a.followupIdx]
	a.state.Answers[question.ID] = answer
	a.answerInput.SetValue("")

	if a.followupIdx < len(a.state.Followups)-1 {
		a.followupIdx++
		a.saveState()
		return a, nil
	}

	sessionID, answers := a.state.SessionID, a.state.Answers
	return a, a.callBackend("Follow-ups", func(ctx context.Context) (tea.Msg, error) {
		result, err := a.backend.SubmitFollowups(ctx, sessionID, answers)
		if err != nil {
			return nil, err
		}
		return followupsDoneMsg{result: result}, nil
	})
}

func (a *App) handleFollowupsDone(result *api.IntakeResult) (tea.Model, tea.Cmd) {
	a.finishRequest()
	if result.Summary != "" {
		a.state.Summary = result.Summary
	}
	if len(result.Variants) > 0 {
		a.state.Variants = result.Variants
		a.state.RecommendedIndex = result.RecommendedIndex
	}
	a.syncListsFromState()
	return a.advanceTo(session.StepSummary)
}

func (a *App) handleVariantsDone(result *api.RecommendationsResult) (tea.Model, tea.Cmd) {
	a.finishRequest()
	a.state.Variants = result.Variants
	a.state.RecommendedIndex = result.RecommendedIndex
	a.syncListsFromState()
	a.saveState()
	return a, nil
}

func (a *App) chooseVariant() (tea.Model, tea.Cmd) {
	item, ok := a.variantList.SelectedItem().(variantItem)
	if !ok {
		a.alert = "No variant selected"
		return a, nil
	}
	a.state.ChosenVariantID = item.variant.ID
	a.logInfo("Variant · %s chosen", item.variant.Name)
	model, cmd := a.advanceTo(session.StepVendorSearch)
	return model, tea.Batch(cmd, a.findVendorsCmd())
}

func (a *App) findVendorsCmd() tea.Cmd {
	variant := a.state.ChosenVariant()
	if variant == nil {
		a.alert = "Choose a variant first"
		return nil
	}
	delivery := a.config.Project.Delivery
	req := api.VendorFinderRequest{
		Query:      strings.TrimSpace(variant.VendorSearch.QuerySeed),
		City:       delivery.City,
		State:      delivery.State,
		WindowDays: delivery.WindowDays,
		BudgetUSD:  variant.VendorSearch.BudgetHintUSD,
		MaxVendors: a.config.Project.Search.MaxVendors,
		RequireUS:  true,
		SessionID:  a.state.SessionID,
		VariantID:  variant.ID,
		RegionHint: variant.VendorSearch.RegionHint,
	}
	if req.Query == "" {
		req.Query = strings.Join(append([]string{variant.VendorSearch.ModelName}, variant.VendorSearch.SpecFragments...), " ")
	}
	return a.callBackend("Vendor search", func(ctx context.Context) (tea.Msg, error) {
		result, err := a.backend.FindVendors(ctx, req)
		if err != nil {
			return nil, err
		}
		return vendorSearchDoneMsg{result: result}, nil
	})
}

// previewVendorCmd fetches the highlighted vendor's product page so the user
// can verify the parsed price before adding it to the cart.
func (a *App) previewVendorCmd() tea.Cmd {
	item, ok := a.vendorList.SelectedItem().(vendorItem)
	if !ok {
		a.alert = "No vendor highlighted"
		return nil
	}
	if item.vendor.Website == "" {
		a.alert = "Vendor has no website to preview"
		return nil
	}
	website, expected := item.vendor.Website, item.vendor.PriceUSD
	return a.callBackend("Page preview", func(ctx context.Context) (tea.Msg, error) {
		preview, err := a.fetcher.Fetch(ctx, website, expected)
		if err != nil {
			return nil, err
		}
		return previewDoneMsg{preview: preview}, nil
	})
}

func (a *App) handleVendorSearchDone(result *api.VendorFinderResult) (tea.Model, tea.Cmd) {
	a.finishRequest()
	a.preview = nil
	a.state.ResearchText = result.OutputText
	a.state.FoundVendors = vendors.Parse(result.OutputText)
	a.state.SelectedVendorIDs = nil
	if len(a.state.FoundVendors) == 0 {
		a.alert = "No vendors could be extracted from the research output"
	} else {
		a.statusMsg = fmt.Sprintf("Found %d vendors", len(a.state.FoundVendors))
	}
	a.logInfo("Vendor search returned %d candidates", len(a.state.FoundVendors))
	a.syncListsFromState()
	a.saveState()
	return a, nil
}

func (a *App) toggleSelectedVendor() {
	item, ok := a.vendorList.SelectedItem().(vendorItem)
	if !ok {
		return
	}
	a.state.ToggleVendor(item.vendor.ID)
	a.syncListsFromState()
	a.saveState()
}

func (a *App) advanceToCart() (tea.Model, tea.Cmd) {
	selected := a.state.SelectedVendors()
	if len(selected) == 0 {
		a.alert = "Select at least one vendor with space before continuing"
		return a, nil
	}
	model, cmd := a.advanceTo(session.StepCart)
	a.runGate()
	return model, cmd
}

// runGate evaluates the decision gate locally from the current cart.
func (a *App) runGate() {
	input := buildGateContext(a.state)
	decision := gate.Decide(input)
	a.state.GateInput = &input
	a.state.GateDecision = &decision
	a.logInfo("Gate · %s (readiness %.0f%%)", decision.Recommendation, decision.Readiness)
	a.saveState()
}

func (a *App) followGateRecommendation() (tea.Model, tea.Cmd) {
	decision := a.state.GateDecision
	if decision == nil {
		a.runGate()
		decision = a.state.GateDecision
	}
	if decision.Recommendation == gate.ProceedToApprovals {
		pr := rfq.NewPR(*a.state.GateInput, *decision, "")
		a.state.PR = &pr
		a.statusMsg = "PR raised against " + pr.Vendor.Name
		if len(pr.RequiredApprovers) > 0 {
			a.statusMsg += " · approvers: " + strings.Join(pr.RequiredApprovers, ", ")
		}
		a.logInfo("PR raised against %s ($%.2f)", pr.Vendor.Name, pr.EstimatedCost)
		a.saveState()
		return a, nil
	}
	a.prefillRFQForm()
	return a.advanceTo(session.StepRFQ)
}

func (a *App) prefillRFQForm() {
	if v := a.state.ChosenVariant(); v != nil && strings.TrimSpace(a.rfqInputs[fieldProduct].Value()) == "" {
		a.rfqInputs[fieldProduct].SetValue(v.Name)
	}
	if strings.TrimSpace(a.rfqInputs[fieldScope].Value()) == "" {
		a.rfqInputs[fieldScope].SetValue(a.state.Summary)
	}
	a.rfqFocus = fieldProduct
	a.rfqInputs[fieldProduct].Focus()
	a.rfqInputs[fieldScope].Blur()
	a.rfqInputs[fieldPOC].Blur()
}

func (a *App) focusNextRFQField() {
	a.rfqInputs[a.rfqFocus].Blur()
	a.rfqFocus = (a.rfqFocus + 1) % 3
	a.rfqInputs[a.rfqFocus].Focus()
}

func (a *App) submitRFQ() (tea.Model, tea.Cmd) {
	req := rfq.NewPayload(
		a.state.SessionID,
		a.rfqInputs[fieldProduct].Value(),
		a.rfqInputs[fieldScope].Value(),
		a.rfqInputs[fieldPOC].Value(),
		a.state.SelectedVendors(),
	)
	delivery := a.config.Project.Delivery
	req.DeliveryCity = delivery.City
	req.DeliveryState = delivery.State
	req.WindowDays = delivery.WindowDays

	if err := rfq.Validate(req); err != nil {
		a.alert = err.Error()
		return a, nil
	}
	return a, a.callBackend("RFQ generation", func(ctx context.Context) (tea.Msg, error) {
		result, err := a.backend.GenerateRFQ(ctx, req)
		if err != nil {
			return nil, err
		}
		return rfqDoneMsg{result: result}, nil
	})
}

func (a *App) generateSummaryCmd() tea.Cmd {
	sessionID := a.state.SessionID
	return a.callBackend("Summary", func(ctx context.Context) (tea.Msg, error) {
		result, err := a.backend.GenerateSummary(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return summaryDoneMsg{result: result}, nil
	})
}

func (a *App) generateVariantsCmd() tea.Cmd {
	sessionID := a.state.SessionID
	return a.callBackend("Recommendations", func(ctx context.Context) (tea.Msg, error) {
		result, err := a.backend.GenerateRecommendations(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return variantsDoneMsg{result: result}, nil
	})
}

// --- Navigation and plumbing ---

func (a *App) advanceTo(step session.Step) (tea.Model, tea.Cmd) {
	from := a.state.Step
	a.state.Step = step
	a.logbook.Step(from.String(), step.String())
	a.saveState()
	return a, nil
}

func (a *App) goBack() (tea.Model, tea.Cmd) {
	if a.state.Step == session.StepIntake {
		return a, nil
	}
	prev := a.state.Step.Prev()
	// Follow-ups are skipped entirely when the backend asked none.
	if prev == session.StepFollowups && len(a.state.Followups) == 0 {
		prev = session.StepIntake
	}
	return a.advanceTo(prev)
}

// callBackend wraps a backend call in a cancellable command and arms the
// spinner. Only one request runs at a time.
func (a *App) callBackend(label string, call func(ctx context.Context) (tea.Msg, error)) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	a.busy = true
	a.busyLabel = label
	a.cancel = cancel
	a.statusMsg = ""
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		defer cancel()
		msg, err := call(ctx)
		if err != nil {
			return requestFailedMsg{op: label, err: err}
		}
		return msg
	})
}

func (a *App) cancelRequest() {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) finishRequest() {
	a.busy = false
	a.busyLabel = ""
	a.cancel = nil
}

func (a *App) saveState() {
	if a.repo == nil {
		return
	}
	if err := a.repo.Save(a.state); err != nil {
		a.logError("State save failed: %v", err)
	}
}

// syncListsFromState rebuilds the list components from the session state.
func (a *App) syncListsFromState() {
	variantItems := make([]list.Item, len(a.state.Variants))
	for i, v := range a.state.Variants {
		variantItems[i] = variantItem{variant: v, recommended: i == a.state.RecommendedIndex}
	}
	a.variantList.SetItems(variantItems)
	if a.state.RecommendedIndex >= 0 && a.state.RecommendedIndex < len(variantItems) {
		a.variantList.Select(a.state.RecommendedIndex)
	}

	selected := map[string]bool{}
	for _, id := range a.state.SelectedVendorIDs {
		selected[id] = true
	}
	cursor := a.vendorList.Index()
	vendorItems := make([]list.Item, len(a.state.FoundVendors))
	for i, v := range a.state.FoundVendors {
		vendorItems[i] = vendorItem{vendor: v, selected: selected[v.ID]}
	}
	a.vendorList.SetItems(vendorItems)
	if cursor >= 0 && cursor < len(vendorItems) {
		a.vendorList.Select(cursor)
	}
}

// buildGateContext assembles the decision gate input from the wizard state.
// Line items come from the chosen variant; per-vendor pricing comes from the
// parsed research output.
func buildGateContext(state *session.State) gate.Context {
	variant := state.ChosenVariant()

	item := gate.LineItem{
		SKU: "LINE-1",
		Qty: 1,
		UOM: "EA",
	}
	var estimated float64
	if variant != nil {
		item.Desc = strings.TrimSpace(variant.Name + " " + strings.Join(variant.Specs, " "))
		estimated = variant.EstimatedPriceUSD
	}

	ctx := gate.Context{
		Items:   []gate.LineItem{item},
		Pricing: map[string][]gate.LineItem{},
		ProcurementContext: gate.ProcurementContext{
			EstimatedCost: estimated,
			Budgeted:      variant != nil && variant.MeetsBudget,
		},
	}

	selected := state.SelectedVendors()
	for _, v := range selected {
		ctx.SelectedVendors = append(ctx.SelectedVendors, gate.VendorRef{
			ID:      v.ID,
			Name:    v.Name,
			Contact: v.Website,
			Website: v.Website,
		})
		if v.PriceUSD > 0 {
			priced := item
			priced.UnitPrice = v.PriceUSD
			priced.Currency = "USD"
			ctx.Pricing[v.ID] = []gate.LineItem{priced}
		}
	}

	if len(selected) >= 2 {
		ctx.ProcurementContext.ProcurementType = gate.TypeProcCompetitive
	} else {
		ctx.ProcurementContext.ProcurementType = gate.TypeProcSoleSource
		ctx.ProcurementContext.IsSoleSource = true
	}
	return ctx
}

func (a *App) logInfo(format string, args ...any) {
	a.logbook.Info(format, args...)
}

func (a *App) logError(format string, args ...any) {
	a.logbook.Error(format, args...)
}
