// Package session holds the wizard's client-side state and persists it under
// .kiba/state so an interrupted run can be resumed.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kmi-labs/kiba/internal/api"
	"github.com/kmi-labs/kiba/internal/gate"
	"github.com/kmi-labs/kiba/internal/rfq"
	"github.com/kmi-labs/kiba/internal/vendors"
)

// Step identifies one screen of the wizard.
type Step int

const (
	StepIntake Step = iota
	StepFollowups
	StepSummary
	StepVariants
	StepVendorSearch
	StepCart
	StepRFQ
)

var stepNames = map[Step]string{
	StepIntake:       "intake",
	StepFollowups:    "followups",
	StepSummary:      "summary",
	StepVariants:     "variants",
	StepVendorSearch: "vendor_search",
	StepCart:         "cart",
	StepRFQ:          "rfq",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Next returns the following step, clamped at the last one.
func (s Step) Next() Step {
	if s >= StepRFQ {
		return StepRFQ
	}
	return s + 1
}

// Prev returns the preceding step, clamped at the first one.
func (s Step) Prev() Step {
	if s <= StepIntake {
		return StepIntake
	}
	return s - 1
}

// Intake holds the raw form fields from the first step. Quantity and budget
// stay strings; the backend interprets the composed text.
type Intake struct {
	Product  string `json:"product,omitempty"`
	Quantity string `json:"quantity,omitempty"`
	Budget   string `json:"budget,omitempty"`
	Scope    string `json:"scope,omitempty"`
}

// Compose renders the intake as the free-text need sent to the backend.
func (i Intake) Compose() string {
	var b strings.Builder
	write := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}
	write("Product", i.Product)
	write("Quantity", i.Quantity)
	write("Budget (USD)", i.Budget)
	write("Scope", i.Scope)
	return strings.TrimSpace(b.String())
}

// Empty reports whether no field has been filled in.
func (i Intake) Empty() bool {
	return i.Compose() == ""
}

// State is everything the wizard has gathered so far. It is what gets
// serialized to disk between runs.
type State struct {
	Step              Step                   `json:"step"`
	SessionID         string                 `json:"session_id,omitempty"`
	Intake            Intake                 `json:"intake"`
	NeedText          string                 `json:"need_text,omitempty"`
	Followups         []api.FollowupQuestion `json:"followups,omitempty"`
	Answers           map[string]string      `json:"answers,omitempty"`
	Summary           string                 `json:"summary,omitempty"`
	Variants          []api.SpecVariant      `json:"variants,omitempty"`
	RecommendedIndex  int                    `json:"recommended_index"`
	ChosenVariantID   string                 `json:"chosen_variant_id,omitempty"`
	ResearchText      string                 `json:"research_text,omitempty"`
	FoundVendors      []vendors.Vendor       `json:"found_vendors,omitempty"`
	SelectedVendorIDs []string               `json:"selected_vendor_ids,omitempty"`
	GateInput         *gate.Context          `json:"gate_input,omitempty"`
	GateDecision      *gate.Decision         `json:"gate_decision,omitempty"`
	PR                *rfq.PRPayload         `json:"pr,omitempty"`
	RFQResult         *api.RFQResult         `json:"rfq_result,omitempty"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// ChosenVariant returns the variant the user picked, or nil.
func (s *State) ChosenVariant() *api.SpecVariant {
	for i := range s.Variants {
		if s.Variants[i].ID == s.ChosenVariantID {
			return &s.Variants[i]
		}
	}
	return nil
}

// SelectedVendors resolves the selected IDs against the parsed vendor list,
// preserving selection order.
func (s *State) SelectedVendors() []vendors.Vendor {
	byID := make(map[string]vendors.Vendor, len(s.FoundVendors))
	for _, v := range s.FoundVendors {
		byID[v.ID] = v
	}
	var out []vendors.Vendor
	for _, id := range s.SelectedVendorIDs {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// ToggleVendor adds or removes a vendor from the selection.
func (s *State) ToggleVendor(id string) {
	for i, existing := range s.SelectedVendorIDs {
		if existing == id {
			s.SelectedVendorIDs = append(s.SelectedVendorIDs[:i], s.SelectedVendorIDs[i+1:]...)
			return
		}
	}
	s.SelectedVendorIDs = append(s.SelectedVendorIDs, id)
}

// ErrStateNotFound is returned by Load when no saved wizard state exists.
var ErrStateNotFound = errors.New("session: no saved state")

const stateFileName = "wizard.json"

// Repository persists wizard state as JSON in a state directory.
type Repository struct {
	dir string
}

// NewRepository creates a repository rooted at the given state directory.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Path returns the file the state is saved to.
func (r *Repository) Path() string {
	return filepath.Join(r.dir, stateFileName)
}

// Save writes the state to disk, stamping UpdatedAt.
func (r *Repository) Save(state *State) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode state: %w", err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("session: create state dir: %w", err)
	}
	if err := os.WriteFile(r.Path(), data, 0o644); err != nil {
		return fmt.Errorf("session: write state: %w", err)
	}
	return nil
}

// Load reads the saved state. Returns ErrStateNotFound when none exists.
func (r *Repository) Load() (*State, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("session: read state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("session: parse state: %w", err)
	}
	return &state, nil
}

// Clear removes any saved state. Missing state is not an error.
func (r *Repository) Clear() error {
	if err := os.Remove(r.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: clear state: %w", err)
	}
	return nil
}
