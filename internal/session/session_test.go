package session

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kmi-labs/kiba/internal/api"
	"github.com/kmi-labs/kiba/internal/vendors"
)

func TestStepNavigation(t *testing.T) {
	if StepIntake.Prev() != StepIntake {
		t.Error("first step should clamp on Prev")
	}
	if StepRFQ.Next() != StepRFQ {
		t.Error("last step should clamp on Next")
	}
	if StepSummary.Next() != StepVariants {
		t.Errorf("expected variants after summary, got %s", StepSummary.Next())
	}
	if StepCart.Prev() != StepVendorSearch {
		t.Errorf("expected vendor_search before cart, got %s", StepCart.Prev())
	}
	if StepVendorSearch.String() != "vendor_search" {
		t.Errorf("unexpected step name %q", StepVendorSearch)
	}
}

func TestIntakeCompose(t *testing.T) {
	intake := Intake{
		Product:  "Rugged laptops",
		Quantity: "5",
		Budget:   "10000",
		Scope:    "Field engineers need MIL-SPEC machines.",
	}
	text := intake.Compose()
	for _, want := range []string{"Product: Rugged laptops", "Quantity: 5", "Budget (USD): 10000", "Scope: Field"} {
		if !strings.Contains(text, want) {
			t.Errorf("composed text missing %q:\n%s", want, text)
		}
	}

	sparse := Intake{Scope: "  just a scope  "}
	if got := sparse.Compose(); got != "Scope: just a scope" {
		t.Fatalf("expected only filled fields, got %q", got)
	}
	if !(Intake{}).Empty() {
		t.Fatal("zero intake should be empty")
	}
	if sparse.Empty() {
		t.Fatal("filled intake should not be empty")
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "state"))

	state := &State{
		Step:      StepVariants,
		SessionID: "sess-42",
		NeedText:  "five rugged laptops",
		Answers:   map[string]string{"q1": "under $10k"},
		Variants: []api.SpecVariant{
			{ID: "v1", Name: "Baseline", EstimatedPriceUSD: 1899},
		},
		ChosenVariantID: "v1",
	}
	if err := repo.Save(state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if state.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt to be stamped on save")
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Step != StepVariants || loaded.SessionID != "sess-42" {
		t.Fatalf("unexpected loaded state %+v", loaded)
	}
	if loaded.Answers["q1"] != "under $10k" {
		t.Fatalf("answers lost in round trip: %v", loaded.Answers)
	}
	if v := loaded.ChosenVariant(); v == nil || v.Name != "Baseline" {
		t.Fatalf("chosen variant not resolved: %+v", v)
	}
}

func TestLoadMissingStateReturnsSentinel(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "state"))
	if _, err := repo.Load(); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "state"))
	if err := repo.Clear(); err != nil {
		t.Fatalf("clear without state: %v", err)
	}
	if err := repo.Save(&State{Step: StepIntake}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := repo.Load(); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected state gone after clear, got %v", err)
	}
}

func TestVendorSelection(t *testing.T) {
	state := &State{
		FoundVendors: []vendors.Vendor{
			{ID: "vendor_1", Name: "CDW"},
			{ID: "vendor_2", Name: "Insight"},
			{ID: "vendor_3", Name: "Zones"},
		},
	}
	state.ToggleVendor("vendor_2")
	state.ToggleVendor("vendor_1")
	selected := state.SelectedVendors()
	if len(selected) != 2 {
		t.Fatalf("expected 2 selected, got %d", len(selected))
	}
	if selected[0].Name != "Insight" || selected[1].Name != "CDW" {
		t.Fatalf("selection order not preserved: %+v", selected)
	}

	state.ToggleVendor("vendor_2")
	selected = state.SelectedVendors()
	if len(selected) != 1 || selected[0].Name != "CDW" {
		t.Fatalf("toggle off failed: %+v", selected)
	}

	state.ToggleVendor("vendor_missing")
	if len(state.SelectedVendors()) != 1 {
		t.Fatal("unknown vendor id should not resolve")
	}
}
