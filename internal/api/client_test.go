package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 5*time.Second)
}

func TestHealth(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if gotPath != "/health" {
		t.Fatalf("expected /health, got %s", gotPath)
	}
}

func TestStartIntakeRoundTrip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/intake_recommendations" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		var req IntakeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "need 5 rugged laptops" {
			t.Errorf("unexpected text %q", req.Text)
		}
		json.NewEncoder(w).Encode(IntakeResult{
			SessionID: "sess-123",
			Followups: []FollowupQuestion{{ID: "q1", Question: "What budget?"}},
		})
	})

	result, err := client.StartIntake(context.Background(), "need 5 rugged laptops")
	if err != nil {
		t.Fatalf("start intake: %v", err)
	}
	if result.SessionID != "sess-123" {
		t.Fatalf("unexpected session id %q", result.SessionID)
	}
	if len(result.Followups) != 1 || result.Followups[0].ID != "q1" {
		t.Fatalf("unexpected followups %+v", result.Followups)
	}
}

func TestSessionPaths(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		json.NewEncoder(w).Encode(SessionState{SessionID: "s1"})
	})

	ctx := context.Background()
	if _, err := client.GetSession(ctx, "s1"); err != nil {
		t.Fatalf("get session: %v", err)
	}
	if _, err := client.PatchAnswers(ctx, "s1", map[string]string{"q1": "a"}); err != nil {
		t.Fatalf("patch answers: %v", err)
	}
	if _, err := client.Regenerate(ctx, "s1"); err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	want := []string{
		"GET /api/session/s1",
		"PATCH /api/session/s1/answers",
		"POST /api/session/s1/regenerate",
	}
	for i, w := range want {
		if paths[i] != w {
			t.Errorf("call %d: got %q, want %q", i, paths[i], w)
		}
	}
}

func TestErrorBodyIsSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "technical_poc is required"})
	})
	_, err := client.GenerateRFQ(context.Background(), RFQRequest{})
	if err == nil {
		t.Fatal("expected error from 422 response")
	}
	if !strings.Contains(err.Error(), "technical_poc is required") {
		t.Fatalf("expected backend message in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "422") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestNonJSONErrorFallsBack(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	err := client.Health(context.Background())
	if err == nil {
		t.Fatal("expected error from 502 response")
	}
	if !strings.Contains(err.Error(), "unexpected status 502") {
		t.Fatalf("expected generic status error, got %v", err)
	}
}

func TestContextCancellationStopsRequest(t *testing.T) {
	started := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := client.GenerateRecommendations(ctx, "s1")
		errCh <- err
	}()
	<-started
	cancel()
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected cancellation error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request did not stop after cancel")
	}
}

func TestFindVendorsDecodesProse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req VendorFinderRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.City != "Wichita" || req.MaxVendors != 10 {
			t.Errorf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(VendorFinderResult{
			OutputText:     "1. CDW https://www.cdw.com $1,899.00 in stock",
			ValidatedLinks: []string{"https://www.cdw.com"},
		})
	})
	result, err := client.FindVendors(context.Background(), VendorFinderRequest{
		Query:      "rugged laptop",
		City:       "Wichita",
		MaxVendors: 10,
	})
	if err != nil {
		t.Fatalf("find vendors: %v", err)
	}
	if !strings.Contains(result.OutputText, "CDW") {
		t.Fatalf("unexpected output %q", result.OutputText)
	}
	if len(result.ValidatedLinks) != 1 {
		t.Fatalf("expected one validated link, got %v", result.ValidatedLinks)
	}
}
