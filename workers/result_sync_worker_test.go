package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pingpong-tournament-system/models"
	"pingpong-tournament-system/store"
)

func TestResultSyncDeliversEndedMatches(t *testing.T) {
	st := store.NewMemoryStore()
	winner := "p1"
	started := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	ended := started.Add(20 * time.Minute)
	if err := st.SaveMatch(&models.Match{
		ID:          "m1",
		PlayerOneID: "p1",
		PlayerTwoID: "p2",
		UmpireID:    "u1",
		Table:       2,
		State:       models.MatchEnded,
		WinnerID:    &winner,
		StartTime:   &started,
		EndTime:     &ended,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Still ongoing, must not be delivered.
	if err := st.SaveMatch(&models.Match{ID: "m2", State: models.MatchOngoing}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got []MatchResultPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/results" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Service-Token") != "test-token" {
			t.Errorf("missing service token header")
		}
		var p MatchResultPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		got = append(got, p)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &ResultSyncClient{
		BaseURL:    srv.URL,
		Token:      "test-token",
		EventSlug:  "test-event",
		Store:      st,
		HTTPClient: srv.Client(),
	}
	if err := c.syncPending(context.Background()); err != nil {
		t.Fatalf("syncPending: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("delivered %d payloads, want 1", len(got))
	}
	p := got[0]
	if p.MatchID != "m1" || p.WinnerID != "p1" || p.EventSlug != "test-event" || p.Table != 2 {
		t.Fatalf("payload = %+v", p)
	}

	m, ok := st.GetMatch("m1")
	if !ok || !m.ResultSynced {
		t.Fatalf("match m1 not marked synced")
	}

	// A second pass must not re-deliver.
	if err := c.syncPending(context.Background()); err != nil {
		t.Fatalf("second syncPending: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("re-delivered an already synced match, %d payloads", len(got))
	}
}
