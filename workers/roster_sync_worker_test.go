package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pingpong-tournament-system/models"
	"pingpong-tournament-system/services"
	"pingpong-tournament-system/store"
)

// registrationStub serves a fixed attendee list the way the
// registration service does, honoring the since query parameter.
func registrationStub(t *testing.T, attendees []RegisteredAttendee) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/registrations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Service-Token") != "test-token" {
			t.Errorf("missing service token header")
		}
		out := GetRegistrationsResponse{}
		var since time.Time
		if raw := r.URL.Query().Get("since"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				t.Errorf("bad since param %q: %v", raw, err)
			}
			since = parsed
		}
		for _, a := range attendees {
			if since.IsZero() || a.RegisteredAt.After(since) {
				out.Attendees = append(out.Attendees, a)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
}

func newRosterTestService(maxPlayers int) *services.TournamentService {
	return services.NewTournamentService(store.NewMemoryStore(), models.Event{
		Name:        "Test Event",
		Slug:        "test-event",
		TotalTables: 0,
		MaxPlayers:  maxPlayers,
		PointsToWin: 11,
		BestOf:      3,
	})
}

func TestRosterSyncRetriesPoolFullAttendee(t *testing.T) {
	base := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	srv := registrationStub(t, []RegisteredAttendee{
		{ExternalID: "reg-alice", Name: "Alice", RegisteredAt: base},
		{ExternalID: "reg-bob", Name: "Bob", RegisteredAt: base.Add(time.Minute)},
	})
	defer srv.Close()

	ts := newRosterTestService(1)
	w := NewRosterSyncWorker(ts, srv.URL, "/api/v1/registrations", "test-token")

	if err := w.syncBatch(context.Background(), time.Time{}); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if got := len(ts.PlayersSnapshot()); got != 1 {
		t.Fatalf("pool size after first sync = %d, want 1", got)
	}

	// Alice leaves; the pool has room again. Bob must come back on the
	// next poll even though he registered before the first sync ran.
	if err := ts.RemovePlayer("reg-alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := w.syncBatch(context.Background(), w.lastSync); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	players := ts.PlayersSnapshot()
	if len(players) != 1 || players[0].ID != "reg-bob" {
		t.Fatalf("pool after retry poll = %+v, want exactly Bob", players)
	}
}

func TestRosterSyncCursorHoldsBehindDeferral(t *testing.T) {
	base := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	attendees := []RegisteredAttendee{
		{ExternalID: "reg-a", Name: "A", RegisteredAt: base},
		{ExternalID: "reg-b", Name: "B", RegisteredAt: base.Add(time.Minute)},
		{ExternalID: "reg-c", Name: "C", RegisteredAt: base.Add(2 * time.Minute)},
	}
	srv := registrationStub(t, attendees)
	defer srv.Close()

	ts := newRosterTestService(2)
	// C is already pooled, so only B's deferral should pin the cursor.
	if _, err := ts.AddPlayerWithID("reg-c", "C"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := NewRosterSyncWorker(ts, srv.URL, "/api/v1/registrations", "test-token")
	if err := w.syncBatch(context.Background(), time.Time{}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	// A is added, B is deferred (the pool of 2 now holds C and A) and
	// the known C after it is skipped as a duplicate. The cursor must
	// stay at A's registration time so B comes back on the next poll.
	if !w.lastSync.Equal(base) {
		t.Fatalf("lastSync = %v, want %v (pinned before deferred attendee)", w.lastSync, base)
	}
}
