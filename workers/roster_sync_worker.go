// workers/roster_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	"pingpong-tournament-system/services"
)

// RegisteredAttendee matches the JSON response from the registration
// service.
type RegisteredAttendee struct {
	ExternalID   string    `json:"external_id"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// GetRegistrationsResponse is the top-level structure of the
// registration service response.
type GetRegistrationsResponse struct {
	Attendees []RegisteredAttendee `json:"attendees"`
}

// RosterSyncWorker polls the external registration service and feeds
// newly registered attendees into the player pool. Attendees already in
// the pool are skipped; a full pool defers the attendee to a later
// poll.
type RosterSyncWorker struct {
	tournament   *services.TournamentService
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
	lastSync     time.Time
}

func NewRosterSyncWorker(ts *services.TournamentService, baseURL, endpointPath, serviceToken string) *RosterSyncWorker {
	return &RosterSyncWorker{
		tournament:   ts,
		interval:     30 * time.Second,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *RosterSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Roster Sync Worker (registration service → player pool)…")
	go w.run(ctx)
}

func (w *RosterSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of the day.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial roster sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.lastSync); err != nil {
				log.Printf("❌ Roster sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Roster Sync Worker stopped")
			return
		}
	}
}

func (w *RosterSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	attendees, err := w.fetchRegistrations(ctx, since)
	if err != nil {
		return err
	}
	if len(attendees) == 0 {
		return nil
	}
	sort.Slice(attendees, func(i, j int) bool {
		return attendees[i].RegisteredAt.Before(attendees[j].RegisteredAt)
	})

	// The cursor only moves past attendees that made it into the pool
	// (or were already there). A deferral pins it, so the next poll
	// re-fetches the deferred attendee; anyone added after the pin
	// comes back too and is skipped as a duplicate.
	var added, skipped, deferred int
	cursor := w.lastSync
	advance := true
	for _, a := range attendees {
		_, err := w.tournament.AddPlayerWithID(a.ExternalID, a.Name)
		switch {
		case errors.Is(err, services.ErrDuplicatePlayer):
			skipped++
		case errors.Is(err, services.ErrPoolFull):
			deferred++
			advance = false
			log.Printf("[ROSTER] ⚠️ Pool full, %s (%s) deferred to next poll", a.Name, a.ExternalID)
		case err != nil:
			advance = false
			log.Printf("[ROSTER] ⚠️ Failed to add attendee %s: %v", a.ExternalID, err)
		default:
			added++
		}
		if advance && a.RegisteredAt.After(cursor) {
			cursor = a.RegisteredAt
		}
	}
	w.lastSync = cursor
	log.Printf("[ROSTER] ✅ Synced %d attendee(s): %d added, %d already pooled, %d deferred", len(attendees), added, skipped, deferred)
	return nil
}

func (w *RosterSyncWorker) fetchRegistrations(ctx context.Context, since time.Time) ([]RegisteredAttendee, error) {
	endpointURL, err := joinServiceURL(w.baseURL, w.endpointPath, since)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", endpointURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request to registration service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("registration service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetRegistrationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode registration service response: %w", err)
	}
	return response.Attendees, nil
}
