// workers/result_sync_worker.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"pingpong-tournament-system/models"
	"pingpong-tournament-system/store"
)

// ResultSyncClient pushes confirmed match results to the external stats
// service. Delivery is advisory: a failed push is retried on the next
// poll, a delivered match is marked synced and never sent again.
type ResultSyncClient struct {
	BaseURL    string
	Token      string
	EventSlug  string
	HTTPClient *http.Client
	Store      store.Store
}

// MatchResultPayload is the JSON body sent to the stats service.
type MatchResultPayload struct {
	MatchID     string     `json:"match_id"`
	EventSlug   string     `json:"event_slug"`
	PlayerOneID string     `json:"player_one_id"`
	PlayerTwoID string     `json:"player_two_id"`
	UmpireID    string     `json:"umpire_id"`
	WinnerID    string     `json:"winner_id"`
	Table       int        `json:"table"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

func NewResultSyncClient(st store.Store, eventSlug string) *ResultSyncClient {
	baseURL := os.Getenv("STATS_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("STATS_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("SCHEDULER_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("SCHEDULER_SERVICE_TOKEN environment variable is required for result sync")
	}

	return &ResultSyncClient{
		BaseURL:   baseURL,
		Token:     token,
		EventSlug: eventSlug,
		Store:     st,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PollResults periodically delivers unsynced ended matches.
func PollResults(ctx context.Context, c *ResultSyncClient, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.syncPending(ctx); err != nil {
				log.Printf("[RESULTS] ❌ Sync failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Result Sync Worker stopped")
			return
		}
	}
}

func (c *ResultSyncClient) syncPending(ctx context.Context) error {
	matches, err := c.Store.ListMatches()
	if err != nil {
		return fmt.Errorf("failed to list matches: %w", err)
	}

	var delivered int
	for _, m := range matches {
		if m.State != models.MatchEnded || m.ResultSynced || m.WinnerID == nil {
			continue
		}
		if err := c.pushResult(ctx, m); err != nil {
			log.Printf("[RESULTS] ⚠️ Failed to deliver match %s, will retry: %v", m.ID, err)
			continue
		}
		m.ResultSynced = true
		if err := c.Store.SaveMatch(m); err != nil {
			log.Printf("[RESULTS] ⚠️ Failed to mark match %s as synced: %v", m.ID, err)
			continue
		}
		delivered++
	}
	if delivered > 0 {
		log.Printf("[RESULTS] ✅ Delivered %d match result(s)", delivered)
	}
	return nil
}

func (c *ResultSyncClient) pushResult(ctx context.Context, m *models.Match) error {
	endpointURL, err := joinServiceURL(c.BaseURL, "/api/v1/results", time.Time{})
	if err != nil {
		return err
	}

	payload := MatchResultPayload{
		MatchID:     m.ID,
		EventSlug:   c.EventSlug,
		PlayerOneID: m.PlayerOneID,
		PlayerTwoID: m.PlayerTwoID,
		UmpireID:    m.UmpireID,
		WinnerID:    *m.WinnerID,
		Table:       m.Table,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal result payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpointURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call stats service: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("stats service non-2xx response: %d — %s", resp.StatusCode, string(b))
	}
	return nil
}

// joinServiceURL builds a service endpoint URL with an optional since
// query parameter. Shared by the polling workers.
func joinServiceURL(baseURL, endpointPath string, since time.Time) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base service URL '%s': %w", baseURL, err)
	}
	endpointURL := base.JoinPath(endpointPath)
	if !since.IsZero() {
		q := endpointURL.Query()
		q.Set("since", since.UTC().Format(time.RFC3339))
		endpointURL.RawQuery = q.Encode()
	}
	return endpointURL.String(), nil
}
