package services

import (
	"sort"

	"pingpong-tournament-system/models"
)

// Read-only snapshots for the rendering layer. Everything returned here
// is a copy; callers can hold the results without racing the engines.

// QueueEntry is one waiting player in fairness order.
type QueueEntry struct {
	Position         int    `json:"position"`
	PlayerID         string `json:"player_id"`
	Name             string `json:"name"`
	MatchesPlayed    int    `json:"matches_played"`
	TotalTimeWaiting int64  `json:"total_time_waiting"`
}

// ScoreboardView is the live scoreboard plus derived serving info.
type ScoreboardView struct {
	models.Scoreboard
	CurrentServer int `json:"current_server"`
}

// EventStatus is the headline state of the venue.
type EventStatus struct {
	Event         models.Event `json:"event"`
	PlayersTotal  int          `json:"players_total"`
	PlayersQueued int          `json:"players_queued"`
	ActiveMatches int          `json:"active_matches"`
	FreeTables    int          `json:"free_tables"`
}

// QueueSnapshot returns the current waiting queue in order.
func (s *TournamentService) QueueSnapshot() []QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]QueueEntry, 0, len(s.queue))
	for i, id := range s.queue {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		out = append(out, QueueEntry{
			Position:         i + 1,
			PlayerID:         p.ID,
			Name:             p.Name,
			MatchesPlayed:    p.MatchesPlayed,
			TotalTimeWaiting: p.TotalTimeWaiting,
		})
	}
	return out
}

// PlayersSnapshot returns every pooled player, queue order first.
func (s *TournamentService) PlayersSnapshot() []models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// MatchesSnapshot returns all active (pending or ongoing) matches.
func (s *TournamentService) MatchesSnapshot() []models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Match, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out
}

// ScoreboardSnapshot returns the live scoreboard of a match, if any.
func (s *TournamentService) ScoreboardSnapshot(matchID string) (ScoreboardView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.engines[matchID]
	if !ok {
		return ScoreboardView{}, false
	}
	return ScoreboardView{Scoreboard: *e.Board, CurrentServer: e.CurrentServer()}, true
}

// Status returns the headline venue counters.
func (s *TournamentService) Status() EventStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return EventStatus{
		Event:         s.Event,
		PlayersTotal:  len(s.players),
		PlayersQueued: len(s.queue),
		ActiveMatches: len(s.matches),
		FreeTables:    len(s.freeTables),
	}
}
