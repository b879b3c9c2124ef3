package services

import (
	"time"

	"pingpong-tournament-system/models"
)

// Match confirmation handshake. Every operation here is a pure
// transition on a Match and reports whether it changed anything; the
// tournament service persists and reacts. Re-applying an
// already-satisfied confirmation is a no-op, never an error, so every
// operation is safe to retry from any device.

// ConfirmInitial records a player's readiness confirmation while the
// match is still pending.
func ConfirmInitial(m *models.Match, playerID string) bool {
	if m.State != models.MatchPending || !m.HasPlayer(playerID) {
		return false
	}
	before := m.InitialConfirmedJSON
	m.AddInitialConfirmation(playerID)
	return m.InitialConfirmedJSON != before
}

// ConfirmInitialUmpire starts the match. The umpire's confirmation is
// the single authoritative transition out of pending.
func ConfirmInitialUmpire(m *models.Match, umpireID string) bool {
	if m.State != models.MatchPending || umpireID != m.UmpireID {
		return false
	}
	now := time.Now()
	m.State = models.MatchOngoing
	m.StartTime = &now
	return true
}

// ProposeWinner records the match winner, exactly once. It does not end
// the match; the result stays pending until both players and the umpire
// confirm it.
func ProposeWinner(m *models.Match, winnerID string) bool {
	if m.State != models.MatchOngoing || m.WinnerID != nil || !m.HasPlayer(winnerID) {
		return false
	}
	m.WinnerID = &winnerID
	return true
}

// ConfirmResult records a player's confirmation of the proposed winner.
func ConfirmResult(m *models.Match, playerID string) bool {
	if m.State != models.MatchOngoing || m.WinnerID == nil || !m.HasPlayer(playerID) {
		return false
	}
	before := m.PlayersConfirmedJSON
	m.AddWinnerConfirmation(playerID)
	return m.PlayersConfirmedJSON != before
}

// ConfirmResultUmpire records the umpire's confirmation of the proposed
// winner.
func ConfirmResultUmpire(m *models.Match, umpireID string) bool {
	if m.State != models.MatchOngoing || m.WinnerID == nil || umpireID != m.UmpireID {
		return false
	}
	if m.UmpireConfirmed {
		return false
	}
	m.UmpireConfirmed = true
	return true
}

// IsComplete reports whether every confirmation required to end the
// match has arrived.
func IsComplete(m *models.Match) bool {
	return m.State == models.MatchOngoing &&
		m.WinnerID != nil &&
		m.UmpireConfirmed &&
		len(m.PlayersConfirmed()) == 2
}

// FinalizeMatch moves a fully-confirmed match to ended and stamps the
// end time. Returns false when the confirmations are not complete yet.
func FinalizeMatch(m *models.Match) bool {
	if !IsComplete(m) {
		return false
	}
	now := time.Now()
	m.State = models.MatchEnded
	m.EndTime = &now
	return true
}
