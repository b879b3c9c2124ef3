package services

import (
	"log"

	"pingpong-tournament-system/models"
)

// Confirmation and live-scoring operations, keyed by match ID. Unknown
// match IDs are debug-logged no-ops: with an externally synchronized
// store a device can reference a match this node has not seen yet.

// ConfirmInitialMatch records a player's readiness for a pending match.
func (s *TournamentService) ConfirmInitialMatch(matchID, playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.lookupMatch(matchID, "initial confirmation")
	if !ok {
		return false
	}
	if !ConfirmInitial(m, playerID) {
		return false
	}
	s.saveMatch(m)
	return true
}

// ConfirmInitialMatchUmpire starts a pending match and opens its live
// scoreboard.
func (s *TournamentService) ConfirmInitialMatchUmpire(matchID, umpireID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.lookupMatch(matchID, "umpire start")
	if !ok {
		return false
	}
	if !ConfirmInitialUmpire(m, umpireID) {
		return false
	}
	s.saveMatch(m)

	sb := &models.Scoreboard{
		MatchID:         m.ID,
		PointsToWin:     s.Event.PointsToWin,
		BestOf:          s.Event.BestOf,
		PlayerOneStarts: true,
		Phase:           models.PhasePlaying,
	}
	s.attachEngine(m.ID, sb)
	if err := s.Store.SaveScoreboard(sb); err != nil {
		log.Printf("[SCHEDULER] Failed to persist scoreboard for %s: %v", m.ID, err)
	}
	log.Printf("[SCHEDULER] Match %s started by umpire %s", m.ID, umpireID)
	return true
}

// ConfirmWinner proposes the match winner. Settable exactly once while
// the match is ongoing.
func (s *TournamentService) ConfirmWinner(matchID, winnerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.lookupMatch(matchID, "winner proposal")
	if !ok {
		return false
	}
	if !ProposeWinner(m, winnerID) {
		return false
	}
	s.saveMatch(m)
	return true
}

// ConfirmMatch records a player's confirmation of the proposed winner
// and finalizes the match when the last confirmation lands.
func (s *TournamentService) ConfirmMatch(matchID, playerID string) bool {
	s.mu.Lock()
	defer s.flushHooks()
	defer s.mu.Unlock()

	m, ok := s.lookupMatch(matchID, "result confirmation")
	if !ok {
		return false
	}
	if !ConfirmResult(m, playerID) {
		return false
	}
	s.settleMatch(m)
	return true
}

// ConfirmMatchUmpire records the umpire's confirmation of the proposed
// winner and finalizes the match when the last confirmation lands.
func (s *TournamentService) ConfirmMatchUmpire(matchID, umpireID string) bool {
	s.mu.Lock()
	defer s.flushHooks()
	defer s.mu.Unlock()

	m, ok := s.lookupMatch(matchID, "umpire result confirmation")
	if !ok {
		return false
	}
	if !ConfirmResultUmpire(m, umpireID) {
		return false
	}
	s.settleMatch(m)
	return true
}

func (s *TournamentService) settleMatch(m *models.Match) {
	if FinalizeMatch(m) {
		s.saveMatch(m)
		s.completeMatchLocked(m)
		return
	}
	s.saveMatch(m)
}

// Live scoring. Each operation applies one scoring-engine transition
// and persists the board.

// IncrementScore adds one point for the given slot.
func (s *TournamentService) IncrementScore(matchID string, player int) bool {
	return s.withEngine(matchID, func(e *ScoringEngine) bool {
		return e.IncrementScore(player)
	})
}

// SetScore overwrites one slot's score (corrections, last write wins).
func (s *TournamentService) SetScore(matchID string, player, value int) bool {
	return s.withEngine(matchID, func(e *ScoringEngine) bool {
		return e.SetScore(player, value)
	})
}

// PromptGameOver surfaces the explicit game-over prompt after the
// correction grace period.
func (s *TournamentService) PromptGameOver(matchID string) bool {
	return s.withEngine(matchID, func(e *ScoringEngine) bool {
		return e.PromptGameOver()
	})
}

// ConfirmGameOver settles a pending game-over prompt.
func (s *TournamentService) ConfirmGameOver(matchID string, confirmed bool) bool {
	return s.withEngine(matchID, func(e *ScoringEngine) bool {
		return e.ConfirmGameOver(confirmed)
	})
}

// ToggleCorrections switches the manual score-editing mode.
func (s *TournamentService) ToggleCorrections(matchID string, on bool) bool {
	return s.withEngine(matchID, func(e *ScoringEngine) bool {
		e.ToggleCorrections(on)
		return true
	})
}

// ResetScoreboard wipes the live scoreboard back to a fresh match.
func (s *TournamentService) ResetScoreboard(matchID string) bool {
	return s.withEngine(matchID, func(e *ScoringEngine) bool {
		e.ResetMatch()
		return true
	})
}

func (s *TournamentService) withEngine(matchID string, op func(*ScoringEngine) bool) bool {
	s.mu.Lock()
	defer s.flushHooks()
	defer s.mu.Unlock()

	e, ok := s.engines[matchID]
	if !ok {
		log.Printf("[SCORING] No live scoreboard for match %s, ignored", matchID)
		return false
	}
	if !op(e) {
		return false
	}
	if err := s.Store.SaveScoreboard(e.Board); err != nil {
		log.Printf("[SCORING] Failed to persist scoreboard for %s: %v", matchID, err)
	}
	return true
}

func (s *TournamentService) attachEngine(matchID string, sb *models.Scoreboard) *ScoringEngine {
	e := NewScoringEngine(sb)
	e.OnGameComplete = func(board models.Scoreboard, winner int) {
		log.Printf("[SCORING] Match %s: game %d won by player %d (%d-%d games)",
			matchID, board.GamesPlayed(), winner, board.PlayerOneGames, board.PlayerTwoGames)
		if s.OnGameComplete != nil {
			s.pendingHooks = append(s.pendingHooks, func() { s.OnGameComplete(matchID, board, winner) })
		}
	}
	e.OnMatchComplete = func(board models.Scoreboard, winner int) {
		log.Printf("[SCORING] Match %s: match won by player %d (%d-%d games)",
			matchID, winner, board.PlayerOneGames, board.PlayerTwoGames)
		if s.OnMatchComplete != nil {
			s.pendingHooks = append(s.pendingHooks, func() { s.OnMatchComplete(matchID, board, winner) })
		}
	}
	s.engines[matchID] = e
	return e
}

func (s *TournamentService) lookupMatch(matchID, op string) (*models.Match, bool) {
	m, ok := s.matches[matchID]
	if !ok {
		log.Printf("[SCHEDULER] %s for unknown or ended match %s ignored", op, matchID)
		return nil, false
	}
	return m, true
}

func (s *TournamentService) saveMatch(m *models.Match) {
	if err := s.Store.SaveMatch(m); err != nil {
		log.Printf("[SCHEDULER] Failed to persist match %s: %v", m.ID, err)
	}
}
