package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Fiber handlers exposing the scheduler and scoring operations. The
// gateway injects the acting user via X-User-ID (see middleware);
// handlers never decide identity themselves.

func actorID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}

// JoinEvent registers a new player.
func (s *TournamentService) JoinEvent(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "player name required"})
	}

	p, err := s.AddPlayer(req.Name)
	switch {
	case errors.Is(err, ErrPoolFull):
		return c.Status(409).JSON(fiber.Map{"error": "cannot join", "reason": "pool_full"})
	case errors.Is(err, ErrDuplicatePlayer):
		return c.Status(409).JSON(fiber.Map{"error": "cannot join", "reason": "duplicate_player"})
	case err != nil:
		return c.Status(500).JSON(fiber.Map{"error": "failed to register player"})
	}
	return c.Status(201).JSON(p)
}

// LeaveEvent removes a waiting player.
func (s *TournamentService) LeaveEvent(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.RemovePlayer(id)
	if errors.Is(err, ErrPlayerBusy) {
		return c.Status(409).JSON(fiber.Map{"error": "cannot leave", "reason": "in_active_match"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to remove player"})
	}
	return c.JSON(fiber.Map{"removed": id})
}

// GetStatus returns the headline venue counters.
func (s *TournamentService) GetStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

// GetQueue returns the waiting queue in fairness order.
func (s *TournamentService) GetQueue(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"queue": s.QueueSnapshot()})
}

// GetPlayers returns everyone in the pool.
func (s *TournamentService) GetPlayers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"players": s.PlayersSnapshot()})
}

// GetMatches returns all active matches.
func (s *TournamentService) GetMatches(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"matches": s.MatchesSnapshot()})
}

// ConfirmInitialHandler records the acting player's readiness.
func (s *TournamentService) ConfirmInitialHandler(c *fiber.Ctx) error {
	applied := s.ConfirmInitialMatch(c.Params("id"), actorID(c))
	return c.JSON(fiber.Map{"applied": applied})
}

// StartMatchHandler is the umpire's start confirmation.
func (s *TournamentService) StartMatchHandler(c *fiber.Ctx) error {
	applied := s.ConfirmInitialMatchUmpire(c.Params("id"), actorID(c))
	return c.JSON(fiber.Map{"applied": applied})
}

// ProposeWinnerHandler records the winner proposal.
func (s *TournamentService) ProposeWinnerHandler(c *fiber.Ctx) error {
	var req struct {
		WinnerID string `json:"winner_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.WinnerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "winner_id required"})
	}
	applied := s.ConfirmWinner(c.Params("id"), req.WinnerID)
	return c.JSON(fiber.Map{"applied": applied})
}

// ConfirmResultHandler records the acting player's winner confirmation.
func (s *TournamentService) ConfirmResultHandler(c *fiber.Ctx) error {
	applied := s.ConfirmMatch(c.Params("id"), actorID(c))
	return c.JSON(fiber.Map{"applied": applied})
}

// ConfirmResultUmpireHandler records the umpire's winner confirmation.
func (s *TournamentService) ConfirmResultUmpireHandler(c *fiber.Ctx) error {
	applied := s.ConfirmMatchUmpire(c.Params("id"), actorID(c))
	return c.JSON(fiber.Map{"applied": applied})
}

// GetScoreboard returns the live scoreboard of a match.
func (s *TournamentService) GetScoreboard(c *fiber.Ctx) error {
	view, ok := s.ScoreboardSnapshot(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "no live scoreboard for match"})
	}
	return c.JSON(view)
}

// ScorePointHandler adds a point for one player slot.
func (s *TournamentService) ScorePointHandler(c *fiber.Ctx) error {
	var req struct {
		Player int `json:"player"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	applied := s.IncrementScore(c.Params("id"), req.Player)
	return s.scoreboardReply(c, applied)
}

// SetScoreHandler overwrites one player slot's score.
func (s *TournamentService) SetScoreHandler(c *fiber.Ctx) error {
	var req struct {
		Player int `json:"player"`
		Value  int `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	applied := s.SetScore(c.Params("id"), req.Player, req.Value)
	return s.scoreboardReply(c, applied)
}

// PromptGameOverHandler moves a pending game-over into the explicit
// confirmation stage.
func (s *TournamentService) PromptGameOverHandler(c *fiber.Ctx) error {
	applied := s.PromptGameOver(c.Params("id"))
	return s.scoreboardReply(c, applied)
}

// ConfirmGameOverHandler settles a game-over prompt.
func (s *TournamentService) ConfirmGameOverHandler(c *fiber.Ctx) error {
	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	applied := s.ConfirmGameOver(c.Params("id"), req.Confirmed)
	return s.scoreboardReply(c, applied)
}

// ToggleCorrectionsHandler switches corrections mode.
func (s *TournamentService) ToggleCorrectionsHandler(c *fiber.Ctx) error {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	applied := s.ToggleCorrections(c.Params("id"), req.Enabled)
	return s.scoreboardReply(c, applied)
}

// ResetScoreboardHandler wipes the live scoreboard.
func (s *TournamentService) ResetScoreboardHandler(c *fiber.Ctx) error {
	applied := s.ResetScoreboard(c.Params("id"))
	return s.scoreboardReply(c, applied)
}

func (s *TournamentService) scoreboardReply(c *fiber.Ctx, applied bool) error {
	view, ok := s.ScoreboardSnapshot(c.Params("id"))
	if !ok {
		return c.JSON(fiber.Map{"applied": applied})
	}
	return c.JSON(fiber.Map{"applied": applied, "scoreboard": view})
}
