package store

import "pingpong-tournament-system/models"

// Store is the persistence contract the scheduling and scoring cores
// write through. Lookups report presence with a bool instead of an
// error: externally-synchronized state can legitimately reference
// entities not visible locally yet, and callers treat that as a no-op.
type Store interface {
	GetPlayer(id string) (*models.Player, bool)
	ListPlayers() ([]*models.Player, error)
	SavePlayer(p *models.Player) error
	DeletePlayer(id string) error

	GetMatch(id string) (*models.Match, bool)
	ListMatches() ([]*models.Match, error)
	SaveMatch(m *models.Match) error

	GetScoreboard(matchID string) (*models.Scoreboard, bool)
	SaveScoreboard(sb *models.Scoreboard) error
	DeleteScoreboard(matchID string) error

	// Transact runs fn against a store whose writes commit together or
	// not at all. Used when starting a match: one Match insert plus
	// three Player updates.
	Transact(fn func(Store) error) error
}
