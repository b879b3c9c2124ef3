package models

import "time"

// ScoringPhase is the state of the live scoring state machine.
type ScoringPhase string

const (
	// PhasePlaying means points are being entered normally.
	PhasePlaying ScoringPhase = "playing"
	// PhaseAwaitingGameOver is entered the instant a win condition is
	// met; a short grace period lets the umpire correct a miskeyed
	// point before the game-over prompt appears.
	PhaseAwaitingGameOver ScoringPhase = "waiting_for_game_over_confirmation"
	// PhaseGameOverConfirmation means the umpire is being asked to
	// confirm or deny the game result.
	PhaseGameOverConfirmation ScoringPhase = "game_over_confirmation"
	// PhaseMatchOver is terminal until the scoreboard is reset.
	PhaseMatchOver ScoringPhase = "match_over"
)

// Scoreboard is the live scoring context of one match. One row per
// in-progress match; scores reset between games, the row is removed
// when the match ends.
type Scoreboard struct {
	MatchID string `gorm:"primaryKey;type:uuid" json:"match_id"`

	PlayerOneScore int `gorm:"default:0" json:"player_one_score"`
	PlayerTwoScore int `gorm:"default:0" json:"player_two_score"`
	PlayerOneGames int `gorm:"default:0" json:"player_one_games"`
	PlayerTwoGames int `gorm:"default:0" json:"player_two_games"`

	PointsToWin int `gorm:"default:11" json:"points_to_win"`
	BestOf      int `gorm:"default:3" json:"best_of"`

	// Who served first in game one. The nominal first server of each
	// subsequent game alternates from this.
	PlayerOneStarts bool `gorm:"default:true" json:"player_one_starts"`
	// Current physical side orientation of the two players.
	SidesSwapped bool `gorm:"default:false" json:"sides_swapped"`
	// Manual score-editing toggle; score writes are last-write-wins
	// while enabled.
	CorrectionsMode bool `gorm:"default:false" json:"corrections_mode"`
	// Guards the one-time mid-game swap in the deciding game.
	DeciderSwapDone bool `gorm:"default:false" json:"-"`

	Phase ScoringPhase `gorm:"type:varchar(40);default:'playing'" json:"phase"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GamesPlayed returns the number of completed games so far.
func (sb *Scoreboard) GamesPlayed() int {
	return sb.PlayerOneGames + sb.PlayerTwoGames
}

// GamesNeeded returns the games-won count that ends the match.
func (sb *Scoreboard) GamesNeeded() int {
	return sb.BestOf/2 + 1
}
