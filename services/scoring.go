package services

import (
	"pingpong-tournament-system/models"
)

// Player slots on the scoreboard.
const (
	SlotPlayerOne = 1
	SlotPlayerTwo = 2
)

// ScoringEngine drives the live point-by-point scoring of one match:
// win detection, game-over confirmation, serve rotation and side swaps.
// It mutates the Scoreboard it wraps; the owner persists the board
// after each operation.
type ScoringEngine struct {
	Board *models.Scoreboard

	// Advisory hooks, fired when a game or the whole match completes.
	// The winner argument is SlotPlayerOne or SlotPlayerTwo.
	OnGameComplete  func(board models.Scoreboard, winner int)
	OnMatchComplete func(board models.Scoreboard, winner int)
}

func NewScoringEngine(board *models.Scoreboard) *ScoringEngine {
	return &ScoringEngine{Board: board}
}

// IncrementScore adds one point to the given player. Allowed while
// playing and while a game-over is pending confirmation, so a late
// correction can still land.
func (e *ScoringEngine) IncrementScore(player int) bool {
	if !e.scoreMutable() {
		return false
	}
	switch player {
	case SlotPlayerOne:
		e.Board.PlayerOneScore++
	case SlotPlayerTwo:
		e.Board.PlayerTwoScore++
	default:
		return false
	}
	e.afterScoreChange()
	return true
}

// SetScore overwrites the given player's score. Last write wins; this
// is the corrections-mode entry point.
func (e *ScoringEngine) SetScore(player, value int) bool {
	if !e.scoreMutable() || value < 0 {
		return false
	}
	switch player {
	case SlotPlayerOne:
		e.Board.PlayerOneScore = value
	case SlotPlayerTwo:
		e.Board.PlayerTwoScore = value
	default:
		return false
	}
	e.afterScoreChange()
	return true
}

// PromptGameOver moves a pending game-over into the explicit
// confirmation stage. The owner calls this after the grace delay.
func (e *ScoringEngine) PromptGameOver() bool {
	if e.Board.Phase != models.PhaseAwaitingGameOver {
		return false
	}
	e.Board.Phase = models.PhaseGameOverConfirmation
	return true
}

// ConfirmGameOver settles a pending game. Confirmed: the leader wins
// the game, scores reset, sides swap, and the match is checked for
// completion. Denied: the last recorded point is treated as a keying
// error and taken back.
func (e *ScoringEngine) ConfirmGameOver(confirmed bool) bool {
	b := e.Board
	if b.Phase != models.PhaseAwaitingGameOver && b.Phase != models.PhaseGameOverConfirmation {
		return false
	}
	if !confirmed {
		if b.PlayerOneScore > b.PlayerTwoScore {
			b.PlayerOneScore--
		} else {
			b.PlayerTwoScore--
		}
		b.Phase = models.PhasePlaying
		return true
	}

	winner := SlotPlayerOne
	if b.PlayerTwoScore > b.PlayerOneScore {
		winner = SlotPlayerTwo
	}
	if winner == SlotPlayerOne {
		b.PlayerOneGames++
	} else {
		b.PlayerTwoGames++
	}
	if e.OnGameComplete != nil {
		e.OnGameComplete(*b, winner)
	}

	b.PlayerOneScore = 0
	b.PlayerTwoScore = 0
	b.SidesSwapped = !b.SidesSwapped
	b.DeciderSwapDone = false

	e.checkMatchOver(winner)
	return true
}

// ToggleCorrections switches manual score editing on or off.
func (e *ScoringEngine) ToggleCorrections(on bool) {
	e.Board.CorrectionsMode = on
}

// ResetMatch clears the whole scoreboard back to a fresh first game.
// Idempotent.
func (e *ScoringEngine) ResetMatch() {
	b := e.Board
	b.PlayerOneScore = 0
	b.PlayerTwoScore = 0
	b.PlayerOneGames = 0
	b.PlayerTwoGames = 0
	b.SidesSwapped = false
	b.DeciderSwapDone = false
	b.CorrectionsMode = false
	b.Phase = models.PhasePlaying
}

// CurrentServer returns which slot serves the next point. Servers
// alternate every two points (five when playing past eleven), and every
// point once both players are within one point of winning. The nominal
// first server alternates between games.
func (e *ScoringEngine) CurrentServer() int {
	b := e.Board
	block := 2
	if b.PointsToWin > 11 {
		block = 5
	}

	total := b.PlayerOneScore + b.PlayerTwoScore
	turns := total / block
	if b.PlayerOneScore >= b.PointsToWin-1 && b.PlayerTwoScore >= b.PointsToWin-1 {
		// Deuce: a new server every point.
		turns = total
	}

	first := SlotPlayerOne
	if !e.firstServerIsPlayerOne() {
		first = SlotPlayerTwo
	}
	if turns%2 == 0 {
		return first
	}
	if first == SlotPlayerOne {
		return SlotPlayerTwo
	}
	return SlotPlayerOne
}

func (e *ScoringEngine) firstServerIsPlayerOne() bool {
	// The opening server flips with every game played.
	if e.Board.GamesPlayed()%2 == 0 {
		return e.Board.PlayerOneStarts
	}
	return !e.Board.PlayerOneStarts
}

func (e *ScoringEngine) scoreMutable() bool {
	return e.Board.Phase == models.PhasePlaying || e.Board.Phase == models.PhaseAwaitingGameOver
}

// afterScoreChange re-evaluates everything a score mutation can
// trigger: the one-time decider side swap, a newly-met win condition,
// or a correction revoking a pending win.
func (e *ScoringEngine) afterScoreChange() {
	b := e.Board

	if b.GamesPlayed() == b.BestOf-1 && !b.DeciderSwapDone {
		oneAtFive := b.PlayerOneScore >= 5
		twoAtFive := b.PlayerTwoScore >= 5
		if oneAtFive != twoAtFive {
			b.SidesSwapped = !b.SidesSwapped
			b.DeciderSwapDone = true
		}
	}

	if e.winConditionMet() {
		if b.Phase == models.PhasePlaying {
			b.Phase = models.PhaseAwaitingGameOver
		}
	} else if b.Phase == models.PhaseAwaitingGameOver {
		b.Phase = models.PhasePlaying
	}
}

func (e *ScoringEngine) winConditionMet() bool {
	b := e.Board
	lead := b.PlayerOneScore - b.PlayerTwoScore
	if lead < 0 {
		lead = -lead
	}
	top := b.PlayerOneScore
	if b.PlayerTwoScore > top {
		top = b.PlayerTwoScore
	}
	return top >= b.PointsToWin && lead >= 2
}

func (e *ScoringEngine) checkMatchOver(lastWinner int) {
	b := e.Board
	if b.PlayerOneGames >= b.GamesNeeded() || b.PlayerTwoGames >= b.GamesNeeded() {
		b.Phase = models.PhaseMatchOver
		b.SidesSwapped = false
		if e.OnMatchComplete != nil {
			e.OnMatchComplete(*b, lastWinner)
		}
		return
	}
	b.Phase = models.PhasePlaying
}
