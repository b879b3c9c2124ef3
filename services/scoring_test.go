package services

import (
	"testing"

	"pingpong-tournament-system/models"
)

func newTestBoard() *models.Scoreboard {
	return &models.Scoreboard{
		MatchID:         "m1",
		PointsToWin:     11,
		BestOf:          3,
		PlayerOneStarts: true,
		Phase:           models.PhasePlaying,
	}
}

func TestCurrentServerRotation(t *testing.T) {
	tests := []struct {
		name   string
		s1, s2 int
		want   int
	}{
		{"0-0 first block", 0, 0, SlotPlayerOne},
		{"1-0 still first block", 1, 0, SlotPlayerOne},
		{"1-1 second block", 1, 1, SlotPlayerTwo},
		{"2-1 still second block", 2, 1, SlotPlayerTwo},
		{"2-2 third block", 2, 2, SlotPlayerOne},
		{"10-10 deuce", 10, 10, SlotPlayerOne},
		{"11-10 deuce alternates", 11, 10, SlotPlayerTwo},
		{"11-11 deuce alternates again", 11, 11, SlotPlayerOne},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := newTestBoard()
			board.PlayerOneScore = tt.s1
			board.PlayerTwoScore = tt.s2
			e := NewScoringEngine(board)
			if got := e.CurrentServer(); got != tt.want {
				t.Errorf("CurrentServer() at %d-%d = %d, want %d", tt.s1, tt.s2, got, tt.want)
			}
		})
	}
}

func TestCurrentServerSecondGameFlips(t *testing.T) {
	board := newTestBoard()
	board.PlayerOneGames = 1 // one game played, nominal server flips
	e := NewScoringEngine(board)
	if got := e.CurrentServer(); got != SlotPlayerTwo {
		t.Errorf("game 2 opening server = %d, want player two", got)
	}
}

func TestCurrentServerLongGameUsesFiveBlocks(t *testing.T) {
	board := newTestBoard()
	board.PointsToWin = 21
	board.PlayerOneScore = 4
	e := NewScoringEngine(board)
	if got := e.CurrentServer(); got != SlotPlayerOne {
		t.Errorf("server at 4-0 to 21 = %d, want player one (5-point blocks)", got)
	}
	board.PlayerOneScore = 5
	if got := e.CurrentServer(); got != SlotPlayerTwo {
		t.Errorf("server at 5-0 to 21 = %d, want player two", got)
	}
}

func TestWinConditionBoundary(t *testing.T) {
	tests := []struct {
		name    string
		s1, s2  int
		pending bool
	}{
		{"10-10 no win", 10, 10, false},
		{"11-9 win", 11, 9, true},
		{"11-10 lead too small", 11, 10, false},
		{"12-10 win", 12, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := newTestBoard()
			e := NewScoringEngine(board)
			e.SetScore(SlotPlayerTwo, tt.s2)
			e.SetScore(SlotPlayerOne, tt.s1)
			got := board.Phase == models.PhaseAwaitingGameOver
			if got != tt.pending {
				t.Errorf("at %d-%d pending game over = %v, want %v", tt.s1, tt.s2, got, tt.pending)
			}
		})
	}
}

func TestCorrectionRevokesPendingWin(t *testing.T) {
	board := newTestBoard()
	e := NewScoringEngine(board)
	e.SetScore(SlotPlayerTwo, 9)
	e.SetScore(SlotPlayerOne, 11)
	if board.Phase != models.PhaseAwaitingGameOver {
		t.Fatalf("phase = %s, want pending game over", board.Phase)
	}

	// Umpire fixes a miskeyed point: the win evaporates.
	e.SetScore(SlotPlayerTwo, 10)
	if board.Phase != models.PhasePlaying {
		t.Errorf("phase after revoking correction = %s, want playing", board.Phase)
	}
}

func TestConfirmGameOverAccepted(t *testing.T) {
	board := newTestBoard()
	e := NewScoringEngine(board)

	var gameWinner int
	e.OnGameComplete = func(_ models.Scoreboard, winner int) { gameWinner = winner }

	e.SetScore(SlotPlayerTwo, 3)
	e.SetScore(SlotPlayerOne, 11)
	if !e.PromptGameOver() {
		t.Fatal("PromptGameOver refused on a pending game over")
	}
	if !e.ConfirmGameOver(true) {
		t.Fatal("ConfirmGameOver refused")
	}

	if gameWinner != SlotPlayerOne {
		t.Errorf("game winner = %d, want player one", gameWinner)
	}
	if board.PlayerOneGames != 1 || board.PlayerTwoGames != 0 {
		t.Errorf("games = %d-%d, want 1-0", board.PlayerOneGames, board.PlayerTwoGames)
	}
	if board.PlayerOneScore != 0 || board.PlayerTwoScore != 0 {
		t.Errorf("scores not reset: %d-%d", board.PlayerOneScore, board.PlayerTwoScore)
	}
	if !board.SidesSwapped {
		t.Error("sides did not swap after the game")
	}
	if board.Phase != models.PhasePlaying {
		t.Errorf("phase = %s, want playing for game 2", board.Phase)
	}
}

func TestConfirmGameOverDeclined(t *testing.T) {
	board := newTestBoard()
	e := NewScoringEngine(board)
	e.SetScore(SlotPlayerTwo, 5)
	e.SetScore(SlotPlayerOne, 11)

	if !e.ConfirmGameOver(false) {
		t.Fatal("declining the game over was refused")
	}
	if board.PlayerOneScore != 10 || board.PlayerTwoScore != 5 {
		t.Errorf("scores = %d-%d, want 10-5 after taking the point back", board.PlayerOneScore, board.PlayerTwoScore)
	}
	if board.Phase != models.PhasePlaying {
		t.Errorf("phase = %s, want playing", board.Phase)
	}
	if board.PlayerOneGames != 0 {
		t.Errorf("games = %d, want 0", board.PlayerOneGames)
	}
}

func TestMatchOver(t *testing.T) {
	board := newTestBoard()
	e := NewScoringEngine(board)

	var matchWinner int
	e.OnMatchComplete = func(_ models.Scoreboard, winner int) { matchWinner = winner }

	board.PlayerOneGames = 1
	board.SidesSwapped = true
	e.SetScore(SlotPlayerOne, 11)
	if !e.ConfirmGameOver(true) {
		t.Fatal("ConfirmGameOver refused")
	}

	if board.Phase != models.PhaseMatchOver {
		t.Fatalf("phase = %s, want match over", board.Phase)
	}
	if matchWinner != SlotPlayerOne {
		t.Errorf("match winner = %d, want player one", matchWinner)
	}
	if board.SidesSwapped {
		t.Error("sides swapped flag should reset when the match ends")
	}
	if e.IncrementScore(SlotPlayerOne) {
		t.Error("scoring after match over should be refused")
	}
}

func TestDeciderMidGameSwap(t *testing.T) {
	board := newTestBoard()
	e := NewScoringEngine(board)
	board.PlayerOneGames = 1
	board.PlayerTwoGames = 1 // deciding game of a best-of-3

	for i := 0; i < 4; i++ {
		e.IncrementScore(SlotPlayerOne)
	}
	if board.SidesSwapped {
		t.Fatal("sides swapped before anyone reached 5")
	}
	e.IncrementScore(SlotPlayerOne)
	if !board.SidesSwapped {
		t.Fatal("sides did not swap when the first player reached 5 in the decider")
	}

	// No second trigger when the other player reaches 5.
	for i := 0; i < 5; i++ {
		e.IncrementScore(SlotPlayerTwo)
	}
	if !board.SidesSwapped {
		t.Error("decider swap triggered twice")
	}
}

func TestNoMidGameSwapOutsideDecider(t *testing.T) {
	board := newTestBoard()
	e := NewScoringEngine(board)

	for i := 0; i < 5; i++ {
		e.IncrementScore(SlotPlayerOne)
	}
	if board.SidesSwapped {
		t.Error("mid-game swap fired in game 1")
	}
}

func TestNoSwapAtFiveAll(t *testing.T) {
	board := newTestBoard()
	e := NewScoringEngine(board)
	board.PlayerOneGames = 1
	board.PlayerTwoGames = 1
	board.PlayerOneScore = 4
	board.PlayerTwoScore = 5
	board.SidesSwapped = true
	board.DeciderSwapDone = true

	e.IncrementScore(SlotPlayerOne) // 5-5
	if !board.SidesSwapped {
		t.Error("5-5 must not trigger another swap")
	}
}

func TestResetMatch(t *testing.T) {
	board := newTestBoard()
	e := NewScoringEngine(board)
	e.SetScore(SlotPlayerOne, 11)
	e.ConfirmGameOver(true)
	e.ToggleCorrections(true)

	e.ResetMatch()
	if board.PlayerOneGames != 0 || board.PlayerOneScore != 0 || board.Phase != models.PhasePlaying {
		t.Errorf("reset left state behind: %+v", board)
	}
	if board.CorrectionsMode || board.SidesSwapped || board.DeciderSwapDone {
		t.Errorf("reset left flags behind: %+v", board)
	}

	// Idempotent.
	e.ResetMatch()
	if board.Phase != models.PhasePlaying {
		t.Errorf("second reset changed phase to %s", board.Phase)
	}
}
