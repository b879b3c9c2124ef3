package handlers

import (
	"pingpong-tournament-system/middleware"
	"pingpong-tournament-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService) {
	// 🔓 Read-only snapshots for rendering
	app.Get("/status", tournamentService.GetStatus)
	app.Get("/queue", tournamentService.GetQueue)
	app.Get("/players", tournamentService.GetPlayers)
	app.Get("/matches", tournamentService.GetMatches)
	app.Get("/matches/:id/scoreboard", tournamentService.GetScoreboard)

	// 🔐 Mutations require the gateway's user context
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Player pool
	secured.Post("/players", tournamentService.JoinEvent)
	secured.Delete("/players/:id", tournamentService.LeaveEvent)

	// Match confirmation handshake
	secured.Post("/matches/:id/confirm-initial", tournamentService.ConfirmInitialHandler)
	secured.Post("/matches/:id/start", tournamentService.StartMatchHandler)
	secured.Post("/matches/:id/winner", tournamentService.ProposeWinnerHandler)
	secured.Post("/matches/:id/confirm-result", tournamentService.ConfirmResultHandler)
	secured.Post("/matches/:id/confirm-result/umpire", tournamentService.ConfirmResultUmpireHandler)

	// Live scoring
	secured.Post("/matches/:id/score/increment", tournamentService.ScorePointHandler)
	secured.Post("/matches/:id/score/set", tournamentService.SetScoreHandler)
	secured.Post("/matches/:id/game-over/prompt", tournamentService.PromptGameOverHandler)
	secured.Post("/matches/:id/game-over/confirm", tournamentService.ConfirmGameOverHandler)
	secured.Post("/matches/:id/corrections", tournamentService.ToggleCorrectionsHandler)
	secured.Post("/matches/:id/reset", tournamentService.ResetScoreboardHandler)
}
