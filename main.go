package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"pingpong-tournament-system/handlers"
	"pingpong-tournament-system/middleware"
	"pingpong-tournament-system/models"
	"pingpong-tournament-system/services"
	"pingpong-tournament-system/store"
	"pingpong-tournament-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, X-User-ID, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	event := loadEvent()
	log.Printf("Event %q (%s): %d tables, max %d players, first to %d, best of %d",
		event.Name, event.Slug, event.TotalTables, event.MaxPlayers, event.PointsToWin, event.BestOf)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Player{},
		&models.Match{},
		&models.Scoreboard{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	st := store.NewGormStore(db)
	tournamentService := services.NewTournamentService(st, event)
	if err := tournamentService.Load(); err != nil {
		log.Fatal("failed to load tournament state:", err)
	}

	// Advisory notification hooks; a UI collaborator would replace
	// these with real user-visible feedback.
	tournamentService.OnSchedulingFailed = func(reason string) {
		log.Printf("ℹ️  Matchmaking on hold: %s", reason)
	}
	tournamentService.OnGameComplete = func(matchID string, board models.Scoreboard, winner int) {
		log.Printf("🏓 Game complete in match %s, player %d took it", matchID, winner)
	}
	tournamentService.OnMatchComplete = func(matchID string, board models.Scoreboard, winner int) {
		log.Printf("🏆 Match %s complete, games %d-%d", matchID, board.PlayerOneGames, board.PlayerTwoGames)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Registration roster polling ---
	registrationURL := os.Getenv("REGISTRATION_SERVICE_URL")
	serviceToken := os.Getenv("SCHEDULER_SERVICE_TOKEN")
	if registrationURL != "" {
		rosterWorker := workers.NewRosterSyncWorker(tournamentService, registrationURL, "/api/v1/public/registrations", serviceToken)
		rosterWorker.Start(ctx)
	} else {
		log.Println("⚠️  REGISTRATION_SERVICE_URL not set — players join via the API only")
	}

	// --- Result delivery to the stats service ---
	if os.Getenv("STATS_SERVICE_URL") != "" {
		resultClient := workers.NewResultSyncClient(st, event.Slug)
		go workers.PollResults(ctx, resultClient, 15*time.Second)
	} else {
		log.Println("⚠️  STATS_SERVICE_URL not set — match results stay local")
	}

	tickScheduler := tournamentService.StartTickScheduler()
	defer func() { _ = tickScheduler.Shutdown() }()

	handlers.SetupTournamentRoutes(app, tournamentService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Scheduling tick running (every 1s)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}

func loadEvent() models.Event {
	name := os.Getenv("EVENT_NAME")
	if name == "" {
		name = "Office Round Robin"
	}
	return models.Event{
		Name:        name,
		Slug:        slug.Make(name),
		TotalTables: envInt("TOTAL_TABLES", 2),
		MaxPlayers:  envInt("MAX_PLAYERS", 40),
		PointsToWin: envInt("POINTS_TO_WIN", 11),
		BestOf:      envInt("BEST_OF", 3),
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("⚠️  Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
