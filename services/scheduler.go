// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartTickScheduler runs the fairness tick once per second and logs a
// queue summary once per minute. The returned scheduler is shut down by
// main on exit.
func (s *TournamentService) StartTickScheduler() gocron.Scheduler {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every second: advance waiting-time counters, re-sort the queue
	// and retry scheduling.
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Second),
		gocron.NewTask(func() {
			s.Tick(1 * time.Second)
		}),
	)

	// Every minute: venue summary.
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			st := s.Status()
			log.Printf("[SCHEDULER] %d queued, %d active matches, %d/%d tables free",
				st.PlayersQueued, st.ActiveMatches, st.FreeTables, st.Event.TotalTables)
		}),
	)

	return sched
}
