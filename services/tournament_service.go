package services

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"pingpong-tournament-system/models"
	"pingpong-tournament-system/store"

	"github.com/google/uuid"
)

// Scheduling failure reasons surfaced through the advisory hook.
const (
	ReasonNotEnoughPlayers = "not_enough_players"
	ReasonNoFreeTable      = "no_free_table"
	ReasonNoValidPairing   = "no_valid_pairing"
)

// Precondition failures. These decline the operation and leave state
// untouched; handlers map them to structured responses.
var (
	ErrPoolFull        = errors.New("player pool is full")
	ErrDuplicatePlayer = errors.New("player already registered")
	ErrPlayerBusy      = errors.New("player is part of an active match")
)

// TournamentService owns the live state of the event: the player pool,
// the fairness-ordered waiting queue, table accounting and every active
// match. All operations lock the service; each one is a single state
// transition plus a store write, so retries are always safe.
type TournamentService struct {
	Store store.Store
	Event models.Event

	mu         sync.Mutex
	players    map[string]*models.Player
	matches    map[string]*models.Match
	queue      []string                  // waiting player IDs in fairness order
	freeTables []int                     // table numbers currently free
	engines    map[string]*ScoringEngine // live scoreboards by match ID

	lastFailReason string
	pendingHooks   []func()

	// Advisory hooks; wired by main, never transactional. Invoked
	// after the service lock is released, so a hook may call back
	// into the service.
	OnSchedulingFailed func(reason string)
	OnGameComplete     func(matchID string, board models.Scoreboard, winner int)
	OnMatchComplete    func(matchID string, board models.Scoreboard, winner int)
}

func NewTournamentService(st store.Store, event models.Event) *TournamentService {
	s := &TournamentService{
		Store:   st,
		Event:   event,
		players: make(map[string]*models.Player),
		matches: make(map[string]*models.Match),
		engines: make(map[string]*ScoringEngine),
	}
	for table := event.TotalTables; table >= 1; table-- {
		s.freeTables = append(s.freeTables, table)
	}
	return s
}

// Load rehydrates pool, queue, tables and live scoreboards from the
// store. Called once at startup; ended matches are left to the result
// worker.
func (s *TournamentService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	players, err := s.Store.ListPlayers()
	if err != nil {
		return err
	}
	for _, p := range players {
		s.players[p.ID] = p
		if p.State == models.PlayerWaiting {
			s.queue = append(s.queue, p.ID)
		}
	}

	matches, err := s.Store.ListMatches()
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.State == models.MatchEnded {
			continue
		}
		s.matches[m.ID] = m
		s.claimTable(m.Table)
		if sb, ok := s.Store.GetScoreboard(m.ID); ok {
			s.attachEngine(m.ID, sb)
		}
	}

	s.sortQueueLocked()
	log.Printf("[SCHEDULER] Loaded %d players (%d waiting), %d active matches, %d free tables",
		len(s.players), len(s.queue), len(s.matches), len(s.freeTables))
	return nil
}

// AddPlayer registers a new attendee and queues them for play.
func (s *TournamentService) AddPlayer(name string) (*models.Player, error) {
	return s.AddPlayerWithID(uuid.NewString(), name)
}

// AddPlayerWithID registers an attendee under an external identity.
// Used by the roster sync worker, which owns the IDs.
func (s *TournamentService) AddPlayerWithID(id, name string) (*models.Player, error) {
	s.mu.Lock()
	defer s.flushHooks()
	defer s.mu.Unlock()

	if _, exists := s.players[id]; exists {
		return nil, ErrDuplicatePlayer
	}
	if s.Event.MaxPlayers > 0 && len(s.players) >= s.Event.MaxPlayers {
		return nil, ErrPoolFull
	}

	p := &models.Player{
		ID:            id,
		Name:          name,
		State:         models.PlayerWaiting,
		OpponentsJSON: "[]",
	}
	if err := s.Store.SavePlayer(p); err != nil {
		return nil, err
	}
	s.players[p.ID] = p
	s.queue = append(s.queue, p.ID)
	log.Printf("[SCHEDULER] Player %s (%s) joined, %d waiting", p.Name, p.ID, len(s.queue))

	s.tryStartLocked()
	snapshot := *p
	return &snapshot, nil
}

// RemovePlayer deletes a waiting player from the pool. Players who are
// part of an active match cannot leave; unknown IDs are a logged no-op.
func (s *TournamentService) RemovePlayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		log.Printf("[SCHEDULER] Remove for unknown player %s ignored", id)
		return nil
	}
	if p.State != models.PlayerWaiting {
		log.Printf("[SCHEDULER] Player %s cannot leave while %s", id, p.State)
		return ErrPlayerBusy
	}
	if err := s.Store.DeletePlayer(id); err != nil {
		return err
	}
	delete(s.players, id)
	s.dequeue(id)
	return nil
}

// Tick advances every waiting player's waiting-time counter by the
// elapsed interval and re-sorts the queue. Invoked once per second by
// the gocron job; missed ticks only degrade fairness accuracy.
func (s *TournamentService) Tick(elapsed time.Duration) {
	s.mu.Lock()
	defer s.flushHooks()
	defer s.mu.Unlock()

	secs := int64(elapsed / time.Second)
	if secs <= 0 {
		secs = 1
	}
	for _, id := range s.queue {
		if p, ok := s.players[id]; ok {
			p.TotalTimeWaiting += secs
		}
	}
	s.sortQueueLocked()
	s.tryStartLocked()
}

// TryStartMatch attempts to schedule matches until a precondition
// fails. Never an error: a failed attempt just waits for the next tick
// or pool change.
func (s *TournamentService) TryStartMatch() {
	s.mu.Lock()
	defer s.flushHooks()
	defer s.mu.Unlock()
	s.tryStartLocked()
}

func (s *TournamentService) tryStartLocked() {
	for {
		if len(s.freeTables) == 0 {
			s.declineScheduling(ReasonNoFreeTable)
			return
		}
		if len(s.queue) < 3 {
			s.declineScheduling(ReasonNotEnoughPlayers)
			return
		}
		triples := GeneratePairings(s.candidatesLocked())
		if len(triples) == 0 {
			s.declineScheduling(ReasonNoValidPairing)
			return
		}
		if !s.startMatchLocked(triples[0]) {
			return
		}
		s.lastFailReason = ""
	}
}

// startMatchLocked commits one triple: players leave the queue, states
// flip, the match row and the three player rows are written in one
// transaction, and a table is taken.
func (s *TournamentService) startMatchLocked(t Triple) bool {
	one, two, ump := s.players[t.PlayerOneID], s.players[t.PlayerTwoID], s.players[t.UmpireID]
	if one == nil || two == nil || ump == nil {
		log.Printf("[SCHEDULER] Pairing referenced an unknown player, dropped: %+v", t)
		return false
	}

	now := time.Now()
	table := s.freeTables[len(s.freeTables)-1]

	// Mutate copies; memory is only updated once the store commits.
	p1, p2, u := *one, *two, *ump
	p1.TransitionTo(models.PlayerPlaying)
	p2.TransitionTo(models.PlayerPlaying)
	u.TransitionTo(models.PlayerUmpiring)
	p1.LastPlayedAt = &now
	p2.LastPlayedAt = &now
	u.LastUmpiredAt = &now
	u.UmpireCount++
	p1.RecordOpponent(p2.ID)
	p2.RecordOpponent(p1.ID)

	match := &models.Match{
		ID:                   uuid.NewString(),
		PlayerOneID:          p1.ID,
		PlayerTwoID:          p2.ID,
		UmpireID:             u.ID,
		Table:                table,
		State:                models.MatchPending,
		InitialConfirmedJSON: "[]",
		PlayersConfirmedJSON: "[]",
	}

	err := s.Store.Transact(func(tx store.Store) error {
		if err := tx.SaveMatch(match); err != nil {
			return err
		}
		for _, p := range []*models.Player{&p1, &p2, &u} {
			if err := tx.SavePlayer(p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[SCHEDULER] Failed to start match: %v", err)
		return false
	}

	*one, *two, *ump = p1, p2, u
	s.matches[match.ID] = match
	s.freeTables = s.freeTables[:len(s.freeTables)-1]
	s.dequeue(p1.ID)
	s.dequeue(p2.ID)
	s.dequeue(u.ID)

	log.Printf("[SCHEDULER] Match %s on table %d: %s vs %s, umpire %s",
		match.ID, table, p1.Name, p2.Name, u.Name)
	return true
}

// completeMatchLocked releases the participants of an ended match back
// to the queue, frees the table and immediately retries scheduling.
func (s *TournamentService) completeMatchLocked(m *models.Match) {
	for _, id := range []string{m.PlayerOneID, m.PlayerTwoID} {
		if p, ok := s.players[id]; ok {
			p.MatchesPlayed++
		}
	}
	for _, id := range m.Participants() {
		p, ok := s.players[id]
		if !ok {
			// Removed from the pool since; nothing to release.
			continue
		}
		p.TransitionTo(models.PlayerWaiting)
		s.queue = append(s.queue, id)
		if err := s.Store.SavePlayer(p); err != nil {
			log.Printf("[SCHEDULER] Failed to persist released player %s: %v", id, err)
		}
	}
	s.sortQueueLocked()

	delete(s.matches, m.ID)
	delete(s.engines, m.ID)
	if err := s.Store.DeleteScoreboard(m.ID); err != nil {
		log.Printf("[SCHEDULER] Failed to drop scoreboard for %s: %v", m.ID, err)
	}
	s.releaseTable(m.Table)

	winner := ""
	if m.WinnerID != nil {
		winner = *m.WinnerID
	}
	log.Printf("[SCHEDULER] Match %s ended, winner %s, table %d free again", m.ID, winner, m.Table)

	s.tryStartLocked()
}

func (s *TournamentService) candidatesLocked() []MatchCandidate {
	cands := make([]MatchCandidate, 0, len(s.queue))
	for _, id := range s.queue {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		opp := make(map[string]bool)
		for _, o := range p.Opponents() {
			opp[o] = true
		}
		cands = append(cands, MatchCandidate{
			ID:            p.ID,
			LastPlayedAt:  p.LastPlayedAt,
			LastUmpiredAt: p.LastUmpiredAt,
			UmpireCount:   p.UmpireCount,
			Opponents:     opp,
		})
	}
	return cands
}

// sortQueueLocked restores fairness order: fewest completed matches
// first, longest waiting first among equals.
func (s *TournamentService) sortQueueLocked() {
	sort.SliceStable(s.queue, func(i, j int) bool {
		pi, pj := s.players[s.queue[i]], s.players[s.queue[j]]
		if pi == nil || pj == nil {
			return pj == nil
		}
		if pi.MatchesPlayed != pj.MatchesPlayed {
			return pi.MatchesPlayed < pj.MatchesPlayed
		}
		return pi.TotalTimeWaiting > pj.TotalTimeWaiting
	})
}

func (s *TournamentService) dequeue(id string) {
	for i, qid := range s.queue {
		if qid == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

func (s *TournamentService) claimTable(table int) {
	for i, t := range s.freeTables {
		if t == table {
			s.freeTables = append(s.freeTables[:i], s.freeTables[i+1:]...)
			return
		}
	}
}

func (s *TournamentService) releaseTable(table int) {
	for _, t := range s.freeTables {
		if t == table {
			return
		}
	}
	s.freeTables = append(s.freeTables, table)
}

// declineScheduling reports why no match could start, once per streak
// of identical reasons so a 1-second tick does not flood the hook.
func (s *TournamentService) declineScheduling(reason string) {
	if reason == s.lastFailReason {
		return
	}
	s.lastFailReason = reason
	log.Printf("[SCHEDULER] No match started: %s", reason)
	if s.OnSchedulingFailed != nil {
		s.pendingHooks = append(s.pendingHooks, func() { s.OnSchedulingFailed(reason) })
	}
}

// flushHooks fires hook invocations queued while the lock was held.
// Deferred after the unlock in every operation that can queue one.
func (s *TournamentService) flushHooks() {
	s.mu.Lock()
	pending := s.pendingHooks
	s.pendingHooks = nil
	s.mu.Unlock()

	for _, fire := range pending {
		fire()
	}
}
