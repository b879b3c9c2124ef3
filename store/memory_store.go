package store

import (
	"sort"
	"sync"

	"pingpong-tournament-system/models"
)

// MemoryStore is an in-memory Store. Used by the test suite and usable
// as a single-node deployment without Postgres. Entities are copied on
// both read and write so callers never alias stored state.
type MemoryStore struct {
	mu          sync.Mutex
	players     map[string]models.Player
	matches     map[string]models.Match
	scoreboards map[string]models.Scoreboard
	seq         map[string]int // insertion order for stable listings
	next        int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:     make(map[string]models.Player),
		matches:     make(map[string]models.Match),
		scoreboards: make(map[string]models.Scoreboard),
		seq:         make(map[string]int),
	}
}

func (s *MemoryStore) GetPlayer(id string) (*models.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (s *MemoryStore) ListPlayers() ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Player, 0, len(s.players))
	for id := range s.players {
		p := s.players[id]
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out, nil
}

func (s *MemoryStore) SavePlayer(p *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(p.ID)
	s.players[p.ID] = *p
	return nil
}

func (s *MemoryStore) DeletePlayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *MemoryStore) GetMatch(id string) (*models.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, false
	}
	return &m, true
}

func (s *MemoryStore) ListMatches() ([]*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Match, 0, len(s.matches))
	for id := range s.matches {
		m := s.matches[id]
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out, nil
}

func (s *MemoryStore) SaveMatch(m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(m.ID)
	s.matches[m.ID] = *m
	return nil
}

func (s *MemoryStore) GetScoreboard(matchID string) (*models.Scoreboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sb, ok := s.scoreboards[matchID]
	if !ok {
		return nil, false
	}
	return &sb, true
}

func (s *MemoryStore) SaveScoreboard(sb *models.Scoreboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoreboards[sb.MatchID] = *sb
	return nil
}

func (s *MemoryStore) DeleteScoreboard(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scoreboards, matchID)
	return nil
}

// Transact clones the store, runs fn against the clone, and swaps the
// clone's contents in on success. An error from fn leaves the store
// untouched.
func (s *MemoryStore) Transact(fn func(Store) error) error {
	clone := s.clone()
	if err := fn(clone); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = clone.players
	s.matches = clone.matches
	s.scoreboards = clone.scoreboards
	s.seq = clone.seq
	s.next = clone.next
	return nil
}

func (s *MemoryStore) clone() *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := NewMemoryStore()
	for k, v := range s.players {
		c.players[k] = v
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	for k, v := range s.scoreboards {
		c.scoreboards[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	c.next = s.next
	return c
}

func (s *MemoryStore) track(id string) {
	if _, ok := s.seq[id]; !ok {
		s.seq[id] = s.next
		s.next++
	}
}
