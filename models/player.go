package models

import (
	"encoding/json"
	"time"
)

// PlayerState tracks what a player is currently doing at the event.
type PlayerState string

const (
	PlayerWaiting  PlayerState = "waiting"
	PlayerPlaying  PlayerState = "playing"
	PlayerUmpiring PlayerState = "umpiring"
)

// Player is an attendee of today's event. The scheduler owns all state
// transitions; the waiting-time counter is advanced by the tick job.
type Player struct {
	ID            string      `gorm:"primaryKey;type:uuid" json:"id"`
	Name          string      `gorm:"index;not null" json:"name"`
	State         PlayerState `gorm:"type:varchar(16);default:'waiting'" json:"state"`
	PreviousState PlayerState `gorm:"type:varchar(16)" json:"previous_state,omitempty"`

	// Fairness bookkeeping
	TotalTimeWaiting int64      `gorm:"default:0" json:"total_time_waiting"` // seconds
	MatchesPlayed    int        `gorm:"default:0" json:"matches_played"`
	UmpireCount      int        `gorm:"default:0" json:"umpire_count"`
	LastPlayedAt     *time.Time `json:"last_played_at,omitempty"`
	LastUmpiredAt    *time.Time `json:"last_umpired_at,omitempty"`

	// Opponents faced today, stored as a JSON array of player IDs.
	// Used only for same-day repeat avoidance.
	OpponentsJSON string `gorm:"type:text;default:'[]'" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Opponents returns the IDs of players faced today.
func (p *Player) Opponents() []string {
	return decodeIDList(p.OpponentsJSON)
}

// HasPlayed reports whether the player already faced the given opponent today.
func (p *Player) HasPlayed(opponentID string) bool {
	for _, id := range p.Opponents() {
		if id == opponentID {
			return true
		}
	}
	return false
}

// RecordOpponent adds an opponent to today's history (idempotent).
func (p *Player) RecordOpponent(opponentID string) {
	if p.HasPlayed(opponentID) {
		return
	}
	p.OpponentsJSON = encodeIDList(append(p.Opponents(), opponentID))
}

// TransitionTo moves the player into the next state, remembering the
// previous one for rollback bookkeeping.
func (p *Player) TransitionTo(next PlayerState) {
	p.PreviousState = p.State
	p.State = next
}

func decodeIDList(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil
	}
	return ids
}

func encodeIDList(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	b, _ := json.Marshal(ids)
	return string(b)
}
