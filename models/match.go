package models

import "time"

// MatchState is the lifecycle stage of a scheduled match.
type MatchState string

const (
	// MatchPending means the triple has been formed but the umpire has
	// not started the match yet.
	MatchPending MatchState = "pending"
	// MatchOngoing means play is in progress.
	MatchOngoing MatchState = "ongoing"
	// MatchEnded means the result has been fully confirmed. Ended
	// matches are immutable.
	MatchEnded MatchState = "ended"
)

// Match records one scheduled match between two players with an umpire.
// All mutations go through the confirmation protocol.
type Match struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerOneID string `gorm:"index;not null" json:"player_one_id"`
	PlayerTwoID string `gorm:"index;not null" json:"player_two_id"`
	UmpireID    string `gorm:"index;not null" json:"umpire_id"`

	Table int        `gorm:"default:0" json:"table"`
	State MatchState `gorm:"type:varchar(16);default:'pending'" json:"state"`

	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	WinnerID  *string    `json:"winner_id,omitempty"`

	// Participants who confirmed readiness before the umpire starts the
	// match, and participants who confirmed the recorded winner. Both
	// are JSON arrays of player IDs.
	InitialConfirmedJSON string `gorm:"type:text;default:'[]'" json:"-"`
	PlayersConfirmedJSON string `gorm:"type:text;default:'[]'" json:"-"`
	UmpireConfirmed      bool   `gorm:"default:false" json:"umpire_confirmed"`

	// Set by the result sync worker once the final score has been
	// delivered to the stats service.
	ResultSynced bool `gorm:"default:false" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Participants returns the three member IDs of the match.
func (m *Match) Participants() []string {
	return []string{m.PlayerOneID, m.PlayerTwoID, m.UmpireID}
}

// HasPlayer reports whether the given ID is player one or player two.
func (m *Match) HasPlayer(id string) bool {
	return id == m.PlayerOneID || id == m.PlayerTwoID
}

// InitialConfirmed returns the IDs that confirmed initial readiness.
func (m *Match) InitialConfirmed() []string {
	return decodeIDList(m.InitialConfirmedJSON)
}

// PlayersConfirmed returns the IDs that confirmed the recorded winner.
func (m *Match) PlayersConfirmed() []string {
	return decodeIDList(m.PlayersConfirmedJSON)
}

func idListHas(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AddInitialConfirmation records a readiness confirmation (idempotent).
func (m *Match) AddInitialConfirmation(id string) {
	ids := m.InitialConfirmed()
	if idListHas(ids, id) {
		return
	}
	m.InitialConfirmedJSON = encodeIDList(append(ids, id))
}

// AddWinnerConfirmation records a winner confirmation (idempotent).
func (m *Match) AddWinnerConfirmation(id string) {
	ids := m.PlayersConfirmed()
	if idListHas(ids, id) {
		return
	}
	m.PlayersConfirmedJSON = encodeIDList(append(ids, id))
}
