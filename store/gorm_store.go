package store

import (
	"errors"
	"log"

	"pingpong-tournament-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the production Store backed by Postgres through gorm.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetPlayer(id string) (*models.Player, bool) {
	var p models.Player
	if err := s.DB.First(&p, "id = ?", id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[STORE] DB error fetching player %s: %v", id, err)
		}
		return nil, false
	}
	return &p, true
}

func (s *GormStore) ListPlayers() ([]*models.Player, error) {
	var players []*models.Player
	if err := s.DB.Order("created_at ASC").Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

func (s *GormStore) SavePlayer(p *models.Player) error {
	return s.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error
}

func (s *GormStore) DeletePlayer(id string) error {
	return s.DB.Delete(&models.Player{}, "id = ?", id).Error
}

func (s *GormStore) GetMatch(id string) (*models.Match, bool) {
	var m models.Match
	if err := s.DB.First(&m, "id = ?", id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[STORE] DB error fetching match %s: %v", id, err)
		}
		return nil, false
	}
	return &m, true
}

func (s *GormStore) ListMatches() ([]*models.Match, error) {
	var matches []*models.Match
	if err := s.DB.Order("created_at ASC").Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *GormStore) SaveMatch(m *models.Match) error {
	return s.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}

func (s *GormStore) GetScoreboard(matchID string) (*models.Scoreboard, bool) {
	var sb models.Scoreboard
	if err := s.DB.First(&sb, "match_id = ?", matchID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[STORE] DB error fetching scoreboard %s: %v", matchID, err)
		}
		return nil, false
	}
	return &sb, true
}

func (s *GormStore) SaveScoreboard(sb *models.Scoreboard) error {
	return s.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(sb).Error
}

func (s *GormStore) DeleteScoreboard(matchID string) error {
	return s.DB.Delete(&models.Scoreboard{}, "match_id = ?", matchID).Error
}

func (s *GormStore) Transact(fn func(Store) error) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}
