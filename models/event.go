package models

// Event is the configuration of the single venue this service runs.
// Loaded once from the environment at startup; not persisted.
type Event struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	TotalTables int    `json:"total_tables"`
	MaxPlayers  int    `json:"max_players"`
	PointsToWin int    `json:"points_to_win"`
	BestOf      int    `json:"best_of"`
}
