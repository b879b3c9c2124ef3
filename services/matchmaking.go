package services

import (
	"sort"
	"time"
)

// MatchCandidate is one eligible waiting player as the matchmaking pass
// sees them: identity plus today's play and umpire history.
type MatchCandidate struct {
	ID            string
	LastPlayedAt  *time.Time
	LastUmpiredAt *time.Time
	UmpireCount   int
	Opponents     map[string]bool
}

// Triple is a proposed (player one, player two, umpire) grouping for
// one match.
type Triple struct {
	PlayerOneID string `json:"player_one_id"`
	PlayerTwoID string `json:"player_two_id"`
	UmpireID    string `json:"umpire_id"`
}

// GeneratePairings proposes zero or more triples for this scheduling
// round. Pure function over the candidate list: players who have never
// played come first, then those idle longest; umpire selection uses the
// same rule over umpire history. Two players who already faced each
// other today are only paired when no alternative exists in a later
// round. No identity is used twice in one invocation.
func GeneratePairings(candidates []MatchCandidate) []Triple {
	if len(candidates) < 3 {
		return nil
	}

	playOrder := make([]MatchCandidate, len(candidates))
	copy(playOrder, candidates)
	sortByRecency(playOrder, func(c MatchCandidate) *time.Time { return c.LastPlayedAt }, nil)

	umpireOrder := make([]MatchCandidate, len(candidates))
	copy(umpireOrder, candidates)
	sortByRecency(umpireOrder, func(c MatchCandidate) *time.Time { return c.LastUmpiredAt },
		func(c MatchCandidate) int { return c.UmpireCount })

	used := make(map[string]bool)
	blocked := make(map[string]bool) // exhausted as player one this round

	var triples []Triple
	for {
		one, ok := nextFree(playOrder, used, blocked)
		if !ok {
			break
		}

		two, ok := findOpponent(playOrder, one, used)
		if !ok {
			// Everyone left already faced this player today. They stay
			// queued; later rounds may still pick them as an opponent.
			blocked[one.ID] = true
			continue
		}

		umpire, ok := findUmpire(umpireOrder, one.ID, two.ID, used)
		if !ok {
			// No third person free to umpire: stop generating matches
			// entirely, the remaining players stay queued.
			break
		}

		used[one.ID] = true
		used[two.ID] = true
		used[umpire.ID] = true
		triples = append(triples, Triple{
			PlayerOneID: one.ID,
			PlayerTwoID: two.ID,
			UmpireID:    umpire.ID,
		})
	}
	return triples
}

// sortByRecency orders candidates never-active-first, then by oldest
// activity timestamp. count (optional) breaks timestamp ties before the
// final deterministic ID tiebreak.
func sortByRecency(cands []MatchCandidate, at func(MatchCandidate) *time.Time, count func(MatchCandidate) int) {
	sort.SliceStable(cands, func(i, j int) bool {
		ti, tj := at(cands[i]), at(cands[j])
		if ti == nil && tj != nil {
			return true
		}
		if ti != nil && tj == nil {
			return false
		}
		if ti != nil && tj != nil && !ti.Equal(*tj) {
			return ti.Before(*tj)
		}
		if count != nil && count(cands[i]) != count(cands[j]) {
			return count(cands[i]) < count(cands[j])
		}
		return cands[i].ID < cands[j].ID
	})
}

func nextFree(order []MatchCandidate, used, blocked map[string]bool) (MatchCandidate, bool) {
	for _, c := range order {
		if !used[c.ID] && !blocked[c.ID] {
			return c, true
		}
	}
	return MatchCandidate{}, false
}

func findOpponent(order []MatchCandidate, one MatchCandidate, used map[string]bool) (MatchCandidate, bool) {
	for _, c := range order {
		if used[c.ID] || c.ID == one.ID {
			continue
		}
		if one.Opponents[c.ID] || c.Opponents[one.ID] {
			continue
		}
		return c, true
	}
	return MatchCandidate{}, false
}

func findUmpire(order []MatchCandidate, oneID, twoID string, used map[string]bool) (MatchCandidate, bool) {
	for _, c := range order {
		if used[c.ID] || c.ID == oneID || c.ID == twoID {
			continue
		}
		return c, true
	}
	return MatchCandidate{}, false
}
