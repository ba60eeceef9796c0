package match

import (
	"strings"

	"github.com/arenhart/tradepost/internal/roster"
)

// Opportunity is one directional trade suggestion between two players.
// ToGive holds card names FromPlayer has and ToPlayer wants; ToReceive
// holds names FromPlayer wants and ToPlayer has. Computed fresh per
// query, never persisted.
type Opportunity struct {
	FromPlayer string   `json:"from_player"`
	ToPlayer   string   `json:"to_player"`
	ToContact  string   `json:"to_contact,omitempty"`
	ToGive     []string `json:"cards_to_give"`
	ToReceive  []string `json:"cards_to_receive"`
}

// SearchResult is one have-list card matching a free-text query, tagged
// with the player offering it.
type SearchResult struct {
	Player   string `json:"jogador"`
	Contact  string `json:"whatsapp,omitempty"`
	Card     string `json:"carta"`
	Quantity int    `json:"quantidade"`
}

// Matcher computes trade opportunities over an immutable roster
// snapshot. Card names match as exact canonical strings: a bilingual
// composite "Local / Foreign" only matches the identical composite.
type Matcher struct {
	snapshot roster.Snapshot
	haveSets []map[string]bool
	wantSets []map[string]bool
}

// NewMatcher indexes a snapshot for matching. The snapshot is borrowed
// read-only; building the matcher never mutates it.
func NewMatcher(snapshot roster.Snapshot) *Matcher {
	m := &Matcher{
		snapshot: snapshot,
		haveSets: make([]map[string]bool, len(snapshot.Players)),
		wantSets: make([]map[string]bool, len(snapshot.Players)),
	}
	for i, player := range snapshot.Players {
		m.haveSets[i] = nameSet(player.Have)
		m.wantSets[i] = nameSet(player.Want)
	}
	return m
}

// Opportunities reports, for every ordered pair of distinct players, the
// two directional intersections of their lists. Pairs where both sides
// are empty are omitted. Output order follows roster order for the
// outer player and snapshot order for the inner comparison.
func (m *Matcher) Opportunities() []Opportunity {
	var result []Opportunity

	for _, from := range m.snapshot.Players {
		for j, to := range m.snapshot.Players {
			// Self-pairs are excluded by name key, not index: two
			// entries sharing a normalized name are the same player.
			if from.Key() == to.Key() {
				continue
			}

			give := intersectNames(from.Have, m.wantSets[j])
			receive := intersectNames(from.Want, m.haveSets[j])
			if len(give) == 0 && len(receive) == 0 {
				continue
			}

			result = append(result, Opportunity{
				FromPlayer: from.Name,
				ToPlayer:   to.Name,
				ToContact:  to.Contact,
				ToGive:     give,
				ToReceive:  receive,
			})
		}
	}

	return result
}

// OpportunitiesFor reports only the opportunities where the named
// player is the giving side. Unknown names yield nothing.
func (m *Matcher) OpportunitiesFor(playerName string) []Opportunity {
	key := roster.NormalizeName(playerName)
	var result []Opportunity
	for _, opp := range m.Opportunities() {
		if roster.NormalizeName(opp.FromPlayer) == key {
			result = append(result, opp)
		}
	}
	return result
}

// Search scans every player's have list for names containing the query,
// case-insensitive. Blank queries match nothing, not everything.
func (m *Matcher) Search(query string) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var results []SearchResult
	for _, player := range m.snapshot.Players {
		for _, card := range player.Have {
			if strings.Contains(strings.ToLower(card.Name), query) {
				results = append(results, SearchResult{
					Player:   player.Name,
					Contact:  player.Contact,
					Card:     card.Name,
					Quantity: card.Quantity,
				})
			}
		}
	}

	return results
}

// nameSet builds the canonical-name membership set for a card list.
func nameSet(cards []roster.CardRecord) map[string]bool {
	set := make(map[string]bool, len(cards))
	for _, card := range cards {
		if card.Name != "" {
			set[card.Name] = true
		}
	}
	return set
}

// intersectNames returns the names of cards present in the other side's
// set, in list order, deduplicated.
func intersectNames(cards []roster.CardRecord, other map[string]bool) []string {
	var names []string
	seen := make(map[string]bool)
	for _, card := range cards {
		if other[card.Name] && !seen[card.Name] {
			seen[card.Name] = true
			names = append(names, card.Name)
		}
	}
	return names
}
