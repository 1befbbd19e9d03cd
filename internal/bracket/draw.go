package bracket

import "sort"

// Rand is the only source of randomness the engine uses. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Fisher-Yates, returns a shuffled copy and leaves the input alone
func Shuffle[T any](rng Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SortTeamsByRating orders strongest first. Teams with the same rating keep their pool order.
func SortTeamsByRating(teams []Team) []Team {
	sorted := make([]Team, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})
	return sorted
}

// Draw pairs a random permutation of players with the teams sorted by rating, so the
// strongest team goes to a random player rather than to whoever registered first.
func Draw(rng Rand, players []Player, teams []Team) ([]Assignment, error) {
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}
	if len(teams) < len(players) {
		return nil, ErrNotEnoughTeams
	}

	sortedTeams := SortTeamsByRating(teams)
	shuffledPlayers := Shuffle(rng, players)

	assignments := make([]Assignment, 0, len(players))
	for i, p := range shuffledPlayers {
		assignments = append(assignments, Assignment{Player: p, Team: sortedTeams[i]})
	}
	return assignments, nil
}
