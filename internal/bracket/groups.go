package bracket

import (
	"fmt"
	"sort"
)

const (
	GroupSize           = 4
	QualifiersPerGroup  = 2
	MinPlayersForGroups = 4
)

const (
	PointsWin          = 3
	PointsDraw         = 1
	PointsShootoutWin  = 2
	PointsShootoutLoss = 1
)

type Group struct {
	ID          string       `json:"id"`
	Assignments []Assignment `json:"assignments"`
	Matches     []Matchup    `json:"matches"`
}

// A..Z, then AA, AB and so on
func groupLabel(i int) string {
	label := ""
	for i++; i > 0; i /= 26 {
		i--
		label = string(rune('A'+i%26)) + label
	}
	return label
}

// GenerateGroups deals assignments into ceil(n/4) groups by index modulo the group count,
// which interleaves the rating order instead of blocking it, then builds a shuffled single
// round robin for every group.
func GenerateGroups(rng Rand, assignments []Assignment) ([]Group, error) {
	if len(assignments) < MinPlayersForGroups {
		return nil, ErrTooFewForGroups
	}

	numGroups := (len(assignments) + GroupSize - 1) / GroupSize
	groups := make([]Group, numGroups)
	for i := range groups {
		groups[i].ID = groupLabel(i)
	}
	for i, a := range assignments {
		g := &groups[i%numGroups]
		g.Assignments = append(g.Assignments, a)
	}

	for i := range groups {
		groups[i].Matches = Shuffle(rng, roundRobin(groups[i]))
	}
	return groups, nil
}

func roundRobin(g Group) []Matchup {
	count := len(g.Assignments)
	matches := make([]Matchup, 0, count*(count-1)/2)
	for i := 0; i < count; i++ {
		for j := i + 1; j < count; j++ {
			id := fmt.Sprintf("g%s-%d-%d", g.ID, i, j)
			// Swap sides on odd index sums so nobody is always the home side
			if (i+j)%2 == 0 {
				matches = append(matches, NewMatchup(id, g.Assignments[i], g.Assignments[j]))
			} else {
				matches = append(matches, NewMatchup(id, g.Assignments[j], g.Assignments[i]))
			}
		}
	}
	return matches
}

type Standing struct {
	Assignment   Assignment `json:"assignment"`
	Played       int        `json:"played"`
	Wins         int        `json:"wins"`
	Draws        int        `json:"draws"`
	Losses       int        `json:"losses"`
	GoalsFor     int        `json:"goalsFor"`
	GoalsAgainst int        `json:"goalsAgainst"`
	Points       int        `json:"points"`
}

func (s Standing) GoalDifference() int {
	return s.GoalsFor - s.GoalsAgainst
}

// GroupStandings builds the table for one group. Order is points, goal difference, goals for,
// and the group's assignment order after that.
func GroupStandings(g Group) []Standing {
	table := make([]Standing, len(g.Assignments))
	index := make(map[string]int, len(g.Assignments))
	for i, a := range g.Assignments {
		table[i] = Standing{Assignment: a}
		index[a.Player.ID] = i
	}

	for _, m := range g.Matches {
		if !m.Played() {
			continue
		}
		i1, ok1 := index[m.Player1.Player.ID]
		i2, ok2 := index[m.Player2.Player.ID]
		if !ok1 || !ok2 {
			continue
		}
		s1, s2 := *m.Score1, *m.Score2
		applyResult(&table[i1], s1, s2)
		applyResult(&table[i2], s2, s1)
	}

	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		return a.GoalsFor > b.GoalsFor
	})
	return table
}

func applyResult(s *Standing, own, opp int) {
	s.Played++
	s.GoalsFor += own
	s.GoalsAgainst += opp
	switch {
	case own > opp:
		s.Wins++
		s.Points += PointsWin
	case own < opp:
		s.Losses++
	default:
		s.Draws++
		s.Points += PointsDraw
	}
}

func GroupsComplete(groups []Group) bool {
	for _, g := range groups {
		for _, m := range g.Matches {
			if m.Status != MatchFinished {
				return false
			}
		}
	}
	return true
}

// Qualifiers returns the top two of every group, in group order
func Qualifiers(groups []Group) ([]Assignment, error) {
	if len(groups) == 0 {
		return nil, ErrWrongStage
	}
	if !GroupsComplete(groups) {
		return nil, ErrGroupsIncomplete
	}

	var qualified []Assignment
	for _, g := range groups {
		table := GroupStandings(g)
		for i := 0; i < QualifiersPerGroup && i < len(table); i++ {
			qualified = append(qualified, table[i].Assignment)
		}
	}
	return qualified, nil
}
