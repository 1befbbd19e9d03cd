package bracket

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// identityRand makes Shuffle keep the input order
type identityRand struct{}

func (identityRand) IntN(n int) int { return n - 1 }

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func makePlayers(n int) []Player {
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Player %d", i+1)}
	}
	return players
}

func makeTeams(ratings ...int) []Team {
	teams := make([]Team, len(ratings))
	for i, r := range ratings {
		teams[i] = Team{ID: fmt.Sprintf("t%d", i+1), Name: fmt.Sprintf("Team %d", i+1), Rating: r}
	}
	return teams
}

func makeAssignments(n int) []Assignment {
	players := makePlayers(n)
	out := make([]Assignment, n)
	for i, p := range players {
		out[i] = Assignment{Player: p, Team: Team{ID: fmt.Sprintf("t%d", i+1), Name: fmt.Sprintf("Team %d", i+1), Rating: 5}}
	}
	return out
}

// play runs a match from scheduled to a recorded score
func play(t *testing.T, m Matchup, s1, s2 int) Matchup {
	t.Helper()
	m, err := m.Start()
	require.NoError(t, err)
	m, err = m.RecordScore(s1, s2)
	require.NoError(t, err)
	return m
}

// finish plays and closes a match, level scores are allowed
func finish(t *testing.T, m Matchup, s1, s2 int) Matchup {
	t.Helper()
	m = play(t, m, s1, s2)
	m, err := m.Finish(true)
	require.NoError(t, err)
	return m
}

// decideRound gives every open match of the round to player1 with the given scores
func decideRound(t *testing.T, s State, scores ...[2]int) State {
	t.Helper()
	i := 0
	for _, m := range s.Matchups {
		if m.IsBye() {
			continue
		}
		require.Less(t, i, len(scores), "not enough scores for round %d", s.Round)
		var err error
		s, err = s.ApplyMatchAction(m.ID, MatchAction{Kind: ActionStart})
		require.NoError(t, err)
		s, err = s.ApplyMatchAction(m.ID, MatchAction{Kind: ActionScore, Score1: scores[i][0], Score2: scores[i][1]})
		require.NoError(t, err)
		i++
	}
	return s
}

// sequentialIDs yields p1, p2, ... to line up with makePlayers
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
}
