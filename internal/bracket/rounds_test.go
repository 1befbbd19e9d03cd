package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairRound(t *testing.T) {
	testCases := []struct {
		name     string
		entrants int
		matches  int
		bye      bool
	}{
		{name: "Two entrants", entrants: 2, matches: 1},
		{name: "Even field", entrants: 8, matches: 4},
		{name: "Odd field gets a bye", entrants: 5, matches: 3, bye: true},
		{name: "Single entrant", entrants: 1, matches: 1, bye: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entrants := makeAssignments(tc.entrants)
			matches := PairRound(3, entrants)
			require.Len(t, matches, tc.matches)

			for i, m := range matches {
				assert.Equal(t, MatchID(3, i), m.ID)
				assert.Equal(t, entrants[2*i].Player.ID, m.Player1.Player.ID)
			}

			last := matches[len(matches)-1]
			assert.Equal(t, tc.bye, last.IsBye())
			if tc.bye {
				assert.Equal(t, MatchFinished, last.Status)
				assert.Equal(t, last.Player1.Player.ID, last.WinnerID)
				assert.Equal(t, ByeWinnerScore, *last.Score1)
				assert.Equal(t, ByeLoserScore, *last.Score2)
				assert.Equal(t, KindBye, last.Kind())
			} else {
				assert.Equal(t, MatchScheduled, last.Status)
			}
		})
	}
}

func TestAllMatchesDecided(t *testing.T) {
	as := makeAssignments(4)
	decided := play(t, NewMatchup("m1", as[0], as[1]), 1, 0)
	open := NewMatchup("m2", as[2], as[3])
	bye := NewBye("m3", as[2])

	assert.False(t, AllMatchesDecided(nil))
	assert.True(t, AllMatchesDecided([]Matchup{decided, bye}))
	assert.False(t, AllMatchesDecided([]Matchup{decided, open}))
}

func startKnockout(t *testing.T, players int, ratings ...int) State {
	t.Helper()
	s, err := NewState().SelectPreset("test", makeTeams(ratings...))
	require.NoError(t, err)

	names := make([]string, players)
	for i, p := range makePlayers(players) {
		names[i] = p.Name
	}
	s, err = s.AddPlayers(names, sequentialIDs())
	require.NoError(t, err)

	s, err = s.Start(seeded(42))
	require.NoError(t, err)
	require.Equal(t, StageBracket, s.Stage)
	return s
}

func TestAdvanceFourPlayersWithThirdPlace(t *testing.T) {
	s := startKnockout(t, 4, 5, 4, 4, 3, 3, 2)
	require.Len(t, s.Matchups, 2)
	require.Equal(t, 1, s.Round)

	semis := s.Matchups
	s = decideRound(t, s, [2]int{2, 1}, [2]int{3, 0})

	s, adv, err := s.AdvanceRound(seeded(1))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Round)
	assert.Equal(t, 2, adv.Round)
	assert.Nil(t, adv.LuckyLoser)
	assert.True(t, adv.ThirdPlace)
	require.Len(t, s.History, 1)
	assert.Len(t, s.History[0], 2)

	require.Len(t, s.Matchups, 2)
	final, third := s.Matchups[0], s.Matchups[1]
	assert.Equal(t, MatchID(2, 0), final.ID)
	assert.False(t, final.IsThirdPlace)
	assert.ElementsMatch(t,
		[]string{semis[0].Player1.Player.ID, semis[1].Player1.Player.ID},
		[]string{final.Player1.Player.ID, final.Player2.Player.ID})

	assert.Equal(t, ThirdPlaceID(2), third.ID)
	assert.True(t, third.IsThirdPlace)
	assert.Equal(t, MatchScheduled, third.Status)
	assert.Equal(t, 0, *third.Score1)
	assert.Equal(t, 0, *third.Score2)
	// The 2-1 loser has the better goal difference and takes the first slot
	assert.Equal(t, semis[0].Player2.Player.ID, third.Player1.Player.ID)
	assert.Equal(t, semis[1].Player2.Player.ID, third.Player2.Player.ID)
	assert.Equal(t, "Final & Third Place", RoundName(1, s.Matchups))

	t.Run("Advancing an undecided final is rejected", func(t *testing.T) {
		_, _, err := s.AdvanceRound(seeded(1))
		assert.ErrorIs(t, err, ErrRoundUndecided)
	})

	s = decideRound(t, s, [2]int{1, 0}, [2]int{2, 2})
	s, err = s.ApplyMatchAction(final.ID, MatchAction{Kind: ActionFinish})
	require.NoError(t, err)
	t.Run("Level third place needs a shootout", func(t *testing.T) {
		_, _, err := s.AdvanceRound(seeded(1))
		assert.ErrorIs(t, err, ErrRoundUndecided)
	})
	t.Run("Champion is known before the third place match", func(t *testing.T) {
		champion := s.Champion()
		require.NotNil(t, champion)
		assert.Equal(t, final.Player1.Player.ID, champion.Player.ID)

		_, ok := FinalStanding(s.Matchups)
		assert.False(t, ok, "the podium still waits for third place")
	})
	s, err = s.ApplyMatchAction(third.ID, MatchAction{Kind: ActionShootout, WinnerID: third.Player2.Player.ID})
	require.NoError(t, err)

	next, _, err := s.AdvanceRound(seeded(1))
	assert.ErrorIs(t, err, ErrNothingToAdvance)
	assert.Equal(t, s, next)

	podium, ok := FinalStanding(s.Matchups)
	require.True(t, ok)
	assert.Equal(t, final.Player1.Player.ID, podium.Champion.Player.ID)
	assert.Equal(t, final.Player2.Player.ID, podium.RunnerUp.Player.ID)
	require.NotNil(t, podium.Third)
	assert.Equal(t, third.Player2.Player.ID, podium.Third.Player.ID)
	assert.Equal(t, final.Player1.Player.ID, s.Champion().Player.ID)
}

func TestAdvanceFivePlayersLuckyLoser(t *testing.T) {
	s := startKnockout(t, 5, 5, 5, 4, 4, 3)
	require.Len(t, s.Matchups, 3)
	require.True(t, s.Matchups[2].IsBye())

	first := s.Matchups
	s = decideRound(t, s, [2]int{3, 1}, [2]int{1, 0})

	s, adv, err := s.AdvanceRound(seeded(5))
	require.NoError(t, err)

	require.NotNil(t, adv.LuckyLoser)
	assert.Equal(t, first[1].Player2.Player.ID, adv.LuckyLoser.Player.ID, "the 1-0 loser has the best goal difference")
	assert.False(t, adv.ThirdPlace)

	require.Len(t, s.Matchups, 2)
	var entrants []string
	for _, m := range s.Matchups {
		assert.False(t, m.IsBye())
		assert.False(t, m.IsThirdPlace)
		entrants = append(entrants, m.Player1.Player.ID, m.Player2.Player.ID)
	}
	assert.ElementsMatch(t, []string{
		first[0].Player1.Player.ID,
		first[1].Player1.Player.ID,
		first[2].Player1.Player.ID,
		first[1].Player2.Player.ID,
	}, entrants)
	assert.Equal(t, "Semi-finals", RoundName(1, s.Matchups))
}

func TestAdvanceThreePlayersHasNoThirdPlace(t *testing.T) {
	s := startKnockout(t, 3, 3, 2, 1)
	require.Len(t, s.Matchups, 2)

	s = decideRound(t, s, [2]int{2, 0})
	s, adv, err := s.AdvanceRound(seeded(9))
	require.NoError(t, err)

	assert.Nil(t, adv.LuckyLoser)
	assert.False(t, adv.ThirdPlace)
	require.Len(t, s.Matchups, 1)
	_, ok := FinalMatch(s.Matchups)
	assert.True(t, ok)
	assert.Equal(t, "Final", RoundName(1, s.Matchups))
}

func TestAdvanceWithoutWinners(t *testing.T) {
	as := makeAssignments(4)
	current := []Matchup{NewMatchup(MatchID(1, 0), as[0], as[1]), NewMatchup(MatchID(1, 1), as[2], as[3])}

	adv, ok := Advance(seeded(1), current, 1)
	assert.False(t, ok)
	assert.Equal(t, Advancement{}, adv)
}

func TestAdvanceRoundWrongStage(t *testing.T) {
	_, _, err := NewState().AdvanceRound(seeded(1))
	assert.ErrorIs(t, err, ErrWrongStage)
}

func TestRoundName(t *testing.T) {
	testCases := []struct {
		matches  int
		expected string
	}{
		{matches: 1, expected: "Final"},
		{matches: 2, expected: "Semi-finals"},
		{matches: 4, expected: "Quarter-finals"},
		{matches: 8, expected: "Round of 16"},
		{matches: 3, expected: "Round 3"},
		{matches: 16, expected: "Round 3"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			matches := PairRound(1, makeAssignments(tc.matches*2))
			assert.Equal(t, tc.expected, RoundName(2, matches))
		})
	}
}

func TestFinalStanding(t *testing.T) {
	as := makeAssignments(4)

	t.Run("More than one match is not a final", func(t *testing.T) {
		_, ok := FinalStanding([]Matchup{
			play(t, NewMatchup("a", as[0], as[1]), 1, 0),
			play(t, NewMatchup("b", as[2], as[3]), 1, 0),
		})
		assert.False(t, ok)
	})

	t.Run("Undecided final", func(t *testing.T) {
		_, ok := FinalStanding([]Matchup{NewMatchup("a", as[0], as[1])})
		assert.False(t, ok)
	})

	t.Run("Final without third place", func(t *testing.T) {
		podium, ok := FinalStanding([]Matchup{play(t, NewMatchup("a", as[0], as[1]), 0, 2)})
		require.True(t, ok)
		assert.Equal(t, "p2", podium.Champion.Player.ID)
		assert.Equal(t, "p1", podium.RunnerUp.Player.ID)
		assert.Nil(t, podium.Third)
	})
}
