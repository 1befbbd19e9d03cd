package bracket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchupTransitions(t *testing.T) {
	as := makeAssignments(2)
	scheduled := NewMatchup("m", as[0], as[1])

	testCases := []struct {
		name        string
		run         func(Matchup) (Matchup, error)
		from        Matchup
		expectedErr error
		status      MatchStatus
		winner      string
	}{
		{
			name:   "Start a scheduled match",
			from:   scheduled,
			run:    Matchup.Start,
			status: MatchInProgress,
		},
		{
			name:        "Start twice",
			from:        play(t, scheduled, 0, 0),
			run:         Matchup.Start,
			expectedErr: ErrInvalidTransition,
		},
		{
			name:   "Score picks the winner",
			from:   scheduled,
			run:    func(m Matchup) (Matchup, error) { return m.RecordScore(1, 4) },
			status: MatchInProgress,
			winner: "p2",
		},
		{
			name:        "Negative score",
			from:        scheduled,
			run:         func(m Matchup) (Matchup, error) { return m.RecordScore(-1, 0) },
			expectedErr: ErrNegativeScore,
		},
		{
			name:   "Level score clears the winner",
			from:   play(t, scheduled, 2, 0),
			run:    func(m Matchup) (Matchup, error) { return m.RecordScore(2, 2) },
			status: MatchInProgress,
		},
		{
			name:   "Shootout on a level score",
			from:   play(t, scheduled, 1, 1),
			run:    func(m Matchup) (Matchup, error) { return m.DecideShootout("p2") },
			status: MatchInProgress,
			winner: "p2",
		},
		{
			name:        "Shootout needs level scores",
			from:        play(t, scheduled, 2, 1),
			run:         func(m Matchup) (Matchup, error) { return m.DecideShootout("p2") },
			expectedErr: ErrScoresNotLevel,
		},
		{
			name:        "Shootout needs scores",
			from:        scheduled,
			run:         func(m Matchup) (Matchup, error) { return m.DecideShootout("p1") },
			expectedErr: ErrMissingScore,
		},
		{
			name:        "Shootout winner must have played",
			from:        play(t, scheduled, 0, 0),
			run:         func(m Matchup) (Matchup, error) { return m.DecideShootout("p9") },
			expectedErr: ErrNotParticipant,
		},
		{
			name:   "Finish a decided match",
			from:   play(t, scheduled, 3, 2),
			run:    func(m Matchup) (Matchup, error) { return m.Finish(false) },
			status: MatchFinished,
			winner: "p1",
		},
		{
			name: "Finish takes the winner from the score",
			from: func() Matchup {
				m := play(t, scheduled, 0, 2)
				m.WinnerID = ""
				return m
			}(),
			run:    func(m Matchup) (Matchup, error) { return m.Finish(false) },
			status: MatchFinished,
			winner: "p2",
		},
		{
			name:        "Knockout draw cannot finish",
			from:        play(t, scheduled, 1, 1),
			run:         func(m Matchup) (Matchup, error) { return m.Finish(false) },
			expectedErr: ErrUndecidedDraw,
		},
		{
			name:   "Group draw can finish",
			from:   play(t, scheduled, 1, 1),
			run:    func(m Matchup) (Matchup, error) { return m.Finish(true) },
			status: MatchFinished,
		},
		{
			name:        "Finish before start",
			from:        scheduled,
			run:         func(m Matchup) (Matchup, error) { return m.Finish(true) },
			expectedErr: ErrInvalidTransition,
		},
		{
			name:        "Finish without scores",
			from:        must(scheduled.Start()),
			run:         func(m Matchup) (Matchup, error) { return m.Finish(true) },
			expectedErr: ErrMissingScore,
		},
		{
			name:        "Score a finished match",
			from:        finish(t, scheduled, 1, 0),
			run:         func(m Matchup) (Matchup, error) { return m.RecordScore(2, 0) },
			expectedErr: ErrInvalidTransition,
		},
		{
			name:   "Reopen a finished match",
			from:   finish(t, scheduled, 1, 0),
			run:    Matchup.Reopen,
			status: MatchInProgress,
			winner: "p1",
		},
		{
			name:        "Reopen an open match",
			from:        scheduled,
			run:         Matchup.Reopen,
			expectedErr: ErrInvalidTransition,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.run(tc.from)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Equal(t, tc.from, got, "a rejected transition returns the match unchanged")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.status, got.Status)
			assert.Equal(t, tc.winner, got.WinnerID)
		})
	}
}

func TestByeIsImmutable(t *testing.T) {
	bye := NewBye("b", makeAssignments(1)[0])

	actions := map[string]func(Matchup) (Matchup, error){
		"start":    Matchup.Start,
		"score":    func(m Matchup) (Matchup, error) { return m.RecordScore(1, 0) },
		"shootout": func(m Matchup) (Matchup, error) { return m.DecideShootout("p1") },
		"finish":   func(m Matchup) (Matchup, error) { return m.Finish(true) },
		"reopen":   Matchup.Reopen,
	}
	for name, action := range actions {
		t.Run(name, func(t *testing.T) {
			_, err := action(bye)
			assert.ErrorIs(t, err, ErrByeImmutable)
		})
	}

	assert.Nil(t, bye.Loser())
	assert.Equal(t, "p1", bye.Winner().Player.ID)
	assert.False(t, bye.Played())
}

func TestMatchupTransitionsDoNotAlias(t *testing.T) {
	as := makeAssignments(2)
	first := play(t, NewMatchup("m", as[0], as[1]), 1, 0)
	second, err := first.RecordScore(5, 6)
	require.NoError(t, err)

	assert.Equal(t, 1, *first.Score1)
	assert.Equal(t, 5, *second.Score1)
	assert.Equal(t, "p1", first.WinnerID)
	assert.Equal(t, "p2", second.WinnerID)
}

func TestMatchupKind(t *testing.T) {
	as := makeAssignments(2)
	scheduled := NewMatchup("m", as[0], as[1])

	assert.Equal(t, KindScheduled, scheduled.Kind())
	assert.Equal(t, KindInProgress, play(t, scheduled, 1, 1).Kind())
	assert.Equal(t, KindDecided, play(t, scheduled, 1, 0).Kind())
	assert.Equal(t, KindDrawn, finish(t, scheduled, 1, 1).Kind())
	assert.Equal(t, KindDecided, finish(t, scheduled, 0, 1).Kind())
}

func TestMatchupUnmarshalLegacyStatus(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected MatchStatus
	}{
		{
			name:     "Explicit status is kept",
			body:     `{"id":"m","player1":{"player":{"id":"p1"}},"player2":{"player":{"id":"p2"}},"status":"FINISHED","score1":1,"score2":0,"winnerId":"p1"}`,
			expected: MatchFinished,
		},
		{
			name:     "Bye without status",
			body:     `{"id":"m","player1":{"player":{"id":"p1"}},"player2":null,"winnerId":"p1"}`,
			expected: MatchFinished,
		},
		{
			name:     "Scores without status",
			body:     `{"id":"m","player1":{"player":{"id":"p1"}},"player2":{"player":{"id":"p2"}},"score1":2,"score2":1,"winnerId":"p1"}`,
			expected: MatchInProgress,
		},
		{
			name:     "Nothing recorded",
			body:     `{"id":"m","player1":{"player":{"id":"p1"}},"player2":{"player":{"id":"p2"}}}`,
			expected: MatchScheduled,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var m Matchup
			require.NoError(t, json.Unmarshal([]byte(tc.body), &m))
			assert.Equal(t, tc.expected, m.Status)
		})
	}
}

func must(m Matchup, err error) Matchup {
	if err != nil {
		panic(err)
	}
	return m
}
