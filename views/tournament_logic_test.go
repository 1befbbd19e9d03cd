package views

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"github.com/AdamBeresnev/bracket-master/internal/presets"
	users "github.com/AdamBeresnev/bracket-master/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedState(t *testing.T, players int, groups bool) bracket.State {
	t.Helper()
	preset, err := presets.Get("worldcup")
	require.NoError(t, err)

	state, err := bracket.NewState().SelectPreset(preset.Name, preset.Teams)
	require.NoError(t, err)
	state, err = state.SetGroupStage(groups)
	require.NoError(t, err)

	names := make([]string, players)
	for i := range names {
		names[i] = fmt.Sprintf("Player %d", i+1)
	}
	next := 0
	state, err = state.AddPlayers(names, func() string {
		next++
		return fmt.Sprintf("p%d", next)
	})
	require.NoError(t, err)

	state, err = state.Start(rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	return state
}

func decideAll(t *testing.T, state bracket.State, matches []bracket.Matchup) bracket.State {
	t.Helper()
	for _, m := range matches {
		if m.Decided() {
			continue
		}
		for _, action := range []bracket.MatchAction{
			{Kind: bracket.ActionStart},
			{Kind: bracket.ActionScore, Score1: 1, Score2: 0},
			{Kind: bracket.ActionFinish},
		} {
			var err error
			state, err = state.ApplyMatchAction(m.ID, action)
			require.NoError(t, err)
		}
	}
	return state
}

func TestPrepareBracketDataSetup(t *testing.T) {
	data := PrepareBracketData(bracket.NewState())
	assert.Equal(t, bracket.StepSelect, data.Step)
	assert.Empty(t, data.Rounds)
	assert.Empty(t, data.Groups)
	assert.Nil(t, data.Champion)
}

func TestPrepareBracketDataKnockout(t *testing.T) {
	state := startedState(t, 3, false)

	data := PrepareBracketData(state)
	require.Len(t, data.Rounds, 1)
	round := data.Rounds[0]
	assert.True(t, round.Current)
	assert.Equal(t, "Semi-finals", round.Name)
	require.Len(t, round.Matches, 2)

	bye := round.Matches[1]
	assert.True(t, bye.IsBye())
	assert.False(t, bye.Editable, "byes are never editable")
	assert.Equal(t, "Walkover", bye.StatusLabel)
	assert.True(t, bye.Player1Won)
	assert.False(t, data.CanAdvance)

	state = decideAll(t, state, state.Matchups)
	data = PrepareBracketData(state)
	assert.True(t, data.CanAdvance)

	state, _, err := state.AdvanceRound(rand.New(rand.NewPCG(5, 6)))
	require.NoError(t, err)
	state = decideAll(t, state, state.Matchups)

	data = PrepareBracketData(state)
	require.Len(t, data.Rounds, 2)
	assert.False(t, data.Rounds[0].Current)
	assert.False(t, data.Rounds[0].Matches[0].Editable, "earlier rounds are read-only")
	assert.Equal(t, "Final", data.Rounds[1].Name)
	require.NotNil(t, data.Podium)
	require.NotNil(t, data.Champion)
	assert.Equal(t, data.Champion.Player.ID, data.Podium.Champion.Player.ID)
	assert.False(t, data.CanAdvance)
	assert.Len(t, data.Stats, 3)
}

func TestPrepareBracketDataGroups(t *testing.T) {
	state := startedState(t, 4, true)
	require.Equal(t, bracket.StageGroups, state.Stage)

	data := PrepareBracketData(state)
	require.Len(t, data.Groups, 1)
	assert.Len(t, data.Groups[0].Standings, 4)
	assert.Len(t, data.Groups[0].Matches, 6)
	assert.True(t, data.Groups[0].Matches[0].Editable)
	assert.False(t, data.GroupsComplete)
	assert.Empty(t, data.Rounds)

	state = decideAll(t, state, state.Groups[0].Matches)
	assert.True(t, PrepareBracketData(state).GroupsComplete)
}

func TestComponentsRender(t *testing.T) {
	state := startedState(t, 4, false)
	tournament := &bracket.Tournament{ID: uuid.New(), OwnerID: users.GuestID, Name: "Derby <night>", State: state}
	all, err := presets.All()
	require.NoError(t, err)

	testCases := []struct {
		name     string
		render   func(buf *bytes.Buffer) error
		contains []string
	}{
		{name: "Login", render: func(buf *bytes.Buffer) error {
			return LoginPage([]string{"discord"}, "invalid email or password").Render(context.Background(), buf)
		}, contains: []string{"/auth/discord", "invalid email or password"}},
		{name: "Index", render: func(buf *bytes.Buffer) error {
			return Index(&users.User{Username: "Ana"}, []bracket.Tournament{*tournament}).Render(context.Background(), buf)
		}, contains: []string{"Hi Ana", "/tournaments/" + tournament.ID.String(), "Derby &lt;night&gt;"}},
		{name: "Organizer", render: func(buf *bytes.Buffer) error {
			return TournamentPage(tournament, all).Render(context.Background(), buf)
		}, contains: []string{"Player 1", "data-action=\"finish\"", "Semi-finals"}},
		{name: "Spectator", render: func(buf *bytes.Buffer) error {
			return SpectatorPage(tournament).Render(context.Background(), buf)
		}, contains: []string{"/spectate/", "Player 4"}},
		{name: "Fragment", render: func(buf *bytes.Buffer) error {
			return BracketFragment(state).Render(context.Background(), buf)
		}, contains: []string{"Semi-finals"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tc.render(&buf))
			for _, s := range tc.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestMatchCard(t *testing.T) {
	home := bracket.Assignment{Player: bracket.Player{ID: "p1", Name: "Ana <3"}, Team: bracket.Team{Name: "Boca"}}
	away := bracket.Assignment{Player: bracket.Player{ID: "p2", Name: "Ben"}, Team: bracket.Team{Name: "River"}}

	testCases := []struct {
		name     string
		match    MatchView
		contains []string
		excludes []string
	}{
		{
			name:     "Read-only result",
			match:    MatchView{Matchup: bracket.NewMatchup("round-1-match-0", home, away), Score1Text: "2", Score2Text: "1", Player1Won: true},
			contains: []string{`data-match="round-1-match-0"`, `<div class="winner">Ana &lt;3`, "River"},
			excludes: []string{"data-action"},
		},
		{
			name:     "Bye",
			match:    MatchView{Matchup: bracket.NewBye("round-1-match-1", home)},
			contains: []string{"BYE"},
			excludes: []string{"River"},
		},
		{
			name:     "Editable level match offers a shootout",
			match:    MatchView{Matchup: bracket.NewMatchup("round-2-match-0", home, away), Editable: true, Shootout: true},
			contains: []string{`data-action="finish"`, `data-winner="p2"`, "Ben wins shootout"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, MatchCard(tc.match).Render(context.Background(), &buf))
			for _, s := range tc.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tc.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
