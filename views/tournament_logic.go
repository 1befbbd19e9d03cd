package views

import (
	"strconv"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
)

type MatchView struct {
	bracket.Matchup
	Label       string
	Score1Text  string
	Score2Text  string
	Player1Won  bool
	Player2Won  bool
	Editable    bool
	Shootout    bool
	StatusLabel string
}

type RoundView struct {
	Number  int
	Name    string
	Current bool
	Matches []MatchView
}

type GroupView struct {
	ID        string
	Standings []bracket.Standing
	Matches   []MatchView
}

type BracketData struct {
	TournamentType string
	Step           bracket.Step
	Stage          bracket.Stage
	Round          int
	Players        []bracket.Player
	Teams          []bracket.Team
	UseGroupStage  bool
	Groups         []GroupView
	GroupsComplete bool
	Rounds         []RoundView
	CanAdvance     bool
	Champion       *bracket.Assignment
	Podium         *bracket.Podium
	Stats          []bracket.PlayerStats
	Awards         bracket.Awards
}

func scoreText(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func statusLabel(m bracket.Matchup) string {
	switch m.Kind() {
	case bracket.KindBye:
		return "Walkover"
	case bracket.KindInProgress:
		return "Live"
	case bracket.KindDecided:
		return "Final"
	case bracket.KindDrawn:
		return "Draw"
	}
	return "Scheduled"
}

func newMatchView(m bracket.Matchup, editable bool) MatchView {
	view := MatchView{
		Matchup:     m,
		Label:       bracket.StageLabel(m),
		Score1Text:  scoreText(m.Score1),
		Score2Text:  scoreText(m.Score2),
		Editable:    editable && !m.IsBye(),
		StatusLabel: statusLabel(m),
	}
	if m.WinnerID != "" {
		view.Player1Won = m.WinnerID == m.Player1.Player.ID
		view.Player2Won = m.Player2 != nil && m.WinnerID == m.Player2.Player.ID
	}
	if m.Player2 != nil && m.Score1 != nil && m.Score2 != nil && *m.Score1 == *m.Score2 {
		view.Shootout = true
	}
	return view
}

// PrepareBracketData turns a state snapshot into everything the organizer and spectator
// pages render, so the templates hold no tournament logic
func PrepareBracketData(state bracket.State) BracketData {
	data := BracketData{
		TournamentType: state.TournamentType,
		Step:           state.Step,
		Stage:          state.Stage,
		Round:          state.Round,
		Players:        state.Players,
		Teams:          state.CurrentTeams,
		UseGroupStage:  state.UseGroupStage,
		Champion:       state.Champion(),
	}
	if state.Step != bracket.StepGame {
		return data
	}

	inGroups := state.Stage == bracket.StageGroups
	for _, g := range state.Groups {
		view := GroupView{ID: g.ID, Standings: bracket.GroupStandings(g)}
		for _, m := range g.Matches {
			view.Matches = append(view.Matches, newMatchView(m, inGroups))
		}
		data.Groups = append(data.Groups, view)
	}
	data.GroupsComplete = len(state.Groups) > 0 && bracket.GroupsComplete(state.Groups)

	if state.Stage == bracket.StageBracket {
		for i, round := range state.History {
			data.Rounds = append(data.Rounds, newRoundView(i, round, false))
		}
		data.Rounds = append(data.Rounds, newRoundView(len(state.History), state.Matchups, true))
		if podium, ok := bracket.FinalStanding(state.Matchups); ok {
			data.Podium = &podium
		} else {
			data.CanAdvance = bracket.AllMatchesDecided(state.Matchups)
		}
	}

	data.Stats = state.Stats()
	data.Awards = bracket.ComputeAwards(data.Stats)
	return data
}

func newRoundView(index int, matches []bracket.Matchup, current bool) RoundView {
	view := RoundView{
		Number:  index + 1,
		Name:    bracket.RoundName(index, matches),
		Current: current,
	}
	for _, m := range matches {
		view.Matches = append(view.Matches, newMatchView(m, current))
	}
	return view
}
