package bracket

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Result string

const (
	ResultWin  Result = "W"
	ResultLoss Result = "L"
	ResultDraw Result = "D"
)

type FormEntry struct {
	Result Result `json:"result"`
	Stage  string `json:"stage"`
}

type MatchRecord struct {
	MatchID  string     `json:"matchId"`
	Stage    string     `json:"stage"`
	Opponent Assignment `json:"opponent"`
	ScoreOwn int        `json:"scoreOwn"`
	ScoreOpp int        `json:"scoreOpp"`
	Result   Result     `json:"result"`
}

type PlayerStats struct {
	Player       Player        `json:"player"`
	Team         Team          `json:"team"`
	Played       int           `json:"played"`
	Wins         int           `json:"wins"`
	Draws        int           `json:"draws"`
	Losses       int           `json:"losses"`
	GoalsFor     int           `json:"goalsFor"`
	GoalsAgainst int           `json:"goalsAgainst"`
	Points       int           `json:"points"`
	Form         []FormEntry   `json:"form"`
	History      []MatchRecord `json:"history"`
}

func (p PlayerStats) GoalDifference() int {
	return p.GoalsFor - p.GoalsAgainst
}

func (p PlayerStats) perMatch(v int) float64 {
	played := p.Played
	if played == 0 {
		played = 1
	}
	return float64(v) / float64(played)
}

// StageLabel reads the stage from the match id conventions used by the generators
func StageLabel(m Matchup) string {
	if strings.HasPrefix(m.ID, "g") {
		return "Group Stage"
	}
	if m.IsThirdPlace || strings.HasSuffix(m.ID, "-3rd-place") {
		return "Third Place"
	}
	if strings.HasPrefix(m.ID, "round-") {
		parts := strings.Split(m.ID, "-")
		if r, err := strconv.Atoi(parts[1]); err == nil {
			return fmt.Sprintf("Knockout (R%d)", r)
		}
	}
	return "Tournament"
}

type aggregator struct {
	order []string
	stats map[string]*PlayerStats
}

func (a *aggregator) entry(as Assignment) *PlayerStats {
	if s, ok := a.stats[as.Player.ID]; ok {
		return s
	}
	s := &PlayerStats{Player: as.Player, Team: as.Team}
	a.stats[as.Player.ID] = s
	a.order = append(a.order, as.Player.ID)
	return s
}

func (a *aggregator) add(m Matchup) {
	if !m.Played() {
		return
	}
	p1, p2 := m.Player1, *m.Player2
	// Malformed records are skipped rather than failing the whole table
	if p1.Player.ID == "" || p2.Player.ID == "" || p1.Player.ID == p2.Player.ID {
		return
	}

	s1, s2 := a.entry(p1), a.entry(p2)
	g1, g2 := *m.Score1, *m.Score2

	s1.Played++
	s2.Played++
	s1.GoalsFor += g1
	s1.GoalsAgainst += g2
	s2.GoalsFor += g2
	s2.GoalsAgainst += g1

	res1, res2 := ResultDraw, ResultDraw
	switch {
	case g1 > g2:
		s1.Wins++
		s2.Losses++
		s1.Points += PointsWin
		res1, res2 = ResultWin, ResultLoss
	case g2 > g1:
		s2.Wins++
		s1.Losses++
		s2.Points += PointsWin
		res1, res2 = ResultLoss, ResultWin
	case m.WinnerID == p1.Player.ID:
		s1.Wins++
		s2.Losses++
		s1.Points += PointsShootoutWin
		s2.Points += PointsShootoutLoss
		res1, res2 = ResultWin, ResultLoss
	case m.WinnerID == p2.Player.ID:
		s2.Wins++
		s1.Losses++
		s2.Points += PointsShootoutWin
		s1.Points += PointsShootoutLoss
		res1, res2 = ResultLoss, ResultWin
	default:
		s1.Draws++
		s2.Draws++
		s1.Points += PointsDraw
		s2.Points += PointsDraw
	}

	stage := StageLabel(m)
	s1.Form = append(s1.Form, FormEntry{Result: res1, Stage: stage})
	s2.Form = append(s2.Form, FormEntry{Result: res2, Stage: stage})
	s1.History = append(s1.History, MatchRecord{MatchID: m.ID, Stage: stage, Opponent: p2, ScoreOwn: g1, ScoreOpp: g2, Result: res1})
	s2.History = append(s2.History, MatchRecord{MatchID: m.ID, Stage: stage, Opponent: p1, ScoreOwn: g2, ScoreOpp: g1, Result: res2})
}

// Aggregate walks group matches, then bracket history, then the current round and ranks
// players by points, wins, goal difference and goals for.
func Aggregate(groups []Group, history [][]Matchup, current []Matchup) []PlayerStats {
	a := &aggregator{stats: make(map[string]*PlayerStats)}
	for _, g := range groups {
		for _, m := range g.Matches {
			a.add(m)
		}
	}
	for _, round := range history {
		for _, m := range round {
			a.add(m)
		}
	}
	for _, m := range current {
		a.add(m)
	}

	ranked := make([]PlayerStats, 0, len(a.order))
	for _, id := range a.order {
		ranked = append(ranked, *a.stats[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		x, y := ranked[i], ranked[j]
		if x.Points != y.Points {
			return x.Points > y.Points
		}
		if x.Wins != y.Wins {
			return x.Wins > y.Wins
		}
		if x.GoalDifference() != y.GoalDifference() {
			return x.GoalDifference() > y.GoalDifference()
		}
		return x.GoalsFor > y.GoalsFor
	})
	return ranked
}

type Awards struct {
	TopScorer    *PlayerStats `json:"topScorer,omitempty"`
	MostDefeated *PlayerStats `json:"mostDefeated,omitempty"`
	BestAttack   *PlayerStats `json:"bestAttack,omitempty"`
	BestDefense  *PlayerStats `json:"bestDefense,omitempty"`
}

// ComputeAwards expects the ranked output of Aggregate, ties go to the higher ranked player
func ComputeAwards(stats []PlayerStats) Awards {
	var awards Awards
	for i := range stats {
		s := &stats[i]
		if awards.TopScorer == nil || s.GoalsFor > awards.TopScorer.GoalsFor {
			awards.TopScorer = s
		}
		if awards.MostDefeated == nil || s.Losses > awards.MostDefeated.Losses ||
			(s.Losses == awards.MostDefeated.Losses && s.GoalsAgainst > awards.MostDefeated.GoalsAgainst) {
			awards.MostDefeated = s
		}
		if awards.BestAttack == nil || s.perMatch(s.GoalsFor) > awards.BestAttack.perMatch(awards.BestAttack.GoalsFor) {
			awards.BestAttack = s
		}
		if awards.BestDefense == nil || s.perMatch(s.GoalsAgainst) < awards.BestDefense.perMatch(awards.BestDefense.GoalsAgainst) {
			awards.BestDefense = s
		}
	}
	return awards
}
