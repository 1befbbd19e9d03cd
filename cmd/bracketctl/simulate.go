package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"github.com/AdamBeresnev/bracket-master/internal/presets"
	"github.com/AdamBeresnev/bracket-master/internal/service"
	"github.com/brianvoe/gofakeit/v7"
)

// maxRounds stops a simulation that never reaches a final, which would mean an engine bug
const maxRounds = 32

const maxGoals = 5

type simulation struct {
	Preset   string
	Players  int
	Groups   bool
	Seed     uint64
	Names    []string
	Progress io.Writer
}

// randomNames draws distinct first names so the printed tables stay readable
func randomNames(seed uint64, n int) []string {
	faker := gofakeit.New(seed)
	seen := make(map[string]bool, n)
	names := make([]string, 0, n)
	for len(names) < n {
		name := faker.FirstName()
		if seen[name] {
			name = fmt.Sprintf("%s %s", name, faker.LastName())
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func (sim simulation) run() (bracket.State, error) {
	preset, err := presets.Get(sim.Preset)
	if err != nil {
		return bracket.State{}, err
	}
	rng := service.NewRand(&sim.Seed)
	progress := sim.Progress
	if progress == nil {
		progress = io.Discard
	}

	names := sim.Names
	if len(names) == 0 {
		names = randomNames(sim.Seed, sim.Players)
	}

	state, err := bracket.NewState().SelectPreset(preset.Name, preset.Teams)
	if err != nil {
		return state, err
	}
	if state, err = state.SetGroupStage(sim.Groups); err != nil {
		return state, err
	}
	next := 0
	state, err = state.AddPlayers(names, func() string {
		next++
		return fmt.Sprintf("p%d", next)
	})
	if err != nil {
		return state, err
	}
	if state, err = state.Start(rng); err != nil {
		return state, err
	}

	if state.Stage == bracket.StageGroups {
		for _, g := range state.Groups {
			if state, err = playAll(state, rng, g.Matches, progress); err != nil {
				return state, err
			}
		}
		if state, err = state.AdvanceToBracket(rng); err != nil {
			return state, err
		}
	}

	for range maxRounds {
		if state, err = playAll(state, rng, state.Matchups, progress); err != nil {
			return state, err
		}
		if state.Champion() != nil {
			return state, nil
		}
		var adv bracket.Advancement
		if state, adv, err = state.AdvanceRound(rng); err != nil {
			return state, err
		}
		if adv.LuckyLoser != nil {
			fmt.Fprintf(progress, "lucky loser: %s\n", adv.LuckyLoser.Player.Name)
		}
	}
	return state, errors.New("simulation did not produce a champion")
}

// playAll gives every undecided match a random score. Level knockout games go to a shootout.
func playAll(state bracket.State, rng bracket.Rand, matches []bracket.Matchup, progress io.Writer) (bracket.State, error) {
	knockout := state.Stage == bracket.StageBracket
	for _, m := range matches {
		if m.Decided() {
			continue
		}
		score1, score2 := rng.IntN(maxGoals), rng.IntN(maxGoals)
		actions := []bracket.MatchAction{
			{Kind: bracket.ActionStart},
			{Kind: bracket.ActionScore, Score1: score1, Score2: score2},
		}
		if knockout && score1 == score2 {
			winner := m.Player1.PlayerID()
			if rng.IntN(2) == 1 {
				winner = m.Player2.PlayerID()
			}
			actions = append(actions, bracket.MatchAction{Kind: bracket.ActionShootout, WinnerID: winner})
		}
		actions = append(actions, bracket.MatchAction{Kind: bracket.ActionFinish})

		var err error
		for _, action := range actions {
			if state, err = state.ApplyMatchAction(m.ID, action); err != nil {
				return state, fmt.Errorf("match %s: %w", m.ID, err)
			}
		}
		fmt.Fprintf(progress, "%-22s %s %d-%d %s\n", bracket.StageLabel(m), m.Player1.Player.Name, score1, score2, m.Player2.Player.Name)
	}
	return state, nil
}

func printReport(w io.Writer, state bracket.State) error {
	report := service.NewStatsReport(state)

	if report.Podium != nil {
		fmt.Fprintf(w, "Champion:  %s (%s)\n", report.Podium.Champion.Player.Name, report.Podium.Champion.Team.Name)
		fmt.Fprintf(w, "Runner-up: %s (%s)\n", report.Podium.RunnerUp.Player.Name, report.Podium.RunnerUp.Team.Name)
		if report.Podium.Third != nil {
			fmt.Fprintf(w, "Third:     %s (%s)\n", report.Podium.Third.Player.Name, report.Podium.Third.Team.Name)
		}
		fmt.Fprintln(w)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tTEAM\tP\tW\tD\tL\tGF\tGA\tPTS")
	for _, s := range report.Stats {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			s.Player.Name, s.Team.Name, s.Played, s.Wins, s.Draws, s.Losses, s.GoalsFor, s.GoalsAgainst, s.Points)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	awards := []struct {
		label string
		stats *bracket.PlayerStats
	}{
		{"Top scorer", report.Awards.TopScorer},
		{"Most defeated", report.Awards.MostDefeated},
		{"Best attack", report.Awards.BestAttack},
		{"Best defense", report.Awards.BestDefense},
	}
	fmt.Fprintln(w)
	for _, a := range awards {
		if a.stats != nil {
			fmt.Fprintf(w, "%-14s %s\n", a.label+":", a.stats.Player.Name)
		}
	}
	return nil
}
