package bracket

import "strings"

func (s State) SelectPreset(name string, teams []Team) (State, error) {
	if s.Step == StepGame {
		return s, ErrAlreadyStarted
	}
	next := s.clone()
	next.TournamentType = name
	next.CurrentTeams = append([]Team{}, teams...)
	next.Step = StepPlayers
	return next, nil
}

func (s State) SetGroupStage(enabled bool) (State, error) {
	if s.Step == StepGame {
		return s, ErrAlreadyStarted
	}
	next := s.clone()
	next.UseGroupStage = enabled
	return next, nil
}

// AddPlayers registers names as new players. The roster importer is responsible for
// deduplication, blank names are skipped here.
func (s State) AddPlayers(names []string, newID func() string) (State, error) {
	if s.Step == StepGame {
		return s, ErrAlreadyStarted
	}
	next := s.clone()
	added := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		next.Players = append(next.Players, Player{ID: newID(), Name: name})
		added++
	}
	if added == 0 {
		return s, ErrEmptyName
	}
	return next, nil
}

func (s State) RemovePlayer(id string) (State, error) {
	if s.Step == StepGame {
		return s, ErrAlreadyStarted
	}
	next := s.clone()
	next.Players = next.Players[:0]
	for _, p := range s.Players {
		if p.ID != id {
			next.Players = append(next.Players, p)
		}
	}
	if len(next.Players) == len(s.Players) {
		return s, ErrPlayerNotFound
	}
	return next, nil
}

func (s State) AddTeam(team Team) (State, error) {
	if s.Step == StepGame {
		return s, ErrAlreadyStarted
	}
	if strings.TrimSpace(team.Name) == "" {
		return s, ErrEmptyName
	}
	next := s.clone()
	next.CurrentTeams = append(next.CurrentTeams, team)
	return next, nil
}

func (s State) UpdateTeam(index int, team Team) (State, error) {
	if s.Step == StepGame {
		return s, ErrAlreadyStarted
	}
	if index < 0 || index >= len(s.CurrentTeams) {
		return s, ErrTeamIndex
	}
	if strings.TrimSpace(team.Name) == "" {
		return s, ErrEmptyName
	}
	next := s.clone()
	next.CurrentTeams[index] = team
	return next, nil
}

func (s State) RemoveTeam(index int) (State, error) {
	if s.Step == StepGame {
		return s, ErrAlreadyStarted
	}
	if index < 0 || index >= len(s.CurrentTeams) {
		return s, ErrTeamIndex
	}
	next := s.clone()
	next.CurrentTeams = append(next.CurrentTeams[:index], next.CurrentTeams[index+1:]...)
	return next, nil
}

func (s State) ResetTeams(teams []Team) (State, error) {
	if s.Step == StepGame {
		return s, ErrAlreadyStarted
	}
	next := s.clone()
	next.CurrentTeams = append([]Team{}, teams...)
	return next, nil
}

// Start performs the initial draw. With the group stage enabled and at least four players it
// opens the group stage, otherwise it goes straight to a shuffled first knockout round.
func (s State) Start(rng Rand) (State, error) {
	if s.Step == StepGame {
		return s, ErrAlreadyStarted
	}
	if len(s.Players) < 2 {
		return s, ErrNotEnoughPlayers
	}
	assignments, err := Draw(rng, s.Players, s.CurrentTeams)
	if err != nil {
		return s, err
	}

	next := s.clone()
	next.Step = StepGame
	next.Round = 1
	next.History = [][]Matchup{}

	if s.UseGroupStage && len(assignments) >= MinPlayersForGroups {
		groups, err := GenerateGroups(rng, assignments)
		if err != nil {
			return s, err
		}
		next.Stage = StageGroups
		next.Groups = groups
		next.Matchups = []Matchup{}
		return next, nil
	}

	next.Stage = StageBracket
	next.Groups = []Group{}
	next.Matchups = PairRound(1, Shuffle(rng, assignments))
	return next, nil
}

type MatchUpdate func(Matchup) (Matchup, error)

func (s State) UpdateGroupMatch(groupID, matchID string, update MatchUpdate) (State, error) {
	if s.Stage != StageGroups {
		return s, ErrWrongStage
	}
	for gi, g := range s.Groups {
		if g.ID != groupID {
			continue
		}
		for mi, m := range g.Matches {
			if m.ID != matchID {
				continue
			}
			updated, err := update(m)
			if err != nil {
				return s, err
			}
			next := s.clone()
			next.Groups[gi].Matches[mi] = updated
			return next, nil
		}
		return s, ErrMatchNotFound
	}
	return s, ErrGroupNotFound
}

// UpdateMatch changes a match of the current knockout round, earlier rounds are frozen
func (s State) UpdateMatch(matchID string, update MatchUpdate) (State, error) {
	if s.Stage != StageBracket {
		return s, ErrWrongStage
	}
	for i, m := range s.Matchups {
		if m.ID != matchID {
			continue
		}
		updated, err := update(m)
		if err != nil {
			return s, err
		}
		next := s.clone()
		next.Matchups[i] = updated
		return next, nil
	}
	return s, ErrMatchNotFound
}

type ActionKind string

const (
	ActionStart    ActionKind = "start"
	ActionScore    ActionKind = "score"
	ActionShootout ActionKind = "shootout"
	ActionFinish   ActionKind = "finish"
	ActionReopen   ActionKind = "reopen"
)

type MatchAction struct {
	Kind     ActionKind `json:"action"`
	Score1   int        `json:"score1"`
	Score2   int        `json:"score2"`
	WinnerID string     `json:"winnerId"`
}

func (a MatchAction) update(allowDraw bool) MatchUpdate {
	return func(m Matchup) (Matchup, error) {
		switch a.Kind {
		case ActionStart:
			return m.Start()
		case ActionScore:
			return m.RecordScore(a.Score1, a.Score2)
		case ActionShootout:
			return m.DecideShootout(a.WinnerID)
		case ActionFinish:
			return m.Finish(allowDraw)
		case ActionReopen:
			return m.Reopen()
		}
		return m, ErrInvalidTransition
	}
}

// ApplyMatchAction finds the match by id in the active stage and applies the action to it
func (s State) ApplyMatchAction(matchID string, action MatchAction) (State, error) {
	if s.Step != StepGame {
		return s, ErrWrongStage
	}
	if s.Stage == StageGroups {
		for _, g := range s.Groups {
			for _, m := range g.Matches {
				if m.ID == matchID {
					return s.UpdateGroupMatch(g.ID, matchID, action.update(true))
				}
			}
		}
		return s, ErrMatchNotFound
	}
	return s.UpdateMatch(matchID, action.update(false))
}

// AdvanceToBracket seeds the first knockout round with the shuffled group qualifiers
func (s State) AdvanceToBracket(rng Rand) (State, error) {
	if s.Stage != StageGroups {
		return s, ErrWrongStage
	}
	qualified, err := Qualifiers(s.Groups)
	if err != nil {
		return s, err
	}

	next := s.clone()
	next.Stage = StageBracket
	next.Round = 1
	next.History = [][]Matchup{}
	next.Matchups = PairRound(1, Shuffle(rng, qualified))
	return next, nil
}

// AdvanceRound moves the decided current round into history and draws the next one
func (s State) AdvanceRound(rng Rand) (State, Advancement, error) {
	if s.Stage != StageBracket || s.Step != StepGame {
		return s, Advancement{}, ErrWrongStage
	}
	if !AllMatchesDecided(s.Matchups) {
		return s, Advancement{}, ErrRoundUndecided
	}
	adv, ok := Advance(rng, s.Matchups, s.Round)
	if !ok {
		return s, Advancement{}, ErrNothingToAdvance
	}

	next := s.clone()
	next.History = append(next.History, append([]Matchup(nil), s.Matchups...))
	next.Round = adv.Round
	next.Matchups = adv.Matches
	return next, adv, nil
}
