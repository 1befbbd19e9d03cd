package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StageGroups  Stage = "GROUPS"
	StageBracket Stage = "BRACKET"
)

// Step is where the organizer is in the setup flow
type Step string

const (
	StepSelect  Step = "select"
	StepPlayers Step = "players"
	StepGame    Step = "game"
)

// State is the whole serializable tournament snapshot. Transitions never modify a State in
// place, they return a new one, so any snapshot handed to storage stays consistent.
type State struct {
	Step           Step        `json:"step"`
	TournamentType string      `json:"tournamentType"`
	UseGroupStage  bool        `json:"useGroupStage"`
	Players        []Player    `json:"players"`
	Stage          Stage       `json:"stage"`
	CurrentTeams   []Team      `json:"currentTeams"`
	Groups         []Group     `json:"groups"`
	Matchups       []Matchup   `json:"matchups"`
	History        [][]Matchup `json:"history"`
	Round          int         `json:"round"`
}

// Tournament is one named save of an organizer
type Tournament struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"ownerId"`
	Name      string    `db:"name" json:"name"`
	State     State     `db:"state" json:"state"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func NewState() State {
	return State{
		Step:         StepSelect,
		Players:      []Player{},
		Stage:        StageBracket,
		CurrentTeams: []Team{},
		Groups:       []Group{},
		Matchups:     []Matchup{},
		History:      [][]Matchup{},
		Round:        1,
	}
}

func (s State) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *State) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("%w: unsupported column type %T", ErrCorruptState, src)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return nil
}

func (s State) clone() State {
	c := s
	c.Players = slices.Clone(s.Players)
	c.CurrentTeams = slices.Clone(s.CurrentTeams)
	c.Matchups = slices.Clone(s.Matchups)

	c.Groups = make([]Group, len(s.Groups))
	for i, g := range s.Groups {
		c.Groups[i] = Group{
			ID:          g.ID,
			Assignments: slices.Clone(g.Assignments),
			Matches:     slices.Clone(g.Matches),
		}
	}

	c.History = make([][]Matchup, len(s.History))
	for i, round := range s.History {
		c.History[i] = slices.Clone(round)
	}
	return c
}

// Validate checks a snapshot for references the engine cannot work with. Loaders run it
// before handing a stored state to any transition.
func (s State) Validate() error {
	if s.Round < 1 {
		return fmt.Errorf("%w: round %d", ErrCorruptState, s.Round)
	}
	if s.Stage != StageGroups && s.Stage != StageBracket {
		return fmt.Errorf("%w: unknown stage %q", ErrCorruptState, s.Stage)
	}
	if s.Stage == StageBracket && len(s.History) > 0 && len(s.History)+1 != s.Round {
		return fmt.Errorf("%w: %d completed rounds but current round is %d", ErrCorruptState, len(s.History), s.Round)
	}

	players := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		if p.ID == "" {
			return fmt.Errorf("%w: player %q has no id", ErrCorruptState, p.Name)
		}
		if players[p.ID] {
			return fmt.Errorf("%w: duplicate player id %s", ErrCorruptState, p.ID)
		}
		players[p.ID] = true
	}

	matchIDs := make(map[string]bool)
	checkMatch := func(m Matchup) error {
		if matchIDs[m.ID] {
			return fmt.Errorf("%w: duplicate match id %s", ErrCorruptState, m.ID)
		}
		matchIDs[m.ID] = true
		if !players[m.Player1.Player.ID] {
			return fmt.Errorf("%w: match %s references unknown player %s", ErrCorruptState, m.ID, m.Player1.Player.ID)
		}
		if m.Player2 != nil && !players[m.Player2.Player.ID] {
			return fmt.Errorf("%w: match %s references unknown player %s", ErrCorruptState, m.ID, m.Player2.Player.ID)
		}
		if m.WinnerID != "" && !m.Involves(m.WinnerID) {
			return fmt.Errorf("%w: match %s winner %s did not play", ErrCorruptState, m.ID, m.WinnerID)
		}
		return nil
	}

	grouped := make(map[string]string)
	for _, g := range s.Groups {
		for _, a := range g.Assignments {
			if !players[a.Player.ID] {
				return fmt.Errorf("%w: group %s references unknown player %s", ErrCorruptState, g.ID, a.Player.ID)
			}
			if other, ok := grouped[a.Player.ID]; ok {
				return fmt.Errorf("%w: player %s is in groups %s and %s", ErrCorruptState, a.Player.ID, other, g.ID)
			}
			grouped[a.Player.ID] = g.ID
		}
		for _, m := range g.Matches {
			if err := checkMatch(m); err != nil {
				return err
			}
		}
	}
	for _, round := range s.History {
		for _, m := range round {
			if err := checkMatch(m); err != nil {
				return err
			}
		}
	}
	for _, m := range s.Matchups {
		if err := checkMatch(m); err != nil {
			return err
		}
	}
	return nil
}

// Assignments lists everyone who has been drawn, sorted by player name
func (s State) Assignments() []Assignment {
	seen := make(map[string]Assignment)
	for _, g := range s.Groups {
		for _, a := range g.Assignments {
			seen[a.Player.ID] = a
		}
	}
	add := func(m Matchup) {
		seen[m.Player1.Player.ID] = m.Player1
		if m.Player2 != nil {
			seen[m.Player2.Player.ID] = *m.Player2
		}
	}
	for _, round := range s.History {
		for _, m := range round {
			add(m)
		}
	}
	for _, m := range s.Matchups {
		add(m)
	}

	out := make([]Assignment, 0, len(seen))
	for _, a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Player.Name != out[j].Player.Name {
			return out[i].Player.Name < out[j].Player.Name
		}
		return out[i].Player.ID < out[j].Player.ID
	})
	return out
}

// Champion is the winner of the final. A pending third place match does not hold it back,
// only the full podium waits for that.
func (s State) Champion() *Assignment {
	if s.Stage != StageBracket {
		return nil
	}
	final, ok := FinalMatch(s.Matchups)
	if !ok {
		return nil
	}
	return final.Winner()
}

func (s State) Stats() []PlayerStats {
	return Aggregate(s.Groups, s.History, s.Matchups)
}
