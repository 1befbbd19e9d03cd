package bracket

import (
	"encoding/json"

	"github.com/AdamBeresnev/bracket-master/internal/utils"
)

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "SCHEDULED"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchFinished   MatchStatus = "FINISHED"
)

// MatchKind is derived from the fields of a Matchup, never stored
type MatchKind int

const (
	KindScheduled MatchKind = iota
	KindInProgress
	KindDecided
	KindDrawn
	KindBye
)

// Score awarded to the player that receives a bye, there is no opponent so it's only cosmetic
const (
	ByeWinnerScore = 3
	ByeLoserScore  = 0
)

type Matchup struct {
	ID      string      `json:"id"`
	Player1 Assignment  `json:"player1"`
	Player2 *Assignment `json:"player2"` // nil is a bye

	WinnerID string `json:"winnerId,omitempty"`
	Score1   *int   `json:"score1,omitempty"`
	Score2   *int   `json:"score2,omitempty"`

	IsThirdPlace bool        `json:"isThirdPlace,omitempty"`
	Status       MatchStatus `json:"status"`
}

func NewMatchup(id string, p1 Assignment, p2 Assignment) Matchup {
	return Matchup{
		ID:      id,
		Player1: p1,
		Player2: &p2,
		Status:  MatchScheduled,
	}
}

func NewBye(id string, p1 Assignment) Matchup {
	return Matchup{
		ID:       id,
		Player1:  p1,
		WinnerID: p1.Player.ID,
		Score1:   utils.Ptr(ByeWinnerScore),
		Score2:   utils.Ptr(ByeLoserScore),
		Status:   MatchFinished,
	}
}

func (m Matchup) IsBye() bool {
	return m.Player2 == nil
}

func (m Matchup) HasScores() bool {
	return m.Score1 != nil && m.Score2 != nil
}

func (m Matchup) Decided() bool {
	return m.WinnerID != ""
}

func (m Matchup) Kind() MatchKind {
	switch {
	case m.IsBye():
		return KindBye
	case m.Status == MatchFinished && m.Decided():
		return KindDecided
	case m.Status == MatchFinished:
		return KindDrawn
	case m.Decided():
		return KindDecided
	case m.Status == MatchInProgress:
		return KindInProgress
	}
	return KindScheduled
}

// Played reports whether the result should count towards tables and statistics.
// Besides FINISHED matches this accepts any started match with both scores, which is how
// snapshots without an explicit status were read. Keep it as a compatibility shim only.
func (m Matchup) Played() bool {
	if m.IsBye() || !m.HasScores() {
		return false
	}
	return m.Status != MatchScheduled
}

func (m Matchup) Involves(playerID string) bool {
	if m.Player1.Player.ID == playerID {
		return true
	}
	return m.Player2 != nil && m.Player2.Player.ID == playerID
}

func (m Matchup) Winner() *Assignment {
	if !m.Decided() {
		return nil
	}
	if m.WinnerID == m.Player1.Player.ID {
		p := m.Player1
		return &p
	}
	if m.Player2 != nil && m.WinnerID == m.Player2.Player.ID {
		p := *m.Player2
		return &p
	}
	return nil
}

// Loser is nil for byes and undecided matches
func (m Matchup) Loser() *Assignment {
	if !m.Decided() || m.IsBye() {
		return nil
	}
	if m.WinnerID == m.Player1.Player.ID {
		p := *m.Player2
		return &p
	}
	if m.WinnerID == m.Player2.Player.ID {
		p := m.Player1
		return &p
	}
	return nil
}

func (m Matchup) Start() (Matchup, error) {
	if m.IsBye() {
		return m, ErrByeImmutable
	}
	if m.Status != MatchScheduled {
		return m, ErrInvalidTransition
	}
	m.Status = MatchInProgress
	return m, nil
}

// RecordScore sets both scores and derives the winner. A level score clears the winner,
// use DecideShootout to settle it.
func (m Matchup) RecordScore(score1, score2 int) (Matchup, error) {
	if m.IsBye() {
		return m, ErrByeImmutable
	}
	if m.Status == MatchFinished {
		return m, ErrInvalidTransition
	}
	if score1 < 0 || score2 < 0 {
		return m, ErrNegativeScore
	}

	m.Score1 = utils.Ptr(score1)
	m.Score2 = utils.Ptr(score2)
	m.Status = MatchInProgress

	switch {
	case score1 > score2:
		m.WinnerID = m.Player1.Player.ID
	case score2 > score1:
		m.WinnerID = m.Player2.Player.ID
	default:
		m.WinnerID = ""
	}
	return m, nil
}

func (m Matchup) DecideShootout(winnerID string) (Matchup, error) {
	if m.IsBye() {
		return m, ErrByeImmutable
	}
	if m.Status == MatchFinished {
		return m, ErrInvalidTransition
	}
	if !m.HasScores() {
		return m, ErrMissingScore
	}
	if *m.Score1 != *m.Score2 {
		return m, ErrScoresNotLevel
	}
	if !m.Involves(winnerID) {
		return m, ErrNotParticipant
	}
	m.WinnerID = winnerID
	return m, nil
}

// Finish closes a started match. allowDraw is only true in the group stage.
func (m Matchup) Finish(allowDraw bool) (Matchup, error) {
	if m.IsBye() {
		return m, ErrByeImmutable
	}
	if m.Status != MatchInProgress {
		return m, ErrInvalidTransition
	}
	if !m.HasScores() {
		return m, ErrMissingScore
	}
	switch {
	case *m.Score1 > *m.Score2:
		m.WinnerID = m.Player1.Player.ID
	case *m.Score2 > *m.Score1:
		m.WinnerID = m.Player2.Player.ID
	case !m.Decided() && !allowDraw:
		return m, ErrUndecidedDraw
	}
	m.Status = MatchFinished
	return m, nil
}

func (m Matchup) Reopen() (Matchup, error) {
	if m.IsBye() {
		return m, ErrByeImmutable
	}
	if m.Status != MatchFinished {
		return m, ErrInvalidTransition
	}
	m.Status = MatchInProgress
	return m, nil
}

// UnmarshalJSON fills in the status of snapshots written before status was stored
func (m *Matchup) UnmarshalJSON(data []byte) error {
	type plain Matchup
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Matchup(p)

	if m.Status == "" {
		switch {
		case m.IsBye():
			m.Status = MatchFinished
		case m.HasScores() || m.Decided():
			m.Status = MatchInProgress
		default:
			m.Status = MatchScheduled
		}
	}
	return nil
}
