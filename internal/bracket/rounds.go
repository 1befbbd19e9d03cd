package bracket

import (
	"fmt"
	"sort"

	"github.com/AdamBeresnev/bracket-master/internal/utils"
)

func MatchID(round, pair int) string {
	return fmt.Sprintf("round-%d-match-%d", round, pair)
}

func ThirdPlaceID(round int) string {
	return fmt.Sprintf("round-%d-3rd-place", round)
}

// PairRound pairs entrants (0,1), (2,3), ... in the given order. An odd entrant out gets a bye
// which is finished on creation.
func PairRound(round int, entrants []Assignment) []Matchup {
	matches := make([]Matchup, 0, (len(entrants)+1)/2)
	for i, pair := 0, 0; i < len(entrants); i, pair = i+2, pair+1 {
		id := MatchID(round, pair)
		if i+1 < len(entrants) {
			matches = append(matches, NewMatchup(id, entrants[i], entrants[i+1]))
		} else {
			matches = append(matches, NewBye(id, entrants[i]))
		}
	}
	return matches
}

// AllMatchesDecided is the gate callers check before advancing a round
func AllMatchesDecided(matches []Matchup) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if !m.Decided() {
			return false
		}
	}
	return true
}

type Advancement struct {
	Round      int         `json:"round"`
	Matches    []Matchup   `json:"matches"`
	LuckyLoser *Assignment `json:"luckyLoser,omitempty"`
	ThirdPlace bool        `json:"thirdPlace"`
}

type loserRecord struct {
	assignment Assignment
	goalDiff   int
	goalsFor   int
}

// Goal difference then goals for, exact ties stay in match order
func rankLosers(losers []loserRecord) {
	sort.SliceStable(losers, func(i, j int) bool {
		if losers[i].goalDiff != losers[j].goalDiff {
			return losers[i].goalDiff > losers[j].goalDiff
		}
		return losers[i].goalsFor > losers[j].goalsFor
	})
}

// Advance builds round+1 from the decided matches of the current round. It returns false,
// and nothing else, when there is no winner to carry forward or the current round already
// is the final.
func Advance(rng Rand, current []Matchup, round int) (Advancement, bool) {
	var active int
	var winners []Assignment
	var losers []loserRecord

	for _, m := range current {
		if m.IsThirdPlace {
			continue
		}
		active++

		winner := m.Winner()
		if winner == nil {
			continue
		}
		winners = append(winners, *winner)

		loser := m.Loser()
		if loser == nil {
			continue
		}
		s1, s2 := utils.OrZero(m.Score1), utils.OrZero(m.Score2)
		rec := loserRecord{assignment: *loser, goalDiff: s2 - s1, goalsFor: s2}
		if loser.Player.ID == m.Player1.Player.ID {
			rec = loserRecord{assignment: *loser, goalDiff: s1 - s2, goalsFor: s1}
		}
		losers = append(losers, rec)
	}

	if len(winners) == 0 {
		return Advancement{}, false
	}
	if len(winners) == 1 && active == 1 {
		return Advancement{}, false
	}

	rankLosers(losers)
	adv := Advancement{Round: round + 1}

	// Lucky loser keeps the field even so byes don't pile up deeper in the bracket
	pool := losers
	if len(winners)%2 != 0 && len(losers) > 0 {
		lucky := losers[0].assignment
		adv.LuckyLoser = &lucky
		winners = append(winners, lucky)
		pool = losers[1:]
	}

	adv.Matches = PairRound(adv.Round, Shuffle(rng, winners))

	if len(adv.Matches) == 1 && len(pool) >= 2 {
		third := NewMatchup(ThirdPlaceID(adv.Round), pool[0].assignment, pool[1].assignment)
		third.IsThirdPlace = true
		third.Score1 = utils.Ptr(0)
		third.Score2 = utils.Ptr(0)
		adv.Matches = append(adv.Matches, third)
		adv.ThirdPlace = true
	}
	return adv, true
}

// FinalMatch returns the final when the round holds nothing but the final and an optional
// third place match
func FinalMatch(matches []Matchup) (Matchup, bool) {
	var final []Matchup
	for _, m := range matches {
		if !m.IsThirdPlace {
			final = append(final, m)
		}
	}
	if len(final) != 1 || final[0].IsBye() {
		return Matchup{}, false
	}
	return final[0], true
}

type Podium struct {
	Champion *Assignment `json:"champion"`
	RunnerUp *Assignment `json:"runnerUp"`
	Third    *Assignment `json:"third,omitempty"`
}

// FinalStanding is only available once every match of the final stage has a winner
func FinalStanding(matches []Matchup) (Podium, bool) {
	final, ok := FinalMatch(matches)
	if !ok || !AllMatchesDecided(matches) {
		return Podium{}, false
	}

	podium := Podium{Champion: final.Winner(), RunnerUp: final.Loser()}
	for _, m := range matches {
		if m.IsThirdPlace {
			podium.Third = m.Winner()
		}
	}
	return podium, true
}

func RoundName(index int, matches []Matchup) string {
	for _, m := range matches {
		if m.IsThirdPlace {
			return "Final & Third Place"
		}
	}
	switch len(matches) {
	case 1:
		return "Final"
	case 2:
		return "Semi-finals"
	case 4:
		return "Quarter-finals"
	case 8:
		return "Round of 16"
	}
	return fmt.Sprintf("Round %d", index+1)
}
