package bracket

import "errors"

// Precondition violations. State transitions return these together with the unchanged state.
var (
	ErrNoPlayers         = errors.New("no players registered")
	ErrNotEnoughPlayers  = errors.New("at least two players are required")
	ErrNotEnoughTeams    = errors.New("not enough teams for the registered players")
	ErrTooFewForGroups   = errors.New("group stage needs at least four players")
	ErrGroupsIncomplete  = errors.New("group matches are still being played")
	ErrRoundUndecided    = errors.New("not every match in the round has a winner")
	ErrNothingToAdvance  = errors.New("round cannot be advanced")
	ErrWrongStage        = errors.New("operation not allowed in the current stage")
	ErrAlreadyStarted    = errors.New("tournament has already started")
	ErrMatchNotFound     = errors.New("match not found")
	ErrGroupNotFound     = errors.New("group not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrTeamIndex         = errors.New("team index out of range")
	ErrEmptyName         = errors.New("name must not be empty")
	ErrByeImmutable      = errors.New("bye matches cannot be changed")
	ErrInvalidTransition = errors.New("invalid match status transition")
	ErrNotParticipant    = errors.New("winner is not part of this match")
	ErrScoresNotLevel    = errors.New("shootout winner can only be set on a level score")
	ErrUndecidedDraw     = errors.New("knockout match cannot finish without a winner")
	ErrNegativeScore     = errors.New("scores must not be negative")
	ErrMissingScore      = errors.New("match has no score")
)

// ErrCorruptState marks a data integrity violation in a state snapshot
var ErrCorruptState = errors.New("corrupt tournament state")
