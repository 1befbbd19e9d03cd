package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"github.com/AdamBeresnev/bracket-master/internal/middleware"
	"github.com/AdamBeresnev/bracket-master/internal/presets"
	"github.com/AdamBeresnev/bracket-master/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Publisher receives every committed state, spectators subscribe through it
type Publisher interface {
	Publish(tournamentID string, state bracket.State)
}

type TournamentService struct {
	db        *sqlx.DB
	store     *store.TournamentStore
	publisher Publisher
	metrics   *Metrics
	rng       bracket.Rand
	newID     func() string
	strict    bool
}

type Option func(*TournamentService)

func WithPublisher(p Publisher) Option {
	return func(s *TournamentService) { s.publisher = p }
}

func WithMetrics(m *Metrics) Option {
	return func(s *TournamentService) { s.metrics = m }
}

func WithRand(rng bracket.Rand) Option {
	return func(s *TournamentService) { s.rng = &lockedRand{r: rng} }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *TournamentService) { s.newID = newID }
}

// WithStrictValidation makes a transition that yields an invalid state fail the request
// instead of only being logged. Development builds turn it on.
func WithStrictValidation(strict bool) Option {
	return func(s *TournamentService) { s.strict = strict }
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, opts ...Option) *TournamentService {
	s := &TournamentService{
		db:    db,
		store: store,
		rng:   NewRand(nil),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRand returns a goroutine safe source for draws. A nil seed picks a random one.
func NewRand(seed *uint64) bracket.Rand {
	var s uint64
	if seed != nil {
		s = *seed
	} else {
		s = rand.Uint64()
	}
	return &lockedRand{r: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

type lockedRand struct {
	mu sync.Mutex
	r  bracket.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func ownerFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, ErrUnauthenticated
	}
	return userID, nil
}

func (s *TournamentService) CreateTournament(ctx context.Context, name string) (*bracket.Tournament, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament := &bracket.Tournament{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    name,
		State:   bracket.NewState(),
	}
	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("tournament created", "tournament_id", tournament.ID, "owner_id", ownerID)
	return tournament, nil
}

// GetTournament returns a save of the current user. Saves of other users look missing.
func (s *TournamentService) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	tournament, err := s.loadTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.OwnerID != ownerID {
		return nil, ErrTournamentNotFound
	}
	return tournament, nil
}

// GetSpectatorTournament is the read-only lookup used by the public spectator page
func (s *TournamentService) GetSpectatorTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	return s.loadTournament(ctx, id)
}

func (s *TournamentService) loadTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrTournamentNotFound
	}
	tournament, err := s.store.GetTournament(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *TournamentService) GetTournamentsForUser(ctx context.Context) ([]bracket.Tournament, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetTournamentsByOwner(ctx, ownerID)
}

func (s *TournamentService) RenameTournament(ctx context.Context, id, name string) error {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
	}
	err = s.store.RenameTournament(ctx, id, ownerID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentNotFound
	}
	return err
}

func (s *TournamentService) DeleteTournament(ctx context.Context, id string) error {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return err
	}
	err = s.store.DeleteTournament(ctx, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentNotFound
	}
	if err == nil {
		slog.Info("tournament deleted", "tournament_id", id)
	}
	return err
}

type transition func(bracket.State) (bracket.State, error)

// mutate loads, transforms and stores the state of one tournament inside a single
// transaction. Committed states are published to spectators afterwards.
func (s *TournamentService) mutate(ctx context.Context, id, operation string, apply transition) (*bracket.Tournament, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrTournamentNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		s.metrics.transition(operation, outcomeFailed)
		return nil, err
	}
	if tournament.OwnerID != ownerID {
		return nil, ErrTournamentNotFound
	}

	previous := tournament.State
	next, err := apply(previous)
	if err != nil {
		s.metrics.transition(operation, outcomeRejected)
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if err := next.Validate(); err != nil {
		if s.strict {
			s.metrics.transition(operation, outcomeFailed)
			return nil, fmt.Errorf("%s produced an invalid state: %w", operation, err)
		}
		slog.Error("transition produced an invalid state", "tournament_id", id, "operation", operation, "error", err)
	}

	if err := s.store.UpdateStateTx(ctx, tx, id, next); err != nil {
		s.metrics.transition(operation, outcomeFailed)
		return nil, fmt.Errorf("failed to save tournament state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		s.metrics.transition(operation, outcomeFailed)
		return nil, err
	}

	tournament.State = next
	s.metrics.transition(operation, outcomeApplied)
	if previous.Champion() == nil && next.Champion() != nil {
		s.metrics.tournamentFinished()
		slog.Info("tournament finished", "tournament_id", id, "champion", next.Champion().Player.Name)
	}
	if s.publisher != nil {
		s.publisher.Publish(id, next)
	}

	slog.Debug("tournament updated", "tournament_id", id, "operation", operation,
		"stage", next.Stage, "round", next.Round, "matches", len(next.Matchups))
	return tournament, nil
}

func (s *TournamentService) SelectPreset(ctx context.Context, id, presetKey string) (*bracket.Tournament, error) {
	preset, err := presets.Get(presetKey)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, "select_preset", func(state bracket.State) (bracket.State, error) {
		return state.SelectPreset(preset.Name, preset.Teams)
	})
}

func (s *TournamentService) SetGroupStage(ctx context.Context, id string, enabled bool) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, "set_group_stage", func(state bracket.State) (bracket.State, error) {
		return state.SetGroupStage(enabled)
	})
}

func (s *TournamentService) AddPlayers(ctx context.Context, id string, names []string) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, "add_players", func(state bracket.State) (bracket.State, error) {
		return state.AddPlayers(names, s.newID)
	})
}

func (s *TournamentService) RemovePlayer(ctx context.Context, id, playerID string) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, "remove_player", func(state bracket.State) (bracket.State, error) {
		return state.RemovePlayer(playerID)
	})
}

func (s *TournamentService) AddTeam(ctx context.Context, id string, team bracket.Team) (*bracket.Tournament, error) {
	if team.ID == "" {
		team.ID = s.newID()
	}
	return s.mutate(ctx, id, "add_team", func(state bracket.State) (bracket.State, error) {
		return state.AddTeam(team)
	})
}

func (s *TournamentService) UpdateTeam(ctx context.Context, id string, index int, team bracket.Team) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, "update_team", func(state bracket.State) (bracket.State, error) {
		if team.ID == "" && index >= 0 && index < len(state.CurrentTeams) {
			team.ID = state.CurrentTeams[index].ID
		}
		return state.UpdateTeam(index, team)
	})
}

func (s *TournamentService) RemoveTeam(ctx context.Context, id string, index int) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, "remove_team", func(state bracket.State) (bracket.State, error) {
		return state.RemoveTeam(index)
	})
}

// ResetTeams restores the team pool of the preset the tournament was created from
func (s *TournamentService) ResetTeams(ctx context.Context, id string) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, "reset_teams", func(state bracket.State) (bracket.State, error) {
		preset, err := presets.Get(state.TournamentType)
		if err != nil {
			return state, err
		}
		return state.ResetTeams(preset.Teams)
	})
}

func (s *TournamentService) Start(ctx context.Context, id string) (*bracket.Tournament, error) {
	tournament, err := s.mutate(ctx, id, "start", func(state bracket.State) (bracket.State, error) {
		return state.Start(s.rng)
	})
	if err == nil {
		slog.Info("tournament started", "tournament_id", id, "stage", tournament.State.Stage,
			"players", len(tournament.State.Players))
	}
	return tournament, err
}

func (s *TournamentService) ApplyMatchAction(ctx context.Context, id, matchID string, action bracket.MatchAction) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, "match_"+string(action.Kind), func(state bracket.State) (bracket.State, error) {
		return state.ApplyMatchAction(matchID, action)
	})
}

func (s *TournamentService) AdvanceToBracket(ctx context.Context, id string) (*bracket.Tournament, error) {
	tournament, err := s.mutate(ctx, id, "advance_to_bracket", func(state bracket.State) (bracket.State, error) {
		return state.AdvanceToBracket(s.rng)
	})
	if err == nil {
		slog.Info("group stage finished", "tournament_id", id, "matches", len(tournament.State.Matchups))
	}
	return tournament, err
}

func (s *TournamentService) AdvanceRound(ctx context.Context, id string) (*bracket.Tournament, bracket.Advancement, error) {
	var adv bracket.Advancement
	tournament, err := s.mutate(ctx, id, "advance_round", func(state bracket.State) (bracket.State, error) {
		next, a, err := state.AdvanceRound(s.rng)
		adv = a
		return next, err
	})
	if err != nil {
		return nil, bracket.Advancement{}, err
	}

	s.metrics.roundAdvanced()
	attrs := []any{"tournament_id", id, "round", adv.Round, "matches", len(adv.Matches), "third_place", adv.ThirdPlace}
	if adv.LuckyLoser != nil {
		attrs = append(attrs, "lucky_loser", adv.LuckyLoser.Player.Name)
	}
	slog.Info("round advanced", attrs...)
	return tournament, adv, nil
}

type StatsReport struct {
	Stats  []bracket.PlayerStats `json:"stats"`
	Awards bracket.Awards        `json:"awards"`
	Podium *bracket.Podium       `json:"podium,omitempty"`
}

func NewStatsReport(state bracket.State) StatsReport {
	stats := state.Stats()
	report := StatsReport{Stats: stats, Awards: bracket.ComputeAwards(stats)}
	if state.Stage == bracket.StageBracket {
		if podium, ok := bracket.FinalStanding(state.Matchups); ok {
			report.Podium = &podium
		}
	}
	return report
}

func (s *TournamentService) Stats(ctx context.Context, id string) (StatsReport, error) {
	tournament, err := s.GetTournament(ctx, id)
	if err != nil {
		return StatsReport{}, err
	}
	return NewStatsReport(tournament.State), nil
}
