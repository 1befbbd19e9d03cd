package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"github.com/AdamBeresnev/bracket-master/internal/httputil"
	"github.com/AdamBeresnev/bracket-master/internal/middleware"
	"github.com/AdamBeresnev/bracket-master/internal/presets"
	"github.com/AdamBeresnev/bracket-master/internal/service"
	users "github.com/AdamBeresnev/bracket-master/internal/user"
	"github.com/AdamBeresnev/bracket-master/views"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/markbates/goth/gothic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const maxRosterUpload = 5 << 20

// Precondition violations of the engine, the request was fine but the tournament is not
// in a state that allows it
var conflictErrors = []error{
	bracket.ErrNoPlayers,
	bracket.ErrNotEnoughPlayers,
	bracket.ErrNotEnoughTeams,
	bracket.ErrTooFewForGroups,
	bracket.ErrGroupsIncomplete,
	bracket.ErrRoundUndecided,
	bracket.ErrNothingToAdvance,
	bracket.ErrWrongStage,
	bracket.ErrAlreadyStarted,
	bracket.ErrByeImmutable,
	bracket.ErrInvalidTransition,
	bracket.ErrScoresNotLevel,
	bracket.ErrUndecidedDraw,
	bracket.ErrMissingScore,
}

var badRequestErrors = []error{
	service.ErrInvalidInput,
	service.ErrRosterEmpty,
	service.ErrInvalidRosterFile,
	service.ErrPasswordTooShort,
	presets.ErrUnknownPreset,
	bracket.ErrEmptyName,
	bracket.ErrTeamIndex,
	bracket.ErrNegativeScore,
	bracket.ErrNotParticipant,
}

var notFoundErrors = []error{
	service.ErrTournamentNotFound,
	bracket.ErrMatchNotFound,
	bracket.ErrGroupNotFound,
	bracket.ErrPlayerNotFound,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case isAny(err, notFoundErrors):
		httputil.NotFound(w, err.Error(), err)
	case isAny(err, badRequestErrors):
		httputil.BadRequest(w, err.Error(), err)
	case isAny(err, conflictErrors):
		httputil.Conflict(w, err.Error(), err)
	case errors.Is(err, service.ErrUnauthenticated):
		httputil.Unauthorized(w, err.Error(), err)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}

type nameRequest struct {
	Name string `json:"name"`
}

type presetRequest struct {
	Preset string `json:"preset"`
}

type groupStageRequest struct {
	Enabled bool `json:"enabled"`
}

type playersRequest struct {
	Names []string `json:"names"`
	Text  string   `json:"text"`
}

type advanceResponse struct {
	Tournament  *bracket.Tournament `json:"tournament"`
	Advancement bracket.Advancement `json:"advancement"`
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(app.sessionManager.LoadAndSave)

	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	renderLogin := func(w http.ResponseWriter, r *http.Request, status int, msg string) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		views.Render(w, r, views.LoginPage(app.providers, msg))
	}

	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		renderLogin(w, r, http.StatusOK, "")
	})

	login := func(w http.ResponseWriter, r *http.Request, user *users.User) {
		if err := app.sessionManager.RenewToken(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to renew session", err)
			return
		}
		app.sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
		http.Redirect(w, r, "/", http.StatusFound)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(rate.Every(time.Second), 5)))

		r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
			user, err := app.users.EnsureGuestUser(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to login as guest", err)
				return
			}
			login(w, r, user)
		})

		r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				httputil.BadRequest(w, "Invalid form data", err)
				return
			}
			user, err := app.users.Register(r.Context(), r.Form.Get("email"), r.Form.Get("username"), r.Form.Get("password"))
			if err != nil {
				if isAny(err, []error{service.ErrEmailTaken, service.ErrPasswordTooShort, service.ErrInvalidInput}) {
					renderLogin(w, r, http.StatusBadRequest, err.Error())
					return
				}
				httputil.InternalServerError(w, "Failed to register user", err)
				return
			}
			login(w, r, user)
		})

		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				httputil.BadRequest(w, "Invalid form data", err)
				return
			}
			user, err := app.users.Login(r.Context(), r.Form.Get("email"), r.Form.Get("password"))
			if errors.Is(err, service.ErrInvalidCredentials) {
				renderLogin(w, r, http.StatusUnauthorized, err.Error())
				return
			}
			if err != nil {
				httputil.InternalServerError(w, "Failed to log in", err)
				return
			}
			login(w, r, user)
		})
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), gothic.ProviderParamKey, provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), gothic.ProviderParamKey, provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}
		login(w, r, user)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := app.sessionManager.Destroy(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to log out", err)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	r.Get("/presets", func(w http.ResponseWriter, r *http.Request) {
		all, err := presets.All()
		if err != nil {
			httputil.InternalServerError(w, "Failed to load presets", err)
			return
		}
		httputil.JSON(w, http.StatusOK, all)
	})

	r.Get("/roster/template.xlsx", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="players_template.xlsx"`)
		if err := service.WriteTemplate(w); err != nil {
			httputil.InternalServerError(w, "Failed to write roster template", err)
		}
	})

	r.Route("/spectate/{id}", func(r chi.Router) {
		load := func(w http.ResponseWriter, r *http.Request) (*bracket.Tournament, bool) {
			tournament, err := app.tournaments.GetSpectatorTournament(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeError(w, "Failed to get tournament", err)
				return nil, false
			}
			return tournament, true
		}

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			if tournament, ok := load(w, r); ok {
				views.Render(w, r, views.SpectatorPage(tournament))
			}
		})
		r.Get("/bracket", func(w http.ResponseWriter, r *http.Request) {
			if tournament, ok := load(w, r); ok {
				views.Render(w, r, views.BracketFragment(tournament.State))
			}
		})
		r.Get("/state", func(w http.ResponseWriter, r *http.Request) {
			if tournament, ok := load(w, r); ok {
				httputil.JSON(w, http.StatusOK, tournament.State)
			}
		})
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			if tournament, ok := load(w, r); ok {
				app.hub.ServeWS(w, r, tournament.ID.String(), tournament.State)
			}
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(app.sessionManager, app.userStore))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			tournaments, err := app.tournaments.GetTournamentsForUser(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to get tournaments", err)
				return
			}
			views.Render(w, r, views.Index(views.GetUser(r.Context()), tournaments))
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				tournaments, err := app.tournaments.GetTournamentsForUser(r.Context())
				if err != nil {
					writeError(w, "Failed to get tournaments", err)
					return
				}
				httputil.JSON(w, http.StatusOK, tournaments)
			})

			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				var req nameRequest
				if err := httputil.DecodeJSON(w, r, &req); err != nil {
					httputil.BadRequest(w, "Invalid request body", err)
					return
				}
				tournament, err := app.tournaments.CreateTournament(r.Context(), req.Name)
				if err != nil {
					writeError(w, "Failed to create tournament", err)
					return
				}
				httputil.JSON(w, http.StatusCreated, tournament)
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", func(w http.ResponseWriter, r *http.Request) {
					tournament, err := app.tournaments.GetTournament(r.Context(), chi.URLParam(r, "id"))
					if err != nil {
						writeError(w, "Failed to get tournament", err)
						return
					}
					all, err := presets.All()
					if err != nil {
						httputil.InternalServerError(w, "Failed to load presets", err)
						return
					}
					views.Render(w, r, views.TournamentPage(tournament, all))
				})

				r.Get("/state", func(w http.ResponseWriter, r *http.Request) {
					tournament, err := app.tournaments.GetTournament(r.Context(), chi.URLParam(r, "id"))
					if err != nil {
						writeError(w, "Failed to get tournament", err)
						return
					}
					httputil.JSON(w, http.StatusOK, tournament)
				})

				r.Patch("/", func(w http.ResponseWriter, r *http.Request) {
					var req nameRequest
					if err := httputil.DecodeJSON(w, r, &req); err != nil {
						httputil.BadRequest(w, "Invalid request body", err)
						return
					}
					if err := app.tournaments.RenameTournament(r.Context(), chi.URLParam(r, "id"), req.Name); err != nil {
						writeError(w, "Failed to rename tournament", err)
						return
					}
					w.WriteHeader(http.StatusNoContent)
				})

				r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
					id := chi.URLParam(r, "id")
					if err := app.tournaments.DeleteTournament(r.Context(), id); err != nil {
						writeError(w, "Failed to delete tournament", err)
						return
					}
					app.hub.Forget(id)
					w.WriteHeader(http.StatusNoContent)
				})

				r.Post("/preset", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					var req presetRequest
					if err := decode(w, r, &req); err != nil {
						return nil, err
					}
					return app.tournaments.SelectPreset(r.Context(), id, req.Preset)
				}))

				r.Post("/group-stage", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					var req groupStageRequest
					if err := decode(w, r, &req); err != nil {
						return nil, err
					}
					return app.tournaments.SetGroupStage(r.Context(), id, req.Enabled)
				}))

				r.Post("/players", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					var req playersRequest
					if err := decode(w, r, &req); err != nil {
						return nil, err
					}
					if req.Text != "" {
						tournament, _, err := app.roster.ImportText(r.Context(), id, req.Text)
						return tournament, err
					}
					return app.tournaments.AddPlayers(r.Context(), id, req.Names)
				}))

				r.Post("/players/import", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					if err := r.ParseMultipartForm(maxRosterUpload); err != nil {
						return nil, errors.Join(service.ErrInvalidInput, err)
					}
					file, _, err := r.FormFile("file")
					if err != nil {
						return nil, errors.Join(service.ErrInvalidInput, err)
					}
					defer file.Close()
					data, err := io.ReadAll(io.LimitReader(file, maxRosterUpload))
					if err != nil {
						return nil, err
					}
					tournament, _, err := app.roster.ImportXLSX(r.Context(), id, data)
					return tournament, err
				}))

				r.Delete("/players/{playerID}", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					return app.tournaments.RemovePlayer(r.Context(), id, chi.URLParam(r, "playerID"))
				}))

				r.Post("/teams", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					var team bracket.Team
					if err := decode(w, r, &team); err != nil {
						return nil, err
					}
					return app.tournaments.AddTeam(r.Context(), id, team)
				}))

				r.Post("/teams/reset", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					return app.tournaments.ResetTeams(r.Context(), id)
				}))

				r.Put("/teams/{index}", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					index, err := teamIndex(r)
					if err != nil {
						return nil, err
					}
					var team bracket.Team
					if err := decode(w, r, &team); err != nil {
						return nil, err
					}
					return app.tournaments.UpdateTeam(r.Context(), id, index, team)
				}))

				r.Delete("/teams/{index}", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					index, err := teamIndex(r)
					if err != nil {
						return nil, err
					}
					return app.tournaments.RemoveTeam(r.Context(), id, index)
				}))

				r.Post("/start", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					return app.tournaments.Start(r.Context(), id)
				}))

				r.Post("/matches/{matchID}", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					var action bracket.MatchAction
					if err := decode(w, r, &action); err != nil {
						return nil, err
					}
					return app.tournaments.ApplyMatchAction(r.Context(), id, chi.URLParam(r, "matchID"), action)
				}))

				r.Post("/advance-to-bracket", mutation(func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error) {
					return app.tournaments.AdvanceToBracket(r.Context(), id)
				}))

				r.Post("/advance-round", func(w http.ResponseWriter, r *http.Request) {
					tournament, adv, err := app.tournaments.AdvanceRound(r.Context(), chi.URLParam(r, "id"))
					if err != nil {
						writeError(w, "Failed to advance round", err)
						return
					}
					httputil.JSON(w, http.StatusOK, advanceResponse{Tournament: tournament, Advancement: adv})
				})

				r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
					report, err := app.tournaments.Stats(r.Context(), chi.URLParam(r, "id"))
					if err != nil {
						writeError(w, "Failed to compute stats", err)
						return
					}
					httputil.JSON(w, http.StatusOK, report)
				})

				r.Get("/commentary", func(w http.ResponseWriter, r *http.Request) {
					tournament, err := app.tournaments.GetTournament(r.Context(), chi.URLParam(r, "id"))
					if err != nil {
						writeError(w, "Failed to get tournament", err)
						return
					}
					text := app.commentator.Preview(r.Context(), tournament.State.TournamentType, service.CurrentMatches(tournament.State))
					httputil.JSON(w, http.StatusOK, map[string]string{"text": text})
				})
			})
		})
	})

	return r
}

// mutation adapts a state transition to a JSON endpoint answering with the new tournament
func mutation(apply func(w http.ResponseWriter, r *http.Request, id string) (*bracket.Tournament, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournament, err := apply(w, r, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, "Failed to update tournament", err)
			return
		}
		httputil.JSON(w, http.StatusOK, tournament)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := httputil.DecodeJSON(w, r, dst); err != nil {
		return errors.Join(service.ErrInvalidInput, err)
	}
	return nil
}

func teamIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, errors.Join(service.ErrInvalidInput, err)
	}
	return index, nil
}
