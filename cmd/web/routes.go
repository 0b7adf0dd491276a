package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opencourt/bracket-engine/internal/bracket"
	"github.com/opencourt/bracket-engine/internal/httputil"
	"github.com/opencourt/bracket-engine/internal/live"
	"github.com/opencourt/bracket-engine/internal/service"
	"github.com/opencourt/bracket-engine/internal/state"
	"github.com/opencourt/bracket-engine/internal/store"
	"github.com/opencourt/bracket-engine/internal/utils"
)

type categoryRequest struct {
	Name            string `json:"name"`
	Format          string `json:"format"`
	MaxDuplas       int    `json:"max_duplas"`
	BestOfSemifinal int    `json:"best_of_semifinal"`
	BestOfFinal     int    `json:"best_of_final"`
}

type createTournamentRequest struct {
	Name       string            `json:"name"`
	Categories []categoryRequest `json:"categories"`
}

type playerRequest struct {
	Kind     string `json:"kind"`
	RosterID string `json:"roster_id"`
	Name     string `json:"name"`
}

type duplaRequest struct {
	Name    string           `json:"name"`
	Players [2]playerRequest `json:"players"`
}

type matchResultRequest struct {
	ScoreA int `json:"score_a"`
	ScoreB int `json:"score_b"`
}

func newRouter(database *sqlx.DB, hub *live.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	tournamentStore := store.NewTournamentStore(database)
	tournamentService := service.NewTournamentService(database, tournamentStore)
	duplaService := service.NewDuplaService(database, tournamentStore)
	bracketService := service.NewBracketService(database, tournamentStore, hub)
	matchService := service.NewMatchService(database, tournamentStore, hub)

	r.Get("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		tournaments, err := tournamentService.ListTournaments(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to list tournaments", err)
			return
		}
		httputil.JSON(w, http.StatusOK, tournaments)
	})

	r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		var req createTournamentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}

		var categories []service.CategoryInput
		for _, c := range req.Categories {
			categories = append(categories, service.CategoryInput{
				Name:            c.Name,
				Format:          bracket.Format(c.Format),
				MaxDuplas:       c.MaxDuplas,
				BestOfSemifinal: c.BestOfSemifinal,
				BestOfFinal:     c.BestOfFinal,
			})
		}

		id, err := tournamentService.CreateTournament(r.Context(), req.Name, categories)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httputil.JSON(w, http.StatusCreated, map[string]string{"id": id.String()})
	})

	r.Get("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
		tournament, err := tournamentService.GetTournamentData(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, tournament)
	})

	r.Post("/categories/{categoryID}/duplas", func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
		if err != nil {
			httputil.BadRequest(w, "Invalid category ID", err)
			return
		}

		input, ok := decodeDuplaInput(w, r)
		if !ok {
			return
		}

		d, err := duplaService.Register(r.Context(), categoryID, input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httputil.JSON(w, http.StatusCreated, d)
	})

	r.Put("/categories/{categoryID}/duplas/{duplaID}", func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
		if err != nil {
			httputil.BadRequest(w, "Invalid category ID", err)
			return
		}
		duplaID, err := uuid.Parse(chi.URLParam(r, "duplaID"))
		if err != nil {
			httputil.BadRequest(w, "Invalid dupla ID", err)
			return
		}

		input, ok := decodeDuplaInput(w, r)
		if !ok {
			return
		}

		d, err := duplaService.Update(r.Context(), categoryID, duplaID, input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, d)
	})

	r.Delete("/categories/{categoryID}/duplas/{duplaID}", func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
		if err != nil {
			httputil.BadRequest(w, "Invalid category ID", err)
			return
		}
		duplaID, err := uuid.Parse(chi.URLParam(r, "duplaID"))
		if err != nil {
			httputil.BadRequest(w, "Invalid dupla ID", err)
			return
		}

		if err := duplaService.Remove(r.Context(), categoryID, duplaID); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/tournaments/{id}/categories/{categoryID}/bracket", func(w http.ResponseWriter, r *http.Request) {
		tournamentID := chi.URLParam(r, "id")
		categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
		if err != nil {
			httputil.BadRequest(w, "Invalid category ID", err)
			return
		}

		cat, err := bracketService.Generate(r.Context(), tournamentID, categoryID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httputil.JSON(w, http.StatusCreated, cat)
	})

	r.Post("/tournaments/{id}/categories/{categoryID}/matches/{matchID}/result", func(w http.ResponseWriter, r *http.Request) {
		tournamentID := chi.URLParam(r, "id")
		categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
		if err != nil {
			httputil.BadRequest(w, "Invalid category ID", err)
			return
		}
		matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
		if err != nil {
			httputil.BadRequest(w, "Invalid match ID", err)
			return
		}

		var req matchResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}

		patch := state.MatchPatch{
			ScoreA: utils.Ptr(req.ScoreA),
			ScoreB: utils.Ptr(req.ScoreB),
			Status: utils.Ptr(bracket.MatchCompleted),
		}

		tournament, err := matchService.UpdateMatchResult(r.Context(), tournamentID, categoryID, matchID, patch)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, tournament)
	})

	r.Get("/ws/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWs(w, r, chi.URLParam(r, "id"))
	})

	return r
}

func decodeDuplaInput(w http.ResponseWriter, r *http.Request) (service.DuplaInput, bool) {
	var req duplaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return service.DuplaInput{}, false
	}

	input := service.DuplaInput{Name: req.Name}
	for i, p := range req.Players {
		input.Players[i] = bracket.Player{
			Kind:     bracket.PlayerKind(p.Kind),
			RosterID: p.RosterID,
			Name:     p.Name,
		}
		if input.Players[i].Kind != bracket.PlayerRoster && input.Players[i].Kind != bracket.PlayerGuest {
			httputil.BadRequest(w, "Player kind must be roster or guest", nil)
			return service.DuplaInput{}, false
		}
	}
	return input, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httputil.NotFound(w, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, service.ErrMatchNotReady),
		errors.Is(err, service.ErrScoreUndecided),
		errors.Is(err, state.ErrDuplicatePlayer):
		httputil.BadRequest(w, err.Error(), nil)
	case errors.Is(err, service.ErrBracketAlreadyGenerated),
		errors.Is(err, service.ErrRegistrationClosed),
		errors.Is(err, service.ErrCategoryFull):
		httputil.Conflict(w, err.Error(), nil)
	default:
		httputil.InternalServerError(w, "Unexpected error", err)
	}
}
