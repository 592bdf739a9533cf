package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
	"github.com/ChickenCoderzzz/CoachAssist/internal/repository"
)

type matchResponse struct {
	ID            int64   `json:"id"`
	TeamID        int64   `json:"team_id"`
	Name          string  `json:"name"`
	Opponent      string  `json:"opponent"`
	GameDate      string  `json:"game_date"`
	TeamScore     *int    `json:"team_score"`
	OpponentScore *int    `json:"opponent_score"`
	Description   *string `json:"description"`
	CreatedAt     string  `json:"created_at"`
}

func toMatchResponse(match model.Match) matchResponse {
	return matchResponse{
		ID:            match.ID,
		TeamID:        match.TeamID,
		Name:          match.Name,
		Opponent:      match.Opponent,
		GameDate:      match.GameDate.Format("2006-01-02"),
		TeamScore:     match.TeamScore,
		OpponentScore: match.OpponentScore,
		Description:   match.Description,
		CreatedAt:     match.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type matchRequest struct {
	Name          string  `json:"name"`
	Opponent      string  `json:"opponent"`
	GameDate      string  `json:"game_date"`
	TeamScore     *int    `json:"team_score"`
	OpponentScore *int    `json:"opponent_score"`
	Description   *string `json:"description"`
}

func (req matchRequest) toModel() (model.Match, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Opponent) == "" {
		return model.Match{}, errors.New("name and opponent are required")
	}
	gameDate, err := time.Parse("2006-01-02", req.GameDate)
	if err != nil {
		return model.Match{}, errors.New("game_date must be YYYY-MM-DD")
	}
	return model.Match{
		Name:          req.Name,
		Opponent:      req.Opponent,
		GameDate:      gameDate,
		TeamScore:     req.TeamScore,
		OpponentScore: req.OpponentScore,
		Description:   req.Description,
	}, nil
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	var req matchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	match, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	match.TeamID = teamID

	owns, err := s.store.OwnsTeam(r.Context(), teamID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !owns {
		writeError(w, http.StatusNotFound, "Team not found or unauthorized")
		return
	}

	exists, err := s.store.MatchExistsOnDate(r.Context(), teamID, match.GameDate, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "A game already exists for this date.")
		return
	}

	created, err := s.store.CreateMatch(r.Context(), match)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "A game already exists for this date.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"match": toMatchResponse(created)})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	matches, err := s.store.ListMatches(r.Context(), teamID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := make([]matchResponse, 0, len(matches))
	for _, match := range matches {
		resp = append(resp, toMatchResponse(match))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": resp})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	matchID, err := urlID(r, "matchID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid match id")
		return
	}

	match, err := s.store.GetMatch(r.Context(), matchID, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Match not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"match": toMatchResponse(match)})
}

func (s *Server) handleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	matchID, err := urlID(r, "matchID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid match id")
		return
	}

	var req matchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	match, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := s.store.GetMatch(r.Context(), matchID, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Match not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !existing.GameDate.Equal(match.GameDate) {
		conflict, err := s.store.MatchExistsOnDate(r.Context(), existing.TeamID, match.GameDate, matchID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if conflict {
			writeError(w, http.StatusConflict, "A game already exists for this date.")
			return
		}
	}

	updated, err := s.store.UpdateMatch(r.Context(), matchID, user.ID, match)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Match not found")
			return
		}
		if repository.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "A game already exists for this date.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"match": toMatchResponse(updated)})
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	matchID, err := urlID(r, "matchID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid match id")
		return
	}

	deleted, err := s.store.DeleteMatch(r.Context(), matchID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Match not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Match deleted"})
}
