package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
	"github.com/ChickenCoderzzz/CoachAssist/internal/repository"
)

var validUnits = map[string]bool{
	"offense": true,
	"defense": true,
	"special": true,
}

var validPositions = map[string]bool{
	"QB": true, "RB": true, "FB": true, "WR": true, "TE": true,
	"LT": true, "LG": true, "C": true, "RG": true, "RT": true,
	"DE": true, "DT": true, "NT": true, "OLB": true, "ILB": true,
	"MLB": true, "CB": true, "FS": true, "SS": true,
	"K": true, "P": true, "KR": true, "PR": true, "LS": true,
}

type playerResponse struct {
	ID           int64  `json:"id"`
	TeamID       int64  `json:"team_id"`
	PlayerName   string `json:"player_name"`
	JerseyNumber int    `json:"jersey_number"`
	Unit         string `json:"unit"`
	Position     string `json:"position"`
}

func toPlayerResponse(player model.Player) playerResponse {
	return playerResponse{
		ID:           player.ID,
		TeamID:       player.TeamID,
		PlayerName:   player.PlayerName,
		JerseyNumber: player.JerseyNumber,
		Unit:         player.Unit,
		Position:     player.Position,
	}
}

type createPlayerRequest struct {
	TeamID       int64  `json:"team_id"`
	PlayerName   string `json:"player_name"`
	JerseyNumber int    `json:"jersey_number"`
	Unit         string `json:"unit"`
	Position     string `json:"position"`
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	owns, err := s.store.OwnsTeam(r.Context(), teamID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !owns {
		writeError(w, http.StatusForbidden, "You do not have access to this team")
		return
	}

	var req createPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TeamID != teamID {
		writeError(w, http.StatusBadRequest, "Team ID mismatch")
		return
	}
	if strings.TrimSpace(req.PlayerName) == "" {
		writeError(w, http.StatusBadRequest, "Player name is required")
		return
	}
	if !validUnits[req.Unit] {
		writeError(w, http.StatusBadRequest, "Invalid unit")
		return
	}
	if !validPositions[req.Position] {
		writeError(w, http.StatusBadRequest, "Invalid position")
		return
	}

	player, err := s.store.CreatePlayer(r.Context(), model.Player{
		TeamID:       teamID,
		PlayerName:   req.PlayerName,
		JerseyNumber: req.JerseyNumber,
		Unit:         req.Unit,
		Position:     req.Position,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Player already exists or invalid data")
		return
	}

	writeJSON(w, http.StatusCreated, toPlayerResponse(player))
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	owns, err := s.store.OwnsTeam(r.Context(), teamID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !owns {
		writeError(w, http.StatusForbidden, "You do not have access to this team")
		return
	}

	unit := r.URL.Query().Get("unit")
	if unit != "" && !validUnits[unit] {
		writeError(w, http.StatusBadRequest, "Invalid unit")
		return
	}

	players, err := s.store.ListPlayers(r.Context(), teamID, unit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := make([]playerResponse, 0, len(players))
	for _, player := range players {
		resp = append(resp, toPlayerResponse(player))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	playerID, err := urlID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid player id")
		return
	}

	player, err := s.store.GetPlayer(r.Context(), playerID, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Player not found or access denied")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, toPlayerResponse(player))
}

type updatePlayerRequest struct {
	PlayerName   *string `json:"player_name"`
	JerseyNumber *int    `json:"jersey_number"`
	Unit         *string `json:"unit"`
	Position     *string `json:"position"`
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	playerID, err := urlID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid player id")
		return
	}

	if _, err := s.store.GetPlayer(r.Context(), playerID, user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Player not found or access denied")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req updatePlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerName == nil && req.JerseyNumber == nil && req.Unit == nil && req.Position == nil {
		writeError(w, http.StatusBadRequest, "No fields provided for update")
		return
	}
	if req.Unit != nil && !validUnits[*req.Unit] {
		writeError(w, http.StatusBadRequest, "Invalid unit")
		return
	}
	if req.Position != nil && !validPositions[*req.Position] {
		writeError(w, http.StatusBadRequest, "Invalid position")
		return
	}

	player, err := s.store.UpdatePlayer(r.Context(), playerID, user.ID, repository.PlayerUpdate{
		PlayerName:   req.PlayerName,
		JerseyNumber: req.JerseyNumber,
		Unit:         req.Unit,
		Position:     req.Position,
	})
	if err != nil {
		// The player can vanish between the pre-check and the update.
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Player not found or access denied")
			return
		}
		if repository.IsUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, "Update failed (possible jersey number conflict)")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, toPlayerResponse(player))
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	playerID, err := urlID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid player id")
		return
	}

	deleted, err := s.store.DeletePlayer(r.Context(), playerID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Player not found or access denied")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// History

func (s *Server) handlePlayerHistory(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	playerID, err := urlID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid player id")
		return
	}

	if _, err := s.store.GetPlayerTeam(r.Context(), playerID, user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Player not found or access denied")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	games, err := s.store.ListPlayerGames(r.Context(), playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	stats, err := s.store.ListStatsByPlayer(r.Context(), playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	notes, err := s.store.ListNotesByPlayer(r.Context(), playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	gamesResp := make([]matchResponse, 0, len(games))
	for _, game := range games {
		gamesResp = append(gamesResp, toMatchResponse(game))
	}
	statsResp := make([]statsResponse, 0, len(stats))
	for _, st := range stats {
		statsResp = append(statsResp, toStatsResponse(st))
	}
	notesResp := make([]historyNoteResponse, 0, len(notes))
	for _, note := range notes {
		notesResp = append(notesResp, historyNoteResponse{
			noteResponse: toNoteResponse(note.PlayerNote),
			Opponent:     note.Opponent,
			GameDate:     note.GameDate.Format("2006-01-02"),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games":         gamesResp,
		"stats_by_game": statsResp,
		"notes":         notesResp,
	})
}

type historyNoteResponse struct {
	noteResponse
	Opponent string `json:"opponent"`
	GameDate string `json:"game_date"`
}
