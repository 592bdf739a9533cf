package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
)

type teamResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Color       *string `json:"color"`
}

func toTeamResponse(team model.Team) teamResponse {
	return teamResponse{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		ImageURL:    team.ImageURL,
		Color:       team.Color,
	}
}

type teamRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Color       *string `json:"color"`
}

// updateTeamRequest has no image_url: the photo endpoints own that column.
type updateTeamRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req teamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Team name is required")
		return
	}

	team, err := s.store.CreateTeam(r.Context(), model.Team{
		UserID:      user.ID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Color:       req.Color,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"team": toTeamResponse(team)})
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teams, err := s.store.ListTeams(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := make([]teamResponse, 0, len(teams))
	for _, team := range teams {
		resp = append(resp, toTeamResponse(team))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"teams": resp})
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	team, err := s.store.GetTeam(r.Context(), teamID, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Team not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"team": toTeamResponse(team)})
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	var req updateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Team name is required")
		return
	}

	team, err := s.store.UpdateTeam(r.Context(), teamID, user.ID, req.Name, req.Description, req.Color)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Team not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"team": toTeamResponse(team)})
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	team, err := s.store.GetTeam(r.Context(), teamID, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Team not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if team.ImagePath != nil {
		if err := s.objects.Delete(r.Context(), *team.ImagePath); err != nil {
			s.log.Warn().Err(err).Str("path", *team.ImagePath).Msg("delete team photo blob")
		}
	}

	if _, err := s.store.DeleteTeam(r.Context(), teamID, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Team deleted"})
}

// Photos

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func (s *Server) handleSetTeamPhoto(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	team, err := s.store.GetTeam(r.Context(), teamID, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Team not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxPhotoBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or oversized upload")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := photoExtensions[contentType]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unsupported image type")
		return
	}

	// Old blob goes first so a replaced photo never lingers in storage.
	if team.ImagePath != nil {
		if err := s.objects.Delete(r.Context(), *team.ImagePath); err != nil {
			s.log.Warn().Err(err).Str("path", *team.ImagePath).Msg("delete old team photo")
		}
	}

	key := fmt.Sprintf("team_photos/%d/%s%s", user.ID, uuid.NewString(), ext)
	if err := s.objects.Upload(r.Context(), key, contentType, file); err != nil {
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	url := s.objects.PublicURL(key)
	if err := s.store.SetTeamPhoto(r.Context(), teamID, user.ID, key, url); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"image_url": url})
}

func (s *Server) handleDeleteTeamPhoto(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	team, err := s.store.GetTeam(r.Context(), teamID, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Team not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if team.ImagePath != nil {
		if err := s.objects.Delete(r.Context(), *team.ImagePath); err != nil {
			s.log.Warn().Err(err).Str("path", *team.ImagePath).Msg("delete team photo blob")
		}
	}

	if err := s.store.ClearTeamPhoto(r.Context(), teamID, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Team photo deleted"})
}
