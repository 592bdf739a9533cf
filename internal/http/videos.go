package http

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ChickenCoderzzz/CoachAssist/internal/media"
	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
)

type videoResponse struct {
	ID          int64   `json:"id"`
	Filename    string  `json:"filename"`
	PlaybackURL *string `json:"playback_url"`
	CreatedAt   string  `json:"created_at"`
}

// verifyMatchOwnership resolves the team/match path params and walks the
// Match -> Team -> User chain. Writes the error response on failure.
func (s *Server) verifyMatchOwnership(w http.ResponseWriter, r *http.Request) (teamID, matchID int64, ok bool) {
	user := userFromContext(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team id")
		return 0, 0, false
	}
	matchID, err = urlID(r, "matchID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid match id")
		return 0, 0, false
	}

	owns, err := s.store.OwnsMatch(r.Context(), matchID, teamID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return 0, 0, false
	}
	if !owns {
		writeError(w, http.StatusNotFound, "Match not found or unauthorized")
		return 0, 0, false
	}
	return teamID, matchID, true
}

type youtubeVideoRequest struct {
	YouTubeID string `json:"youtube_id"`
	Filename  string `json:"filename"`
}

func (s *Server) handleRegisterYouTubeVideo(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, matchID, ok := s.verifyMatchOwnership(w, r)
	if !ok {
		return
	}

	var req youtubeVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Filename == "" {
		req.Filename = "Game Film"
	}

	videoID, err := media.ParseYouTubeID(req.YouTubeID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid YouTube URL or ID")
		return
	}

	video, err := s.store.CreateVideo(r.Context(), model.Video{
		UserID:          user.ID,
		TeamID:          teamID,
		MatchID:         matchID,
		Provider:        model.VideoProviderYouTube,
		ProviderVideoID: &videoID,
		Filename:        req.Filename,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	playback := media.WatchURL(videoID)
	writeJSON(w, http.StatusOK, videoResponse{
		ID:          video.ID,
		Filename:    video.Filename,
		PlaybackURL: &playback,
		CreatedAt:   video.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleUploadVideo(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, matchID, ok := s.verifyMatchOwnership(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxVideoBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or oversized upload")
		return
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	if ext == "" {
		ext = ".mp4"
	}
	key := fmt.Sprintf("videos/%d/%s%s", user.ID, uuid.NewString(), ext)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.objects.Upload(r.Context(), key, contentType, file); err != nil {
		writeError(w, http.StatusBadRequest, "Upload failed")
		return
	}

	// Only the storage path is persisted; playback URLs are re-signed fresh
	// on every listing.
	video, err := s.store.CreateVideo(r.Context(), model.Video{
		UserID:      user.ID,
		TeamID:      teamID,
		MatchID:     matchID,
		Provider:    model.VideoProviderUpload,
		StoragePath: &key,
		Filename:    header.Filename,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, videoResponse{
		ID:        video.ID,
		Filename:  video.Filename,
		CreatedAt: video.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	_, matchID, ok := s.verifyMatchOwnership(w, r)
	if !ok {
		return
	}

	videos, err := s.store.ListVideos(r.Context(), matchID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := make([]videoResponse, 0, len(videos))
	for _, video := range videos {
		item := videoResponse{
			ID:        video.ID,
			Filename:  video.Filename,
			CreatedAt: video.CreatedAt.UTC().Format(time.RFC3339),
		}
		switch video.Provider {
		case model.VideoProviderYouTube:
			if video.ProviderVideoID != nil {
				url := media.WatchURL(*video.ProviderVideoID)
				item.PlaybackURL = &url
			}
		case model.VideoProviderUpload:
			if video.StoragePath != nil {
				url, err := s.objects.PresignGet(r.Context(), *video.StoragePath, s.cfg.PlaybackURLTTL)
				if err != nil {
					writeError(w, http.StatusInternalServerError, "Database error")
					return
				}
				item.PlaybackURL = &url
			}
		}
		resp = append(resp, item)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	_, matchID, ok := s.verifyMatchOwnership(w, r)
	if !ok {
		return
	}
	videoID, err := urlID(r, "videoID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid video id")
		return
	}

	video, err := s.store.GetVideo(r.Context(), videoID, matchID, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Video not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Blob delete is best-effort. The row is the source of truth; it goes
	// regardless of the remote outcome.
	if video.Provider == model.VideoProviderUpload && video.StoragePath != nil {
		if err := s.objects.Delete(r.Context(), *video.StoragePath); err != nil {
			s.log.Warn().Err(err).Str("path", *video.StoragePath).Msg("delete video blob")
		}
	}

	if err := s.store.DeleteVideo(r.Context(), videoID); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Video deleted successfully"})
}

type clipVideoRequest struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Filename string  `json:"filename"`
}

func (s *Server) handleClipVideo(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	teamID, matchID, ok := s.verifyMatchOwnership(w, r)
	if !ok {
		return
	}
	videoID, err := urlID(r, "videoID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid video id")
		return
	}

	var req clipVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Start < 0 || req.End <= req.Start {
		writeError(w, http.StatusBadRequest, "Clip range must satisfy 0 <= start < end")
		return
	}

	source, err := s.store.GetVideo(r.Context(), videoID, matchID, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Video not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if source.Provider != model.VideoProviderUpload || source.StoragePath == nil {
		writeError(w, http.StatusBadRequest, "Only uploaded videos can be clipped")
		return
	}

	sourceURL, err := s.objects.PresignGet(r.Context(), *source.StoragePath, s.cfg.PlaybackURLTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Clip failed")
		return
	}

	clipPath, err := s.clipper.Clip(r.Context(), sourceURL, req.Start, req.End)
	if err != nil {
		s.log.Error().Err(err).Int64("video", videoID).Msg("clip video")
		writeError(w, http.StatusInternalServerError, "Clip failed")
		return
	}
	defer os.Remove(clipPath)

	clipFile, err := os.Open(clipPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Clip failed")
		return
	}
	defer clipFile.Close()

	key := fmt.Sprintf("videos/%d/%s.mp4", user.ID, uuid.NewString())
	if err := s.objects.Upload(r.Context(), key, "video/mp4", clipFile); err != nil {
		writeError(w, http.StatusInternalServerError, "Clip failed")
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = fmt.Sprintf("Clip of %s", source.Filename)
	}
	video, err := s.store.CreateVideo(r.Context(), model.Video{
		UserID:      user.ID,
		TeamID:      teamID,
		MatchID:     matchID,
		Provider:    model.VideoProviderUpload,
		StoragePath: &key,
		Filename:    filename,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, videoResponse{
		ID:        video.ID,
		Filename:  video.Filename,
		CreatedAt: video.CreatedAt.UTC().Format(time.RFC3339),
	})
}
