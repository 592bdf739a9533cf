package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/ChickenCoderzzz/CoachAssist/internal/auth"
	"github.com/ChickenCoderzzz/CoachAssist/internal/config"
	"github.com/ChickenCoderzzz/CoachAssist/internal/email"
	"github.com/ChickenCoderzzz/CoachAssist/internal/media"
	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
	"github.com/ChickenCoderzzz/CoachAssist/internal/repository"
	"github.com/ChickenCoderzzz/CoachAssist/internal/storage"
)

type Server struct {
	cfg     config.Config
	store   *repository.Store
	mailer  email.Mailer
	objects storage.ObjectStore
	clipper media.Clipper
	redis   *redis.Client
	log     zerolog.Logger
}

func NewServer(cfg config.Config, store *repository.Store, mailer email.Mailer, objects storage.ObjectStore, clipper media.Clipper, redisClient *redis.Client, log zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		mailer:  mailer,
		objects: objects,
		clipper: clipper,
		redis:   redisClient,
		log:     log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/verify-email", s.handleVerifyEmail)
		r.Post("/resend-verification", s.handleResendVerification)
		r.Post("/login", s.handleLogin)
		r.Post("/forgot-password/request", s.handleForgotPasswordRequest)
		r.Post("/forgot-password/verify", s.handleForgotPasswordVerify)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/profile", s.handleGetProfile)
			r.Patch("/profile", s.handleUpdateProfile)
			r.Post("/profile/request-password-change", s.handleRequestPasswordChange)
			r.Post("/profile/verify-password-change", s.handleVerifyPasswordChange)
			r.Post("/delete-account", s.handleDeleteAccount)
		})
	})

	r.Route("/teams", func(r chi.Router) {
		r.Use(s.requireUser)

		r.Post("/", s.handleCreateTeam)
		r.Get("/", s.handleListTeams)
		r.Get("/{teamID}", s.handleGetTeam)
		r.Put("/{teamID}", s.handleUpdateTeam)
		r.Delete("/{teamID}", s.handleDeleteTeam)
		r.Put("/{teamID}/photo", s.handleSetTeamPhoto)
		r.Delete("/{teamID}/photo", s.handleDeleteTeamPhoto)

		r.Post("/{teamID}/matches", s.handleCreateMatch)
		r.Get("/{teamID}/matches", s.handleListMatches)
		r.Get("/matches/{matchID}", s.handleGetMatch)
		r.Put("/matches/{matchID}", s.handleUpdateMatch)
		r.Delete("/matches/{matchID}", s.handleDeleteMatch)

		r.Post("/{teamID}/players", s.handleCreatePlayer)
		r.Get("/{teamID}/players", s.handleListPlayers)
		r.Get("/players/{playerID}", s.handleGetPlayer)
		r.Put("/players/{playerID}", s.handleUpdatePlayer)
		r.Delete("/players/{playerID}", s.handleDeletePlayer)

		r.Route("/{teamID}/matches/{matchID}/videos", func(r chi.Router) {
			r.Post("/youtube", s.handleRegisterYouTubeVideo)
			r.Post("/", s.handleUploadVideo)
			r.Get("/", s.handleListVideos)
			r.Delete("/{videoID}", s.handleDeleteVideo)
			r.Post("/{videoID}/clip", s.handleClipVideo)
		})
	})

	r.With(s.requireUser).Get("/players/{playerID}/history", s.handlePlayerHistory)

	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/players/{playerID}", s.handleGetInsights)
		r.Put("/players/{playerID}", s.handleUpdateInsights)
		r.Get("/state", s.handleGetGameState)
		r.Put("/state", s.handleUpdateGameState)
	})

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}

// Auth

type userKey struct{}

// requireUser validates the bearer token and re-fetches the user row on every
// request, so a deleted or renamed account stops authorizing immediately.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header missing")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err != nil || claims.Subject == "" {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		user, err := s.store.GetUserByUsername(r.Context(), claims.Subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "User not found")
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) model.User {
	user, _ := ctx.Value(userKey{}).(model.User)
	return user
}

// Logging

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Helpers

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
