package http

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
)

type statsResponse struct {
	PlayerID int64 `json:"player_id"`
	GameID   int64 `json:"game_id"`

	SnapsPlayed *int `json:"snaps_played"`
	Penalties   *int `json:"penalties"`
	Turnovers   *int `json:"turnovers"`
	Touchdowns  *int `json:"touchdowns"`

	PassAttempts        *int `json:"pass_attempts"`
	PassCompletions     *int `json:"pass_completions"`
	PassingYards        *int `json:"passing_yards"`
	PassingTDs          *int `json:"passing_tds"`
	InterceptionsThrown *int `json:"interceptions_thrown"`

	RushAttempts *int `json:"rush_attempts"`
	RushingYards *int `json:"rushing_yards"`
	RushingTDs   *int `json:"rushing_tds"`

	Receptions     *int `json:"receptions"`
	ReceivingYards *int `json:"receiving_yards"`
	ReceivingTDs   *int `json:"receiving_tds"`

	SacksAllowed *int `json:"sacks_allowed"`

	Tackles          *int `json:"tackles"`
	Sacks            *int `json:"sacks"`
	Interceptions    *int `json:"interceptions"`
	ForcedFumbles    *int `json:"forced_fumbles"`
	FumblesRecovered *int `json:"fumbles_recovered"`
	PassesDefended   *int `json:"passes_defended"`

	FieldGoalsMade      *int `json:"field_goals_made"`
	FieldGoalsAttempted *int `json:"field_goals_attempted"`
	ExtraPointsMade     *int `json:"extra_points_made"`

	Punts     *int `json:"punts"`
	PuntYards *int `json:"punt_yards"`

	KickReturns     *int `json:"kick_returns"`
	KickReturnYards *int `json:"kick_return_yards"`
	KickReturnTDs   *int `json:"kick_return_tds"`

	PuntReturns     *int `json:"punt_returns"`
	PuntReturnYards *int `json:"punt_return_yards"`
	PuntReturnTDs   *int `json:"punt_return_tds"`
}

func toStatsResponse(st model.PlayerStats) statsResponse {
	return statsResponse{
		PlayerID: st.PlayerID,
		GameID:   st.GameID,

		SnapsPlayed: st.SnapsPlayed,
		Penalties:   st.Penalties,
		Turnovers:   st.Turnovers,
		Touchdowns:  st.Touchdowns,

		PassAttempts:        st.PassAttempts,
		PassCompletions:     st.PassCompletions,
		PassingYards:        st.PassingYards,
		PassingTDs:          st.PassingTDs,
		InterceptionsThrown: st.InterceptionsThrown,

		RushAttempts: st.RushAttempts,
		RushingYards: st.RushingYards,
		RushingTDs:   st.RushingTDs,

		Receptions:     st.Receptions,
		ReceivingYards: st.ReceivingYards,
		ReceivingTDs:   st.ReceivingTDs,

		SacksAllowed: st.SacksAllowed,

		Tackles:          st.Tackles,
		Sacks:            st.Sacks,
		Interceptions:    st.Interceptions,
		ForcedFumbles:    st.ForcedFumbles,
		FumblesRecovered: st.FumblesRecovered,
		PassesDefended:   st.PassesDefended,

		FieldGoalsMade:      st.FieldGoalsMade,
		FieldGoalsAttempted: st.FieldGoalsAttempted,
		ExtraPointsMade:     st.ExtraPointsMade,

		Punts:     st.Punts,
		PuntYards: st.PuntYards,

		KickReturns:     st.KickReturns,
		KickReturnYards: st.KickReturnYards,
		KickReturnTDs:   st.KickReturnTDs,

		PuntReturns:     st.PuntReturns,
		PuntReturnYards: st.PuntReturnYards,
		PuntReturnTDs:   st.PuntReturnTDs,
	}
}

type noteResponse struct {
	ID       int64   `json:"id"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
	Time     *string `json:"time"`
}

func toNoteResponse(note model.PlayerNote) noteResponse {
	return noteResponse{
		ID:       note.ID,
		Category: note.Category,
		Note:     note.Note,
		Time:     note.Time,
	}
}

func (s *Server) verifyGameAccess(w http.ResponseWriter, r *http.Request) (int64, bool) {
	user := userFromContext(r.Context())

	gameID, err := urlID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid game id")
		return 0, false
	}

	owns, err := s.store.OwnsGame(r.Context(), gameID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return 0, false
	}
	if !owns {
		writeError(w, http.StatusForbidden, "Access denied to this game")
		return 0, false
	}
	return gameID, true
}

func (s *Server) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.verifyGameAccess(w, r)
	if !ok {
		return
	}
	playerID, err := urlID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid player id")
		return
	}

	var stats interface{} = struct{}{}
	st, err := s.store.GetStats(r.Context(), playerID, gameID)
	if err == nil {
		stats = toStatsResponse(st)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	notes, err := s.store.ListNotes(r.Context(), playerID, gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	notesResp := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		notesResp = append(notesResp, toNoteResponse(note))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats": stats,
		"notes": notesResp,
	})
}

type statsPayload struct {
	SnapsPlayed *int `json:"snaps_played"`
	Penalties   *int `json:"penalties"`
	Turnovers   *int `json:"turnovers"`
	Touchdowns  *int `json:"touchdowns"`

	PassAttempts        *int `json:"pass_attempts"`
	PassCompletions     *int `json:"pass_completions"`
	PassingYards        *int `json:"passing_yards"`
	PassingTDs          *int `json:"passing_tds"`
	InterceptionsThrown *int `json:"interceptions_thrown"`

	RushAttempts *int `json:"rush_attempts"`
	RushingYards *int `json:"rushing_yards"`
	RushingTDs   *int `json:"rushing_tds"`

	Receptions     *int `json:"receptions"`
	ReceivingYards *int `json:"receiving_yards"`
	ReceivingTDs   *int `json:"receiving_tds"`

	SacksAllowed *int `json:"sacks_allowed"`

	Tackles          *int `json:"tackles"`
	Sacks            *int `json:"sacks"`
	Interceptions    *int `json:"interceptions"`
	ForcedFumbles    *int `json:"forced_fumbles"`
	FumblesRecovered *int `json:"fumbles_recovered"`
	PassesDefended   *int `json:"passes_defended"`

	FieldGoalsMade      *int `json:"field_goals_made"`
	FieldGoalsAttempted *int `json:"field_goals_attempted"`
	ExtraPointsMade     *int `json:"extra_points_made"`

	Punts     *int `json:"punts"`
	PuntYards *int `json:"punt_yards"`

	KickReturns     *int `json:"kick_returns"`
	KickReturnYards *int `json:"kick_return_yards"`
	KickReturnTDs   *int `json:"kick_return_tds"`

	PuntReturns     *int `json:"punt_returns"`
	PuntReturnYards *int `json:"punt_return_yards"`
	PuntReturnTDs   *int `json:"punt_return_tds"`
}

// toModel returns nil when no stat field is set, which keeps the stats row
// absent instead of storing an all-NULL row.
func (p statsPayload) toModel(playerID, gameID int64) *model.PlayerStats {
	st := model.PlayerStats{
		PlayerID: playerID,
		GameID:   gameID,

		SnapsPlayed: p.SnapsPlayed,
		Penalties:   p.Penalties,
		Turnovers:   p.Turnovers,
		Touchdowns:  p.Touchdowns,

		PassAttempts:        p.PassAttempts,
		PassCompletions:     p.PassCompletions,
		PassingYards:        p.PassingYards,
		PassingTDs:          p.PassingTDs,
		InterceptionsThrown: p.InterceptionsThrown,

		RushAttempts: p.RushAttempts,
		RushingYards: p.RushingYards,
		RushingTDs:   p.RushingTDs,

		Receptions:     p.Receptions,
		ReceivingYards: p.ReceivingYards,
		ReceivingTDs:   p.ReceivingTDs,

		SacksAllowed: p.SacksAllowed,

		Tackles:          p.Tackles,
		Sacks:            p.Sacks,
		Interceptions:    p.Interceptions,
		ForcedFumbles:    p.ForcedFumbles,
		FumblesRecovered: p.FumblesRecovered,
		PassesDefended:   p.PassesDefended,

		FieldGoalsMade:      p.FieldGoalsMade,
		FieldGoalsAttempted: p.FieldGoalsAttempted,
		ExtraPointsMade:     p.ExtraPointsMade,

		Punts:     p.Punts,
		PuntYards: p.PuntYards,

		KickReturns:     p.KickReturns,
		KickReturnYards: p.KickReturnYards,
		KickReturnTDs:   p.KickReturnTDs,

		PuntReturns:     p.PuntReturns,
		PuntReturnYards: p.PuntReturnYards,
		PuntReturnTDs:   p.PuntReturnTDs,
	}
	for _, field := range []*int{
		st.SnapsPlayed, st.Penalties, st.Turnovers, st.Touchdowns,
		st.PassAttempts, st.PassCompletions, st.PassingYards, st.PassingTDs, st.InterceptionsThrown,
		st.RushAttempts, st.RushingYards, st.RushingTDs,
		st.Receptions, st.ReceivingYards, st.ReceivingTDs,
		st.SacksAllowed,
		st.Tackles, st.Sacks, st.Interceptions, st.ForcedFumbles, st.FumblesRecovered, st.PassesDefended,
		st.FieldGoalsMade, st.FieldGoalsAttempted, st.ExtraPointsMade,
		st.Punts, st.PuntYards,
		st.KickReturns, st.KickReturnYards, st.KickReturnTDs,
		st.PuntReturns, st.PuntReturnYards, st.PuntReturnTDs,
	} {
		if field != nil {
			return &st
		}
	}
	return nil
}

type noteRow struct {
	ID       *int64  `json:"id"`
	Category *string `json:"category"`
	Note     string  `json:"note"`
	Time     *string `json:"time"`
}

type insightsUpdateRequest struct {
	Stats statsPayload `json:"stats"`
	Notes []noteRow    `json:"notes"`
}

func (s *Server) handleUpdateInsights(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.verifyGameAccess(w, r)
	if !ok {
		return
	}
	playerID, err := urlID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid player id")
		return
	}

	var req insightsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	notes := make([]model.PlayerNote, 0, len(req.Notes))
	for _, row := range req.Notes {
		if row.Note == "" {
			writeError(w, http.StatusBadRequest, "Note text is required")
			return
		}
		category := "General"
		if row.Category != nil && *row.Category != "" {
			category = *row.Category
		}
		notes = append(notes, model.PlayerNote{
			PlayerID: playerID,
			GameID:   gameID,
			Category: category,
			Note:     row.Note,
			Time:     row.Time,
		})
	}

	if err := s.store.ReplaceInsights(r.Context(), playerID, gameID, req.Stats.toModel(playerID, gameID), notes); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Player insights updated successfully"})
}

// Game state

var gameStateCategories = []string{"Game State", "Offensive", "Defensive", "Special"}

type gameStateRow struct {
	ID   *int64 `json:"id"`
	Text string `json:"text"`
	Time string `json:"time"`
}

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.verifyGameAccess(w, r)
	if !ok {
		return
	}

	entries, err := s.store.ListGameState(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	result := map[string][]gameStateRow{}
	for _, category := range gameStateCategories {
		result[category] = []gameStateRow{}
	}
	for _, entry := range entries {
		if _, known := result[entry.Category]; !known {
			continue
		}
		id := entry.ID
		t := ""
		if entry.Time != nil {
			t = *entry.Time
		}
		result[entry.Category] = append(result[entry.Category], gameStateRow{
			ID:   &id,
			Text: entry.Observation,
			Time: t,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUpdateGameState(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.verifyGameAccess(w, r)
	if !ok {
		return
	}

	var req map[string][]gameStateRow
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entries := []model.GameState{}
	for category, rows := range req {
		for _, row := range rows {
			if row.Text == "" {
				writeError(w, http.StatusBadRequest, "Observation text is required")
				return
			}
			t := row.Time
			entries = append(entries, model.GameState{
				GameID:      gameID,
				Category:    category,
				Observation: row.Text,
				Time:        &t,
			})
		}
	}

	if err := s.store.ReplaceGameState(r.Context(), gameID, entries); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Game state updated successfully"})
}
