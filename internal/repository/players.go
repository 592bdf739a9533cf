package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
)

func (s *Store) CreatePlayer(ctx context.Context, player model.Player) (model.Player, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO players (team_id, player_name, jersey_number, unit, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, team_id, player_name, jersey_number, unit, position
	`, player.TeamID, player.PlayerName, player.JerseyNumber, player.Unit, player.Position)
	return scanPlayer(row)
}

// ListPlayers returns the team roster, optionally filtered to one unit,
// ordered by jersey number.
func (s *Store) ListPlayers(ctx context.Context, teamID int64, unit string) ([]model.Player, error) {
	query := `
		SELECT id, team_id, player_name, jersey_number, unit, position
		FROM players
		WHERE team_id = $1
	`
	args := []interface{}{teamID}
	if unit != "" {
		query += ` AND unit = $2`
		args = append(args, unit)
	}
	query += ` ORDER BY jersey_number ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

func (s *Store) GetPlayer(ctx context.Context, playerID, userID int64) (model.Player, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT p.id, p.team_id, p.player_name, p.jersey_number, p.unit, p.position
		FROM players p
		JOIN teams t ON p.team_id = t.id
		WHERE p.id = $1 AND t.user_id = $2
	`, playerID, userID)
	return scanPlayer(row)
}

type PlayerUpdate struct {
	PlayerName   *string
	JerseyNumber *int
	Unit         *string
	Position     *string
}

func (s *Store) UpdatePlayer(ctx context.Context, playerID, userID int64, update PlayerUpdate) (model.Player, error) {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.PlayerName != nil {
		add("player_name", *update.PlayerName)
	}
	if update.JerseyNumber != nil {
		add("jersey_number", *update.JerseyNumber)
	}
	if update.Unit != nil {
		add("unit", *update.Unit)
	}
	if update.Position != nil {
		add("position", *update.Position)
	}
	if len(sets) == 0 {
		return s.GetPlayer(ctx, playerID, userID)
	}
	args = append(args, playerID, userID)
	query := fmt.Sprintf(`
		UPDATE players
		SET %s
		FROM teams
		WHERE players.team_id = teams.id
		  AND players.id = $%d
		  AND teams.user_id = $%d
		RETURNING players.id, players.team_id, players.player_name, players.jersey_number, players.unit, players.position
	`, strings.Join(sets, ", "), len(args)-1, len(args))
	return scanPlayer(s.pool.QueryRow(ctx, query, args...))
}

func (s *Store) DeletePlayer(ctx context.Context, playerID, userID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM players
		USING teams
		WHERE players.team_id = teams.id
		  AND players.id = $1
		  AND teams.user_id = $2
	`, playerID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetPlayerTeam resolves a player to its team id when the player belongs to
// one of the user's teams. Returns pgx.ErrNoRows otherwise.
func (s *Store) GetPlayerTeam(ctx context.Context, playerID, userID int64) (int64, error) {
	var teamID int64
	err := s.pool.QueryRow(ctx, `
		SELECT p.team_id
		FROM players p
		JOIN teams t ON p.team_id = t.id
		WHERE p.id = $1 AND t.user_id = $2
	`, playerID, userID).Scan(&teamID)
	return teamID, err
}

// ListPlayerGames returns every game the player's team has played, newest
// first, for the history view.
func (s *Store) ListPlayerGames(ctx context.Context, playerID int64) ([]model.Match, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches m
		JOIN players p ON p.team_id = m.team_id
		WHERE p.id = $1
		ORDER BY m.game_date DESC
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []model.Match{}
	for rows.Next() {
		game, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (s *Store) ListStatsByPlayer(ctx context.Context, playerID int64) ([]model.PlayerStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+statsColumns+`
		FROM player_stats
		WHERE player_id = $1
		ORDER BY game_id ASC
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := []model.PlayerStats{}
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, stats)
	}
	return all, rows.Err()
}

// HistoryNote is a player note joined with its game's opponent and date.
type HistoryNote struct {
	model.PlayerNote
	Opponent string
	GameDate time.Time
}

func (s *Store) ListNotesByPlayer(ctx context.Context, playerID int64) ([]HistoryNote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT n.id, n.player_id, n.game_id, n.category, n.note, n.time, n.created_at,
		       m.opponent, m.game_date
		FROM player_notes n
		JOIN matches m ON n.game_id = m.id
		WHERE n.player_id = $1
		ORDER BY m.game_date DESC, n.created_at ASC
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []HistoryNote{}
	for rows.Next() {
		var note HistoryNote
		err := rows.Scan(
			&note.ID,
			&note.PlayerID,
			&note.GameID,
			&note.Category,
			&note.Note,
			&note.Time,
			&note.CreatedAt,
			&note.Opponent,
			&note.GameDate,
		)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func scanPlayer(row teamScanner) (model.Player, error) {
	var player model.Player
	err := row.Scan(
		&player.ID,
		&player.TeamID,
		&player.PlayerName,
		&player.JerseyNumber,
		&player.Unit,
		&player.Position,
	)
	return player, err
}
