package repository

import (
	"context"
	"time"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
)

const matchColumns = `m.id, m.team_id, m.name, m.opponent, m.game_date, m.team_score, m.opponent_score, m.description, m.created_at`

func (s *Store) MatchExistsOnDate(ctx context.Context, teamID int64, gameDate time.Time, excludeMatchID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE team_id = $1 AND game_date = $2 AND id <> $3
		)
	`, teamID, gameDate, excludeMatchID).Scan(&exists)
	return exists, err
}

func (s *Store) CreateMatch(ctx context.Context, match model.Match) (model.Match, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO matches (team_id, name, opponent, game_date, team_score, opponent_score, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, team_id, name, opponent, game_date, team_score, opponent_score, description, created_at
	`, match.TeamID, match.Name, match.Opponent, match.GameDate, match.TeamScore, match.OpponentScore, match.Description)
	return scanMatch(row)
}

func (s *Store) ListMatches(ctx context.Context, teamID, userID int64) ([]model.Match, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches m
		JOIN teams t ON m.team_id = t.id
		WHERE t.id = $1 AND t.user_id = $2
		ORDER BY m.game_date DESC
	`, teamID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []model.Match{}
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (s *Store) GetMatch(ctx context.Context, matchID, userID int64) (model.Match, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+matchColumns+`
		FROM matches m
		JOIN teams t ON m.team_id = t.id
		WHERE m.id = $1 AND t.user_id = $2
	`, matchID, userID)
	return scanMatch(row)
}

func (s *Store) UpdateMatch(ctx context.Context, matchID, userID int64, match model.Match) (model.Match, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE matches
		SET name = $1,
		    opponent = $2,
		    game_date = $3,
		    team_score = $4,
		    opponent_score = $5,
		    description = $6
		FROM teams
		WHERE matches.team_id = teams.id
		  AND matches.id = $7
		  AND teams.user_id = $8
		RETURNING matches.id, matches.team_id, matches.name, matches.opponent, matches.game_date,
		          matches.team_score, matches.opponent_score, matches.description, matches.created_at
	`, match.Name, match.Opponent, match.GameDate, match.TeamScore, match.OpponentScore, match.Description, matchID, userID)
	return scanMatch(row)
}

func (s *Store) DeleteMatch(ctx context.Context, matchID, userID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM matches
		USING teams
		WHERE matches.team_id = teams.id
		  AND matches.id = $1
		  AND teams.user_id = $2
	`, matchID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// OwnsMatch walks the Match -> Team -> User chain for a match nested under a
// specific team.
func (s *Store) OwnsMatch(ctx context.Context, matchID, teamID, userID int64) (bool, error) {
	var owns bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM matches m
			JOIN teams t ON m.team_id = t.id
			WHERE m.id = $1 AND m.team_id = $2 AND t.user_id = $3
		)
	`, matchID, teamID, userID).Scan(&owns)
	return owns, err
}

// OwnsGame is the chain check used by the insights and game-state endpoints,
// where the match is addressed without its team.
func (s *Store) OwnsGame(ctx context.Context, gameID, userID int64) (bool, error) {
	var owns bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM matches m
			JOIN teams t ON m.team_id = t.id
			WHERE m.id = $1 AND t.user_id = $2
		)
	`, gameID, userID).Scan(&owns)
	return owns, err
}

func scanMatch(row teamScanner) (model.Match, error) {
	var match model.Match
	err := row.Scan(
		&match.ID,
		&match.TeamID,
		&match.Name,
		&match.Opponent,
		&match.GameDate,
		&match.TeamScore,
		&match.OpponentScore,
		&match.Description,
		&match.CreatedAt,
	)
	return match, err
}
