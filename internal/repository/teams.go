package repository

import (
	"context"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
)

func (s *Store) CreateTeam(ctx context.Context, team model.Team) (model.Team, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO teams (user_id, name, description, image_url, color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, description, image_url, image_path, color, created_at
	`, team.UserID, team.Name, team.Description, team.ImageURL, team.Color)
	return scanTeam(row)
}

func (s *Store) ListTeams(ctx context.Context, userID int64) ([]model.Team, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, description, image_url, image_path, color, created_at
		FROM teams
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (s *Store) GetTeam(ctx context.Context, teamID, userID int64) (model.Team, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, name, description, image_url, image_path, color, created_at
		FROM teams
		WHERE id = $1 AND user_id = $2
	`, teamID, userID)
	return scanTeam(row)
}

func (s *Store) UpdateTeam(ctx context.Context, teamID, userID int64, name string, description, color *string) (model.Team, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE teams
		SET name = $1, description = $2, color = $3
		WHERE id = $4 AND user_id = $5
		RETURNING id, user_id, name, description, image_url, image_path, color, created_at
	`, name, description, color, teamID, userID)
	return scanTeam(row)
}

func (s *Store) DeleteTeam(ctx context.Context, teamID, userID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) SetTeamPhoto(ctx context.Context, teamID, userID int64, imagePath, imageURL string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE teams
		SET image_path = $1, image_url = $2
		WHERE id = $3 AND user_id = $4
	`, imagePath, imageURL, teamID, userID)
	return err
}

func (s *Store) ClearTeamPhoto(ctx context.Context, teamID, userID int64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE teams
		SET image_path = NULL, image_url = NULL
		WHERE id = $1 AND user_id = $2
	`, teamID, userID)
	return err
}

// OwnsTeam reports whether the team exists and belongs to the user.
func (s *Store) OwnsTeam(ctx context.Context, teamID, userID int64) (bool, error) {
	var owns bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&owns)
	return owns, err
}

type teamScanner interface {
	Scan(dest ...interface{}) error
}

func scanTeam(row teamScanner) (model.Team, error) {
	var team model.Team
	err := row.Scan(
		&team.ID,
		&team.UserID,
		&team.Name,
		&team.Description,
		&team.ImageURL,
		&team.ImagePath,
		&team.Color,
		&team.CreatedAt,
	)
	return team, err
}
