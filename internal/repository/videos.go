package repository

import (
	"context"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
)

const videoColumns = `id, user_id, team_id, match_id, provider, provider_video_id, storage_path, filename, created_at`

func (s *Store) CreateVideo(ctx context.Context, video model.Video) (model.Video, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO videos (user_id, team_id, match_id, provider, provider_video_id, storage_path, filename)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+videoColumns+`
	`, video.UserID, video.TeamID, video.MatchID, video.Provider, video.ProviderVideoID, video.StoragePath, video.Filename)
	return scanVideo(row)
}

func (s *Store) ListVideos(ctx context.Context, matchID, userID int64) ([]model.Video, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE match_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`, matchID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []model.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

func (s *Store) GetVideo(ctx context.Context, videoID, matchID, userID int64) (model.Video, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE id = $1 AND match_id = $2 AND user_id = $3
	`, videoID, matchID, userID)
	return scanVideo(row)
}

func (s *Store) DeleteVideo(ctx context.Context, videoID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, videoID)
	return err
}

func scanVideo(row teamScanner) (model.Video, error) {
	var video model.Video
	err := row.Scan(
		&video.ID,
		&video.UserID,
		&video.TeamID,
		&video.MatchID,
		&video.Provider,
		&video.ProviderVideoID,
		&video.StoragePath,
		&video.Filename,
		&video.CreatedAt,
	)
	return video, err
}
