package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
)

func (s *Store) ListGameState(ctx context.Context, gameID int64) ([]model.GameState, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, game_id, category, observation, time, created_at
		FROM game_states
		WHERE game_id = $1
		ORDER BY created_at ASC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.GameState{}
	for rows.Next() {
		var entry model.GameState
		err := rows.Scan(
			&entry.ID,
			&entry.GameID,
			&entry.Category,
			&entry.Observation,
			&entry.Time,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ReplaceGameState overwrites all observations for the game in one
// transaction.
func (s *Store) ReplaceGameState(ctx context.Context, gameID int64, entries []model.GameState) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM game_states WHERE game_id = $1`, gameID)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			_, err = tx.Exec(ctx, `
				INSERT INTO game_states (game_id, category, observation, time)
				VALUES ($1, $2, $3, $4)
			`, gameID, entry.Category, entry.Observation, entry.Time)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
