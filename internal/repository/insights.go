package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
)

const statsColumns = `player_id, game_id,
	snaps_played, penalties, turnovers, touchdowns,
	pass_attempts, pass_completions, passing_yards, passing_tds, interceptions_thrown,
	rush_attempts, rushing_yards, rushing_tds,
	receptions, receiving_yards, receiving_tds,
	sacks_allowed,
	tackles, sacks, interceptions, forced_fumbles, fumbles_recovered, passes_defended,
	field_goals_made, field_goals_attempted, extra_points_made,
	punts, punt_yards,
	kick_returns, kick_return_yards, kick_return_tds,
	punt_returns, punt_return_yards, punt_return_tds`

func (s *Store) GetStats(ctx context.Context, playerID, gameID int64) (model.PlayerStats, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+statsColumns+`
		FROM player_stats
		WHERE player_id = $1 AND game_id = $2
	`, playerID, gameID)
	return scanStats(row)
}

func (s *Store) ListNotes(ctx context.Context, playerID, gameID int64) ([]model.PlayerNote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, player_id, game_id, category, note, time, created_at
		FROM player_notes
		WHERE player_id = $1 AND game_id = $2
		ORDER BY created_at ASC
	`, playerID, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotes(rows)
}

// ReplaceInsights overwrites everything recorded for the (player, game) pair
// in one transaction. A nil stats means the row is removed and not recreated.
func (s *Store) ReplaceInsights(ctx context.Context, playerID, gameID int64, stats *model.PlayerStats, notes []model.PlayerNote) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM player_stats WHERE player_id = $1 AND game_id = $2`, playerID, gameID)
		if err != nil {
			return err
		}
		if stats != nil {
			_, err = tx.Exec(ctx, `
				INSERT INTO player_stats (`+statsColumns+`)
				VALUES ($1, $2,
					$3, $4, $5, $6,
					$7, $8, $9, $10, $11,
					$12, $13, $14,
					$15, $16, $17,
					$18,
					$19, $20, $21, $22, $23, $24,
					$25, $26, $27,
					$28, $29,
					$30, $31, $32,
					$33, $34, $35)
			`, playerID, gameID,
				stats.SnapsPlayed, stats.Penalties, stats.Turnovers, stats.Touchdowns,
				stats.PassAttempts, stats.PassCompletions, stats.PassingYards, stats.PassingTDs, stats.InterceptionsThrown,
				stats.RushAttempts, stats.RushingYards, stats.RushingTDs,
				stats.Receptions, stats.ReceivingYards, stats.ReceivingTDs,
				stats.SacksAllowed,
				stats.Tackles, stats.Sacks, stats.Interceptions, stats.ForcedFumbles, stats.FumblesRecovered, stats.PassesDefended,
				stats.FieldGoalsMade, stats.FieldGoalsAttempted, stats.ExtraPointsMade,
				stats.Punts, stats.PuntYards,
				stats.KickReturns, stats.KickReturnYards, stats.KickReturnTDs,
				stats.PuntReturns, stats.PuntReturnYards, stats.PuntReturnTDs)
			if err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `DELETE FROM player_notes WHERE player_id = $1 AND game_id = $2`, playerID, gameID)
		if err != nil {
			return err
		}
		for _, note := range notes {
			_, err = tx.Exec(ctx, `
				INSERT INTO player_notes (player_id, game_id, category, note, time)
				VALUES ($1, $2, $3, $4, $5)
			`, playerID, gameID, note.Category, note.Note, note.Time)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func scanStats(row teamScanner) (model.PlayerStats, error) {
	var st model.PlayerStats
	err := row.Scan(
		&st.PlayerID, &st.GameID,
		&st.SnapsPlayed, &st.Penalties, &st.Turnovers, &st.Touchdowns,
		&st.PassAttempts, &st.PassCompletions, &st.PassingYards, &st.PassingTDs, &st.InterceptionsThrown,
		&st.RushAttempts, &st.RushingYards, &st.RushingTDs,
		&st.Receptions, &st.ReceivingYards, &st.ReceivingTDs,
		&st.SacksAllowed,
		&st.Tackles, &st.Sacks, &st.Interceptions, &st.ForcedFumbles, &st.FumblesRecovered, &st.PassesDefended,
		&st.FieldGoalsMade, &st.FieldGoalsAttempted, &st.ExtraPointsMade,
		&st.Punts, &st.PuntYards,
		&st.KickReturns, &st.KickReturnYards, &st.KickReturnTDs,
		&st.PuntReturns, &st.PuntReturnYards, &st.PuntReturnTDs,
	)
	return st, err
}

func collectNotes(rows pgx.Rows) ([]model.PlayerNote, error) {
	notes := []model.PlayerNote{}
	for rows.Next() {
		var note model.PlayerNote
		err := rows.Scan(
			&note.ID,
			&note.PlayerID,
			&note.GameID,
			&note.Category,
			&note.Note,
			&note.Time,
			&note.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
