package app

import (
	"context"
	"database/sql"
	"fmt"

	"example/fair-chess-api/app/config"
	"example/fair-chess-api/app/models"
	"example/fair-chess-api/app/search"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var db *sql.DB

// InitDB connects to Postgres and creates the fair_games table. Without a
// POSTGRES_URL it does nothing and games are not persisted.
func InitDB(ctx context.Context, cfg config.PostgresConfig) error {
	if cfg.URL == "" {
		log.Info().Msg("POSTGRES_URL not set; fair games will not be stored")
		return nil
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		cfg.Username,
		cfg.Password,
		cfg.URL,
		cfg.Port,
		cfg.Name,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	if err := d.PingContext(ctx); err != nil {
		_ = d.Close()
		return fmt.Errorf("db.Ping: %w", err)
	}
	if _, err := d.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fair_games (
			id          BIGSERIAL PRIMARY KEY,
			fen         TEXT        NOT NULL,
			score       INT         NOT NULL,
			ply         INT         NOT NULL,
			turn        TEXT        NOT NULL,
			min_ply     INT         NOT NULL,
			max_ply     INT         NOT NULL,
			max_depth   INT         NOT NULL,
			max_cp      INT         NOT NULL,
			max_pv      INT         NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`); err != nil {
		_ = d.Close()
		return fmt.Errorf("create fair_games: %w", err)
	}

	log.Info().Msg("Connected to Postgres")
	db = d
	return nil
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

func SaveFairGame(ctx context.Context, game models.FairGame, params search.Parameters) error {
	if db == nil {
		// Allow runs without a backing DB.
		return nil
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO fair_games (fen, score, ply, turn, min_ply, max_ply, max_depth, max_cp, max_pv)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`,
		game.FEN,
		game.Score,
		game.Ply,
		game.Turn,
		params.MinPly(),
		params.MaxPly(),
		params.MaxDepth(),
		params.MaxCP(),
		params.MaxPV(),
	)
	return err
}

// RecentFairGames returns the newest stored games first.
func RecentFairGames(ctx context.Context, limit int) ([]models.StoredFairGame, error) {
	if db == nil {
		return []models.StoredFairGame{}, nil
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, fen, score, ply, turn, min_ply, max_ply, max_depth, max_cp, max_pv, created_at
		FROM fair_games
		ORDER BY created_at DESC, id DESC
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []models.StoredFairGame{}
	for rows.Next() {
		var g models.StoredFairGame
		if err := rows.Scan(
			&g.ID,
			&g.FEN,
			&g.Score,
			&g.Ply,
			&g.Turn,
			&g.MinPly,
			&g.MaxPly,
			&g.MaxDepth,
			&g.MaxCP,
			&g.MaxPV,
			&g.CreatedAt,
		); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
