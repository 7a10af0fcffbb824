package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUnexpectedDatabase = errors.New("unexpected database error")

// Postgres mirrors room lifecycle events into the relational schema the
// alternate build of the app uses (games, players, claims). It is a thin
// write-through layer with no durability guarantees toward the game core.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func (pg *Postgres) Close() {
	pg.pool.Close()
}

func (pg *Postgres) GameCreated(ctx context.Context, code, name string) error {
	_, err := pg.pool.Exec(ctx,
		"INSERT INTO games(code, name) VALUES($1, $2) ON CONFLICT (code) DO NOTHING",
		code, name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
	return nil
}

func (pg *Postgres) PlayerJoined(ctx context.Context, code, playerID, name, color string) error {
	_, err := pg.pool.Exec(ctx,
		`INSERT INTO players(game_code, player_id, name, color)
		 VALUES($1, $2, $3, $4)
		 ON CONFLICT (game_code, player_id) DO NOTHING`,
		code, playerID, name, color)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
	return nil
}

// WordClaimed records the claim and bumps the player's mirrored score in
// one transaction.
func (pg *Postgres) WordClaimed(ctx context.Context, code, wordID string, category string, points int, playerID string) error {
	tx, err := pg.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO claims(game_code, word_id, category, points, player_id)
		 VALUES($1, $2, $3, $4, $5)`,
		code, wordID, category, points, playerID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}

	_, err = tx.Exec(ctx,
		"UPDATE players SET score = score + $1 WHERE game_code = $2 AND player_id = $3",
		points, code, playerID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
	return nil
}

// PlayerScore reads back a player's mirrored score.
func (pg *Postgres) PlayerScore(ctx context.Context, code, playerID string) (int, error) {
	var score int
	err := pg.pool.QueryRow(ctx,
		"SELECT score FROM players WHERE game_code = $1 AND player_id = $2",
		code, playerID).Scan(&score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("player %s not found in game %s", playerID, code)
		}
		return 0, fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
	return score, nil
}
