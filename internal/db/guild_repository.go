package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embervale/realm/internal/model"
)

// GuildRepository handles guild persistence. Guild membership itself
// lives on the characters row (guild_id), mirroring spec §3/§6.
type GuildRepository struct {
	pool *pgxpool.Pool
}

// NewGuildRepository creates a new GuildRepository.
func NewGuildRepository(pool *pgxpool.Pool) *GuildRepository {
	return &GuildRepository{pool: pool}
}

// GetByID loads a guild by id. Returns nil, nil if not found.
func (r *GuildRepository) GetByID(ctx context.Context, id int64) (*model.Guild, error) {
	var g model.Guild
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM guilds WHERE id = $1`, id).Scan(&g.ID, &g.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying guild %d: %w", id, err)
	}
	return &g, nil
}

// Create inserts a new guild.
func (r *GuildRepository) Create(ctx context.Context, name string) (*model.Guild, error) {
	g := model.Guild{Name: name}
	err := r.pool.QueryRow(ctx, `INSERT INTO guilds (name) VALUES ($1) RETURNING id`, name).Scan(&g.ID)
	if err != nil {
		return nil, fmt.Errorf("creating guild %q: %w", name, err)
	}
	return &g, nil
}
