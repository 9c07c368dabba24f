package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embervale/realm/internal/model"
)

// CharacterRepository handles character persistence (spec §3 CharacterRow).
type CharacterRepository struct {
	pool *pgxpool.Pool
}

// NewCharacterRepository creates a new CharacterRepository.
func NewCharacterRepository(pool *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{pool: pool}
}

// LoadByID loads a character by id. Returns nil, nil if not found.
func (r *CharacterRepository) LoadByID(ctx context.Context, id int64) (*model.CharacterRow, error) {
	var c model.CharacterRow
	err := r.pool.QueryRow(ctx,
		`SELECT id, account_id, name, guild_id, position_x, position_y, position_z,
		        rotation_yaw, level, hp, max_hp, created_at
		 FROM characters WHERE id = $1`, id,
	).Scan(&c.ID, &c.AccountID, &c.Name, &c.GuildID, &c.PositionX, &c.PositionY, &c.PositionZ,
		&c.Yaw, &c.Level, &c.HP, &c.MaxHP, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying character %d: %w", id, err)
	}
	return &c, nil
}

// ListByAccountID lists every character owned by an account, used by the
// gateway's GET /character route.
func (r *CharacterRepository) ListByAccountID(ctx context.Context, accountID int64) ([]model.CharacterRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, name, guild_id, position_x, position_y, position_z,
		        rotation_yaw, level, hp, max_hp, created_at
		 FROM characters WHERE account_id = $1 ORDER BY created_at ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying characters for account %d: %w", accountID, err)
	}
	defer rows.Close()

	chars := make([]model.CharacterRow, 0, 8)
	for rows.Next() {
		var c model.CharacterRow
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &c.GuildID, &c.PositionX, &c.PositionY, &c.PositionZ,
			&c.Yaw, &c.Level, &c.HP, &c.MaxHP, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating character rows: %w", err)
	}
	return chars, nil
}

// Create inserts a new character at the default spawn transform.
func (r *CharacterRepository) Create(ctx context.Context, accountID int64, name string) (*model.CharacterRow, error) {
	c := model.CharacterRow{
		AccountID: accountID,
		Name:      name,
		Level:     1,
		HP:        100,
		MaxHP:     100,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO characters (account_id, name, position_x, position_y, position_z, rotation_yaw, level, hp, max_hp)
		 VALUES ($1, $2, 0, 0, 0, 0, 1, 100, 100)
		 RETURNING id, created_at`,
		accountID, name,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating character %q: %w", name, err)
	}
	return &c, nil
}

// GetIDByName resolves a character name to an id, used by the social hub
// for whisper-by-name (spec §4.6). Returns 0, nil if not found.
func (r *CharacterRepository) GetIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM characters WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying character id for name %q: %w", name, err)
	}
	return id, nil
}

// PersistTransform is the hot path invoked on disconnect (spec §4.4 step 2):
// it writes only the last known transform and vitals, not the full row.
func (r *CharacterRepository) PersistTransform(ctx context.Context, id int64, x, y, z float32, yaw uint16, hp int32) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE characters SET position_x = $2, position_y = $3, position_z = $4, rotation_yaw = $5, hp = $6
		 WHERE id = $1`,
		id, x, y, z, yaw, hp,
	)
	if err != nil {
		return fmt.Errorf("persisting transform for character %d: %w", id, err)
	}
	return nil
}

// SetGuild assigns or clears (guildID == nil) a character's guild.
func (r *CharacterRepository) SetGuild(ctx context.Context, id int64, guildID *int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE characters SET guild_id = $2 WHERE id = $1`, id, guildID)
	if err != nil {
		return fmt.Errorf("setting guild for character %d: %w", id, err)
	}
	return nil
}
