package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embervale/realm/internal/model"
)

// AccountRepository handles account persistence (spec §4.5 /account, /token).
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create inserts a new account with an already-hashed password. Returns
// the generated id.
func (r *AccountRepository) Create(ctx context.Context, username, email, passHash string) (int64, error) {
	username = strings.ToLower(username)
	email = strings.ToLower(email)

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (username, email, passhash) VALUES ($1, $2, $3) RETURNING id`,
		username, email, passHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating account %q: %w", username, err)
	}
	return id, nil
}

// GetByUsername loads an account by username. Returns nil, nil if not found.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	username = strings.ToLower(username)
	var acc model.Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, passhash FROM accounts WHERE username = $1`, username,
	).Scan(&acc.ID, &acc.Username, &acc.Email, &acc.PassHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying account %q: %w", username, err)
	}
	return &acc, nil
}

// GetByID loads an account by id. Returns nil, nil if not found.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	var acc model.Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, passhash FROM accounts WHERE id = $1`, id,
	).Scan(&acc.ID, &acc.Username, &acc.Email, &acc.PassHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying account %d: %w", id, err)
	}
	return &acc, nil
}
