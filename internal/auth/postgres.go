package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/pkg/database"
)

const pgUserColumns = `id, email, COALESCE(password_hash, ''), name, external_id`

// PostgresRepository stores users in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a user repository over a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, email, passwordHash string, name *string) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3) RETURNING `+pgUserColumns, email, passwordHash, name)
	u, err := scanPgUser(row)
	if database.IsPgUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	return u, err
}

// GetByEmail returns a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE email = $1`, email)
}

// GetByID returns a user by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE id = $1`, id)
}

// GetOrCreateExternal links a provider subject to a local user.
func (r *PostgresRepository) GetOrCreateExternal(ctx context.Context, externalID, email string) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users (email, external_id) VALUES ($1, $2)
		ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		RETURNING `+pgUserColumns, email, externalID)
	u, err := scanPgUser(row)
	if database.IsPgUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	return u, err
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	u, err := scanPgUser(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func scanPgUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.ExternalID); err != nil {
		return nil, err
	}
	return &u, nil
}
