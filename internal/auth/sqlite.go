package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/pkg/database"
)

const sqliteUserColumns = `id, email, COALESCE(password_hash, ''), name, external_id`

// SQLiteRepository stores users in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a user repository over a SQLite handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new user.
func (r *SQLiteRepository) Create(ctx context.Context, email, passwordHash string, name *string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `INSERT INTO users (email, password_hash, name)
		VALUES (?, ?, ?) RETURNING `+sqliteUserColumns, email, passwordHash, nullString(name))
	u, err := scanSQLiteUser(row)
	if database.IsSQLiteUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	return u, err
}

// GetByEmail returns a user by email.
func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE email = ?`, email)
}

// GetByID returns a user by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE id = ?`, id)
}

// GetOrCreateExternal links a provider subject to a local user.
func (r *SQLiteRepository) GetOrCreateExternal(ctx context.Context, externalID, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `INSERT INTO users (email, external_id) VALUES (?, ?)
		ON CONFLICT (external_id) DO UPDATE SET external_id = excluded.external_id
		RETURNING `+sqliteUserColumns, email, externalID)
	u, err := scanSQLiteUser(row)
	if database.IsSQLiteUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	return u, err
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	u, err := scanSQLiteUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func scanSQLiteUser(row *sql.Row) (*models.User, error) {
	var (
		u           models.User
		name, extID sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &extID); err != nil {
		return nil, err
	}
	if name.Valid {
		u.Name = &name.String
	}
	if extID.Valid {
		u.ExternalID = &extID.String
	}
	return &u, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
