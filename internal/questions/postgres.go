package questions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-survey/backend/internal/models"
)

// PostgresRepository reads questions from PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a questions repository over a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns every question with its options attached.
func (r *PostgresRepository) List(ctx context.Context) ([]models.Question, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, text FROM questions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	questions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Question, error) {
		var q models.Question
		err := row.Scan(&q.ID, &q.Text)
		return q, err
	})
	if err != nil {
		return nil, err
	}

	options, err := r.options(ctx, `SELECT id, question_id, text FROM answer_options ORDER BY question_id, id`)
	if err != nil {
		return nil, err
	}
	return attachOptions(questions, options), nil
}

// Get returns a question by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Question, error) {
	var q models.Question
	err := r.pool.QueryRow(ctx, `SELECT id, text FROM questions WHERE id = $1`, id).Scan(&q.ID, &q.Text)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	options, err := r.options(ctx, `SELECT id, question_id, text FROM answer_options WHERE question_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	out := attachOptions([]models.Question{q}, options)
	return &out[0], nil
}

func (r *PostgresRepository) options(ctx context.Context, query string, args ...any) ([]models.Option, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Option, error) {
		var o models.Option
		err := row.Scan(&o.ID, &o.QuestionID, &o.Text)
		return o, err
	})
}
