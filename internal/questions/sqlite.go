package questions

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aura-survey/backend/internal/models"
)

// SQLiteRepository reads questions from SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a questions repository over a SQLite handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// List returns every question with its options attached.
func (r *SQLiteRepository) List(ctx context.Context) ([]models.Question, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, text FROM questions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Text); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	options, err := r.options(ctx, `SELECT id, question_id, text FROM answer_options ORDER BY question_id, id`)
	if err != nil {
		return nil, err
	}
	return attachOptions(questions, options), nil
}

// Get returns a question by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.Question, error) {
	var q models.Question
	err := r.db.QueryRowContext(ctx, `SELECT id, text FROM questions WHERE id = ?`, id).Scan(&q.ID, &q.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	options, err := r.options(ctx, `SELECT id, question_id, text FROM answer_options WHERE question_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	out := attachOptions([]models.Question{q}, options)
	return &out[0], nil
}

func (r *SQLiteRepository) options(ctx context.Context, query string, args ...any) ([]models.Option, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []models.Option
	for rows.Next() {
		var o models.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}
