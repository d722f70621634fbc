package answers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-survey/backend/internal/models"
)

// PostgresRepository stores answers in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates an answers repository over a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Upsert inserts or updates the user's answer. xmax is zero only for freshly inserted tuples.
func (r *PostgresRepository) Upsert(ctx context.Context, userID, questionID int64, optionID *int64, freeAnswer *string) (models.UpsertResult, error) {
	const query = `INSERT INTO answers (user_id, question_id, answer_id, free_answer)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, question_id) DO UPDATE
		SET answer_id = EXCLUDED.answer_id, free_answer = EXCLUDED.free_answer, updated_at = NOW()
		RETURNING id, (xmax = 0)`
	var res models.UpsertResult
	err := r.pool.QueryRow(ctx, query, userID, questionID, optionID, freeAnswer).Scan(&res.ID, &res.Inserted)
	if err != nil {
		return models.UpsertResult{}, err
	}
	res.Updated = !res.Inserted
	return res, nil
}

// ListByUser returns the user's answers ordered by question.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.Answer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, question_id, answer_id, free_answer
		FROM answers WHERE user_id = $1 ORDER BY question_id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Answer, error) {
		var a models.Answer
		err := row.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.OptionID, &a.FreeAnswer)
		return a, err
	})
}

// CountsByOption returns per-option answer counts for a question.
func (r *PostgresRepository) CountsByOption(ctx context.Context, questionID int64) ([]models.AnswerCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT answer_id, COUNT(*) FROM answers
		WHERE question_id = $1 AND answer_id IS NOT NULL
		GROUP BY answer_id ORDER BY answer_id`, questionID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AnswerCount, error) {
		var c models.AnswerCount
		err := row.Scan(&c.OptionID, &c.Count)
		return c, err
	})
}
