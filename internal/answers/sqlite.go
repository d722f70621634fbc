package answers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aura-survey/backend/internal/models"
)

// SQLiteRepository stores answers in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates an answers repository over a SQLite handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert tries the insert first; a conflict on (user_id, question_id) yields no row,
// in which case the existing row is updated. Answers are never deleted, so the
// update always finds the row.
func (r *SQLiteRepository) Upsert(ctx context.Context, userID, questionID int64, optionID *int64, freeAnswer *string) (models.UpsertResult, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `INSERT INTO answers (user_id, question_id, answer_id, free_answer)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, question_id) DO NOTHING
		RETURNING id`, userID, questionID, nullInt(optionID), nullString(freeAnswer)).Scan(&id)
	if err == nil {
		return models.UpsertResult{Inserted: true, ID: id}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.UpsertResult{}, err
	}

	err = r.db.QueryRowContext(ctx, `UPDATE answers
		SET answer_id = ?, free_answer = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND question_id = ?
		RETURNING id`, nullInt(optionID), nullString(freeAnswer), userID, questionID).Scan(&id)
	if err != nil {
		return models.UpsertResult{}, err
	}
	return models.UpsertResult{Updated: true, ID: id}, nil
}

// ListByUser returns the user's answers ordered by question.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.Answer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, question_id, answer_id, free_answer
		FROM answers WHERE user_id = ? ORDER BY question_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Answer
	for rows.Next() {
		var (
			a      models.Answer
			option sql.NullInt64
			free   sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &option, &free); err != nil {
			return nil, err
		}
		if option.Valid {
			a.OptionID = &option.Int64
		}
		if free.Valid {
			a.FreeAnswer = &free.String
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountsByOption returns per-option answer counts for a question.
func (r *SQLiteRepository) CountsByOption(ctx context.Context, questionID int64) ([]models.AnswerCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT answer_id, COUNT(*) FROM answers
		WHERE question_id = ? AND answer_id IS NOT NULL
		GROUP BY answer_id ORDER BY answer_id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AnswerCount
	for rows.Next() {
		var c models.AnswerCount
		if err := rows.Scan(&c.OptionID, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
