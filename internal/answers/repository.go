package answers

import (
	"context"

	"github.com/aura-survey/backend/internal/models"
)

// Repository persists answers. At most one row exists per (user, question); Upsert
// is a single conditional write keyed on that pair, and the last writer wins.
type Repository interface {
	Upsert(ctx context.Context, userID, questionID int64, optionID *int64, freeAnswer *string) (models.UpsertResult, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Answer, error)
	// CountsByOption groups non-null options of a question. Options nobody chose are absent.
	CountsByOption(ctx context.Context, questionID int64) ([]models.AnswerCount, error)
}
