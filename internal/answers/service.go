package answers

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/internal/questions"
)

// Notifier receives fresh counts after an answer changes.
type Notifier interface {
	PublishCounts(ctx context.Context, questionID int64, counts []models.AnswerCount) error
}

// Service validates and stores answers.
type Service struct {
	repo      Repository
	questions questions.Repository
	notifier  Notifier
	logger    *zap.Logger
}

// NewService creates an answers service. notifier may be nil.
func NewService(repo Repository, questions questions.Repository, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{repo: repo, questions: questions, notifier: notifier, logger: logger}
}

// Submit upserts the user's answer to one question.
func (s *Service) Submit(ctx context.Context, userID int64, in models.AnswerInput) (models.UpsertResult, error) {
	if userID <= 0 {
		return models.UpsertResult{}, apperr.Validation("user_id is required")
	}
	if in.QuestionID == nil || *in.QuestionID <= 0 {
		return models.UpsertResult{}, apperr.Validation("question_id is required")
	}
	questionID := *in.QuestionID

	q, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return models.UpsertResult{}, apperr.Persistence("failed to fetch question", err)
	}
	if q == nil {
		return models.UpsertResult{}, apperr.NotFound("question not found")
	}

	optionID := in.OptionID
	if optionID != nil && *optionID == 0 {
		optionID = nil
	}
	if optionID != nil && q.Option(*optionID) == nil {
		return models.UpsertResult{}, apperr.Validation("answer_id does not belong to question")
	}

	if in.FreeAnswer != nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(*in.FreeAnswer), 64)
		if err != nil || !models.ValidPrediction(v) {
			return models.UpsertResult{}, apperr.Validation("free_answer must be a number between 0 and 100")
		}
	}

	res, err := s.repo.Upsert(ctx, userID, questionID, optionID, in.FreeAnswer)
	if err != nil {
		return models.UpsertResult{}, apperr.Persistence("failed to save answer", err)
	}
	s.notify(ctx, questionID)
	return res, nil
}

// List returns the user's stored answers.
func (s *Service) List(ctx context.Context, userID int64) ([]models.Answer, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("failed to fetch answers", err)
	}
	if list == nil {
		list = []models.Answer{}
	}
	return list, nil
}

// Counts returns non-zero per-option counts for a question.
func (s *Service) Counts(ctx context.Context, questionID int64) ([]models.AnswerCount, error) {
	if questionID <= 0 {
		return nil, apperr.Validation("question_id is required")
	}
	q, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return nil, apperr.Persistence("failed to fetch question", err)
	}
	if q == nil {
		return nil, apperr.NotFound("question not found")
	}
	counts, err := s.repo.CountsByOption(ctx, questionID)
	if err != nil {
		return nil, apperr.Persistence("failed to fetch answer counts", err)
	}
	if counts == nil {
		counts = []models.AnswerCount{}
	}
	return counts, nil
}

func (s *Service) notify(ctx context.Context, questionID int64) {
	if s.notifier == nil {
		return
	}
	counts, err := s.repo.CountsByOption(ctx, questionID)
	if err != nil {
		s.logger.Warn("recompute counts for broadcast", zap.Int64("question_id", questionID), zap.Error(err))
		return
	}
	if counts == nil {
		counts = []models.AnswerCount{}
	}
	if err := s.notifier.PublishCounts(ctx, questionID, counts); err != nil {
		s.logger.Warn("publish answer counts", zap.Int64("question_id", questionID), zap.Error(err))
	}
}
