package summary

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/internal/middleware"
	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/internal/questions"
	"github.com/aura-survey/backend/pkg/response"
)

// AnswerReader reads stored answers and per-question counts.
type AnswerReader interface {
	List(ctx context.Context, userID int64) ([]models.Answer, error)
	Counts(ctx context.Context, questionID int64) ([]models.AnswerCount, error)
}

// Handler serves GET /api/summary.
type Handler struct {
	questions questions.Repository
	answers   AnswerReader
}

// NewHandler creates a summary handler.
func NewHandler(questions questions.Repository, answers AnswerReader) *Handler {
	return &Handler{questions: questions, answers: answers}
}

// Get handles GET /api/summary for the authenticated user.
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.questions.List(ctx)
	if err != nil {
		middleware.WriteError(c, apperr.Persistence("failed to fetch questions", err))
		return
	}
	answers, err := h.answers.List(ctx, middleware.UserID(c))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	var mu sync.Mutex
	counts := make(map[int64][]models.AnswerCount, len(list))
	g, gctx := errgroup.WithContext(ctx)
	for _, q := range list {
		id := q.ID
		g.Go(func() error {
			cs, err := h.answers.Counts(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[id] = cs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		middleware.WriteError(c, err)
		return
	}
	response.OK(c, Build(list, answers, counts))
}
