package answers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aura-survey/backend/internal/middleware"
	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/pkg/response"
)

// Handler exposes the answer endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an answers handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/answers.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	response.OK(c, list)
}

// Submit handles POST /api/answers.
func (h *Handler) Submit(c *gin.Context) {
	var in models.AnswerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	res, err := h.svc.Submit(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if res.Updated {
		response.OK(c, models.UpsertResult{Updated: true})
		return
	}
	response.OK(c, res)
}

// Counts handles GET /api/answer_counts?question_id=ID.
func (h *Handler) Counts(c *gin.Context) {
	raw := c.Query("question_id")
	if raw == "" {
		response.BadRequest(c, "question_id is required")
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid question_id")
		return
	}
	counts, err := h.svc.Counts(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	response.OK(c, counts)
}
