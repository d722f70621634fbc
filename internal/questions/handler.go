package questions

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/internal/middleware"
	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/pkg/response"
)

// Handler serves the read-only question catalog.
type Handler struct {
	repo Repository
}

// NewHandler creates a questions handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /api/questions.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		middleware.WriteError(c, apperr.Persistence("failed to fetch questions", err))
		return
	}
	if list == nil {
		list = []models.Question{}
	}
	response.OK(c, list)
}

// Get handles GET /api/questions/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid question id")
		return
	}
	q, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, apperr.Persistence("failed to fetch question", err))
		return
	}
	if q == nil {
		response.NotFound(c, "question not found")
		return
	}
	response.OK(c, q)
}
