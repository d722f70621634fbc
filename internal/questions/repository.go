package questions

import (
	"context"

	"github.com/aura-survey/backend/internal/models"
)

// Repository reads the seeded question catalog. Questions and options are returned
// in ascending id order.
type Repository interface {
	List(ctx context.Context) ([]models.Question, error)
	// Get returns nil, nil when the question does not exist.
	Get(ctx context.Context, id int64) (*models.Question, error)
}

// attachOptions groups options onto their parent question by question id.
func attachOptions(questions []models.Question, options []models.Option) []models.Question {
	index := make(map[int64]int, len(questions))
	for i := range questions {
		questions[i].Options = []models.Option{}
		index[questions[i].ID] = i
	}
	for _, o := range options {
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions
}
