// Package progress persists the terminal client's survey state between runs.
package progress

import (
	"sort"

	"github.com/aura-survey/backend/internal/models"
)

// Version is the current on-disk format.
const Version = 2

// Session is the signed-in user and their bearer token.
type Session struct {
	Token string             `json:"token"`
	User  *models.UserPublic `json:"user,omitempty"`
}

// State is everything the client remembers locally. Map keys are question ids.
type State struct {
	Version       int               `json:"version"`
	Selected      map[int64]int64   `json:"selected"`
	Predictions   map[int64]float64 `json:"predictions"`
	Completed     []int64           `json:"completed"`
	FeedbackShown map[int64]bool    `json:"feedback_shown"`
	Session       *Session          `json:"session,omitempty"`

	// LegacySelected holds version-1 selections, which were stored as option text.
	// They are converted to option ids by ResolveLegacy once the catalog is known.
	LegacySelected map[int64]string `json:"legacy_selected,omitempty"`
}

// NewState returns an empty state at the current version.
func NewState() *State {
	s := &State{Version: Version}
	s.normalize()
	return s
}

func (s *State) normalize() {
	s.Version = Version
	if s.Selected == nil {
		s.Selected = make(map[int64]int64)
	}
	if s.Predictions == nil {
		s.Predictions = make(map[int64]float64)
	}
	if s.FeedbackShown == nil {
		s.FeedbackShown = make(map[int64]bool)
	}
	if s.Completed == nil {
		s.Completed = []int64{}
	}
}

// IsCompleted reports whether the question was moved past with Next.
func (s *State) IsCompleted(questionID int64) bool {
	for _, id := range s.Completed {
		if id == questionID {
			return true
		}
	}
	return false
}

// MarkCompleted records a question as completed, keeping the list sorted and unique.
func (s *State) MarkCompleted(questionID int64) {
	if s.IsCompleted(questionID) {
		return
	}
	s.Completed = append(s.Completed, questionID)
	sort.Slice(s.Completed, func(i, j int) bool { return s.Completed[i] < s.Completed[j] })
}

// ClearQuestion forgets the local selection, prediction and feedback flag of a question.
func (s *State) ClearQuestion(questionID int64) {
	delete(s.Selected, questionID)
	delete(s.Predictions, questionID)
	delete(s.FeedbackShown, questionID)
	delete(s.LegacySelected, questionID)
}

// ResolveLegacy maps version-1 option texts to ids. Texts that match no option are dropped.
func (s *State) ResolveLegacy(questions []models.Question) {
	if len(s.LegacySelected) == 0 {
		return
	}
	for _, q := range questions {
		text, ok := s.LegacySelected[q.ID]
		if !ok {
			continue
		}
		for _, o := range q.Options {
			if o.Text == text {
				if _, exists := s.Selected[q.ID]; !exists {
					s.Selected[q.ID] = o.ID
				}
				break
			}
		}
	}
	s.LegacySelected = nil
}
