// Package summary turns raw answers and counts into per-question results.
package summary

import (
	"math"
	"strconv"
	"strings"

	"github.com/aura-survey/backend/internal/models"
)

// OptionResult is one option with its vote count.
type OptionResult struct {
	OptionID int64  `json:"answer_id"`
	Text     string `json:"text"`
	Count    int    `json:"count"`
}

// Entry is the summary of one question for one user.
type Entry struct {
	QuestionID int64          `json:"question_id"`
	Text       string         `json:"text"`
	YourAnswer *string        `json:"your_answer"`
	Prediction *float64       `json:"prediction"`
	Results    []OptionResult `json:"results"`
}

// Feedback compares the share of votes for the user's option against their prediction.
type Feedback struct {
	Votes            int `json:"votes"`
	Total            int `json:"total"`
	ActualPercent    int `json:"actual_percent"`
	PredictedPercent int `json:"predicted_percent"`
	Difference       int `json:"difference"`
}

// FillCounts returns one result per option, in option order, with zero for options nobody chose.
// Counts for ids outside options are ignored.
func FillCounts(options []models.Option, counts []models.AnswerCount) []OptionResult {
	byOption := make(map[int64]int, len(counts))
	for _, c := range counts {
		byOption[c.OptionID] += c.Count
	}
	out := make([]OptionResult, 0, len(options))
	for _, o := range options {
		out = append(out, OptionResult{OptionID: o.ID, Text: o.Text, Count: byOption[o.ID]})
	}
	return out
}

// ComputeFeedback rounds both percentages to whole numbers. With no votes the actual share is 0.
func ComputeFeedback(results []OptionResult, selected int64, prediction float64) Feedback {
	var fb Feedback
	for _, r := range results {
		fb.Total += r.Count
		if r.OptionID == selected {
			fb.Votes = r.Count
		}
	}
	if fb.Total > 0 {
		fb.ActualPercent = int(math.Round(float64(fb.Votes) / float64(fb.Total) * 100))
	}
	fb.PredictedPercent = int(math.Round(prediction))
	fb.Difference = fb.ActualPercent - fb.PredictedPercent
	if fb.Difference < 0 {
		fb.Difference = -fb.Difference
	}
	return fb
}

// ParsePrediction reads a stored free-text prediction. ok is false for nil, non-numeric or out-of-range text.
func ParsePrediction(free *string) (value float64, ok bool) {
	if free == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*free), 64)
	if err != nil || !models.ValidPrediction(v) {
		return 0, false
	}
	return v, true
}

// FormatPrediction renders a prediction the way it is stored in free_answer.
func FormatPrediction(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Build assembles the summary for every question. counts is keyed by question id.
func Build(questions []models.Question, answers []models.Answer, counts map[int64][]models.AnswerCount) []Entry {
	byQuestion := make(map[int64]models.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	entries := make([]Entry, 0, len(questions))
	for _, q := range questions {
		e := Entry{
			QuestionID: q.ID,
			Text:       q.Text,
			Results:    FillCounts(q.Options, counts[q.ID]),
		}
		if a, ok := byQuestion[q.ID]; ok {
			e.YourAnswer = yourAnswer(&q, a)
			if v, ok := ParsePrediction(a.FreeAnswer); ok {
				e.Prediction = &v
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// yourAnswer prefers the chosen option's text and falls back to the free-text answer.
func yourAnswer(q *models.Question, a models.Answer) *string {
	if a.OptionID != nil {
		if o := q.Option(*a.OptionID); o != nil {
			text := o.Text
			return &text
		}
	}
	if a.FreeAnswer != nil && *a.FreeAnswer != "" {
		text := *a.FreeAnswer
		return &text
	}
	return nil
}
