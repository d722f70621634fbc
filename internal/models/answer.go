package models

import "math"

// Answer is a user's response to one question. OptionID is serialized as answer_id
// and FreeAnswer carries the numeric prediction as text.
type Answer struct {
	ID         int64   `json:"-"`
	UserID     int64   `json:"-"`
	QuestionID int64   `json:"question_id"`
	OptionID   *int64  `json:"answer_id"`
	FreeAnswer *string `json:"free_answer"`
}

// HasResponse reports whether the answer carries an option or a free-text value.
func (a *Answer) HasResponse() bool {
	return a != nil && (a.OptionID != nil || a.FreeAnswer != nil)
}

// AnswerInput is the body for POST /api/answers.
type AnswerInput struct {
	QuestionID *int64  `json:"question_id"`
	OptionID   *int64  `json:"answer_id"`
	FreeAnswer *string `json:"free_answer"`
}

// UpsertResult reports whether an answer row was created or updated in place.
type UpsertResult struct {
	Inserted bool  `json:"inserted,omitempty"`
	Updated  bool  `json:"updated,omitempty"`
	ID       int64 `json:"id,omitempty"`
}

// AnswerCount is the number of answers choosing one option.
type AnswerCount struct {
	OptionID int64 `json:"answer_id"`
	Count    int   `json:"count"`
}

// ValidPrediction reports whether v is a finite percentage between 0 and 100.
func ValidPrediction(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 100
}
