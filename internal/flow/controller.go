// Package flow drives the client survey: which screen is shown and what each action does,
// derived from locally persisted progress merged with server state.
package flow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/internal/progress"
	"github.com/aura-survey/backend/internal/summary"
)

// View is the screen the client should show.
type View int

const (
	ViewAuth View = iota
	ViewEmpty
	ViewQuestion
	ViewSummary
)

func (v View) String() string {
	switch v {
	case ViewAuth:
		return "auth"
	case ViewEmpty:
		return "empty"
	case ViewQuestion:
		return "question"
	case ViewSummary:
		return "summary"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// API is the subset of the survey API the controller needs.
type API interface {
	SetToken(token string)
	Register(ctx context.Context, email, password string, name *string) (*models.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Questions(ctx context.Context) ([]models.Question, error)
	Answers(ctx context.Context) ([]models.Answer, error)
	Counts(ctx context.Context, questionID int64) ([]models.AnswerCount, error)
	SubmitAnswer(ctx context.Context, questionID int64, optionID *int64, freeAnswer *string) (models.UpsertResult, error)
}

// StateStore persists progress between runs.
type StateStore interface {
	Load() (*progress.State, error)
	Save(*progress.State) error
	Reset() error
}

// QuestionView is everything needed to render the current question.
type QuestionView struct {
	Question        models.Question
	Position        int
	Total           int
	Selected        *int64
	Prediction      *float64
	Draft           *float64
	Results         []summary.OptionResult
	FeedbackVisible bool
	Feedback        *summary.Feedback
	CanNext         bool
}

// Controller holds the client survey state. It is not safe for concurrent use.
type Controller struct {
	api    API
	store  StateStore
	logger *zap.Logger

	state     *progress.State
	questions []models.Question
	answers   map[int64]models.Answer
	counts    map[int64][]models.AnswerCount
	index     int
	draft     *float64
}

// New creates a controller. Call Load before anything else.
func New(api API, store StateStore, logger *zap.Logger) *Controller {
	return &Controller{
		api:     api,
		store:   store,
		logger:  logger,
		state:   progress.NewState(),
		answers: make(map[int64]models.Answer),
		counts:  make(map[int64][]models.AnswerCount),
	}
}

// Load reads local progress and, with a session, fetches questions, answers and counts.
// The position is the first question not yet completed, or the summary when all are.
func (c *Controller) Load(ctx context.Context) error {
	st, err := c.store.Load()
	if err != nil {
		return err
	}
	c.state = st
	c.draft = nil
	if c.state.Session == nil {
		c.api.SetToken("")
		return nil
	}
	c.api.SetToken(c.state.Session.Token)

	questions, err := c.api.Questions(ctx)
	if err != nil {
		return c.handle(err)
	}
	c.questions = questions
	c.state.ResolveLegacy(questions)

	if err := c.fetchAll(ctx); err != nil {
		return c.handle(err)
	}

	c.index = len(c.questions)
	for i, q := range c.questions {
		if !c.state.IsCompleted(q.ID) {
			c.index = i
			break
		}
	}
	return c.save()
}

func (c *Controller) fetchAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	var answers []models.Answer
	g.Go(func() error {
		var err error
		answers, err = c.api.Answers(gctx)
		return err
	})
	counts := make([][]models.AnswerCount, len(c.questions))
	for i, q := range c.questions {
		i, id := i, q.ID
		g.Go(func() error {
			var err error
			counts[i], err = c.api.Counts(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.answers = make(map[int64]models.Answer, len(answers))
	for _, a := range answers {
		c.answers[a.QuestionID] = a
	}
	c.counts = make(map[int64][]models.AnswerCount, len(c.questions))
	for i, q := range c.questions {
		c.counts[q.ID] = counts[i]
	}
	return nil
}

// Register creates an account, stores the session and loads the survey.
func (c *Controller) Register(ctx context.Context, email, password string, name *string) error {
	res, err := c.api.Register(ctx, email, password, name)
	if err != nil {
		return err
	}
	return c.startSession(ctx, res)
}

// Login signs in, stores the session and loads the survey.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	res, err := c.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return c.startSession(ctx, res)
}

func (c *Controller) startSession(ctx context.Context, res *models.TokenResponse) error {
	st, err := c.store.Load()
	if err != nil {
		return err
	}
	user := res.User
	st.Session = &progress.Session{Token: res.Token, User: &user}
	c.state = st
	if err := c.save(); err != nil {
		return err
	}
	return c.Load(ctx)
}

// Logout drops the session and keeps survey progress.
func (c *Controller) Logout() error {
	c.state.Session = nil
	c.api.SetToken("")
	return c.save()
}

// Reset clears every stored key, the session included.
func (c *Controller) Reset() error {
	if err := c.store.Reset(); err != nil {
		return err
	}
	c.state = progress.NewState()
	c.questions = nil
	c.answers = make(map[int64]models.Answer)
	c.counts = make(map[int64][]models.AnswerCount)
	c.index = 0
	c.draft = nil
	c.api.SetToken("")
	return nil
}

// Session returns the signed-in session, or nil.
func (c *Controller) Session() *progress.Session { return c.state.Session }

// View returns the screen to show.
func (c *Controller) View() View {
	switch {
	case c.state.Session == nil:
		return ViewAuth
	case len(c.questions) == 0:
		return ViewEmpty
	case c.index >= len(c.questions):
		return ViewSummary
	default:
		return ViewQuestion
	}
}

// Current describes the current question, or returns nil outside ViewQuestion.
func (c *Controller) Current() *QuestionView {
	if c.View() != ViewQuestion {
		return nil
	}
	q := c.questions[c.index]
	v := &QuestionView{
		Question:   q,
		Position:   c.index + 1,
		Total:      len(c.questions),
		Selected:   c.selected(q.ID),
		Prediction: c.prediction(q.ID),
		Draft:      c.draft,
		Results:    summary.FillCounts(q.Options, c.counts[q.ID]),
	}
	v.CanNext = v.Selected != nil
	if c.feedbackVisible(q.ID) && v.Selected != nil && v.Prediction != nil {
		fb := summary.ComputeFeedback(v.Results, *v.Selected, *v.Prediction)
		v.FeedbackVisible = true
		v.Feedback = &fb
	}
	return v
}

// selected prefers the local choice, then the server's stored option.
func (c *Controller) selected(questionID int64) *int64 {
	if id, ok := c.state.Selected[questionID]; ok {
		return &id
	}
	if a, ok := c.answers[questionID]; ok && a.OptionID != nil {
		id := *a.OptionID
		return &id
	}
	return nil
}

// prediction prefers the locally submitted value, then the server's free_answer.
func (c *Controller) prediction(questionID int64) *float64 {
	if p, ok := c.state.Predictions[questionID]; ok {
		return &p
	}
	if a, ok := c.answers[questionID]; ok {
		if p, ok := summary.ParsePrediction(a.FreeAnswer); ok {
			return &p
		}
	}
	return nil
}

func (c *Controller) feedbackVisible(questionID int64) bool {
	if c.state.FeedbackShown[questionID] {
		return true
	}
	a, ok := c.answers[questionID]
	return ok && a.FreeAnswer != nil
}

// Select records an option for the current question. Any prediction for the question is
// cleared locally and on the server, and feedback is hidden until a new prediction is submitted.
func (c *Controller) Select(ctx context.Context, optionID int64) error {
	q, err := c.currentQuestion()
	if err != nil {
		return err
	}
	if q.Option(optionID) == nil {
		return apperr.Validation("option does not belong to this question")
	}
	if _, err := c.api.SubmitAnswer(ctx, q.ID, &optionID, nil); err != nil {
		return c.handle(err)
	}

	c.state.ClearQuestion(q.ID)
	c.state.Selected[q.ID] = optionID
	c.draft = nil
	c.answers[q.ID] = models.Answer{QuestionID: q.ID, OptionID: &optionID}
	if err := c.save(); err != nil {
		return err
	}
	return c.refresh(ctx, q.ID)
}

// SetPrediction stores an unsent prediction for the current question.
func (c *Controller) SetPrediction(value float64) error {
	q, err := c.currentQuestion()
	if err != nil {
		return err
	}
	if c.selected(q.ID) == nil {
		return apperr.Validation("select an option first")
	}
	if !models.ValidPrediction(value) {
		return apperr.Validation("prediction must be between 0 and 100")
	}
	c.draft = &value
	return nil
}

// SubmitPrediction sends the draft prediction with the current selection and shows feedback.
func (c *Controller) SubmitPrediction(ctx context.Context) error {
	q, err := c.currentQuestion()
	if err != nil {
		return err
	}
	sel := c.selected(q.ID)
	if sel == nil {
		return apperr.Validation("select an option first")
	}
	if c.draft == nil {
		return apperr.Validation("enter a prediction first")
	}
	value := *c.draft
	free := summary.FormatPrediction(value)
	if _, err := c.api.SubmitAnswer(ctx, q.ID, sel, &free); err != nil {
		return c.handle(err)
	}

	c.state.Selected[q.ID] = *sel
	c.state.Predictions[q.ID] = value
	c.state.FeedbackShown[q.ID] = true
	c.draft = nil
	c.answers[q.ID] = models.Answer{QuestionID: q.ID, OptionID: sel, FreeAnswer: &free}
	if err := c.save(); err != nil {
		return err
	}
	return c.refresh(ctx, q.ID)
}

// Next completes the current question and advances, reaching the summary after the last one.
func (c *Controller) Next() error {
	q, err := c.currentQuestion()
	if err != nil {
		return err
	}
	if c.selected(q.ID) == nil {
		return apperr.Validation("answer this question before moving on")
	}
	c.state.MarkCompleted(q.ID)
	c.index++
	c.draft = nil
	return c.save()
}

// Prev moves back one question. From the summary it returns to the last question.
func (c *Controller) Prev() error {
	switch c.View() {
	case ViewQuestion:
		if c.index == 0 {
			return apperr.Validation("already at the first question")
		}
	case ViewSummary:
	default:
		return apperr.Validation("no question to go back to")
	}
	c.index--
	c.draft = nil
	return nil
}

// Feedback returns the feedback for the current question, or nil when it is hidden.
func (c *Controller) Feedback() *summary.Feedback {
	v := c.Current()
	if v == nil {
		return nil
	}
	return v.Feedback
}

// Summary returns per-question results with the caller's answers.
func (c *Controller) Summary() []summary.Entry {
	answers := make([]models.Answer, 0, len(c.answers))
	for _, a := range c.answers {
		answers = append(answers, a)
	}
	return summary.Build(c.questions, answers, c.counts)
}

// Refresh reloads answers and every question's counts.
func (c *Controller) Refresh(ctx context.Context) error {
	if c.state.Session == nil {
		return apperr.Unauthorized("not signed in")
	}
	if err := c.fetchAll(ctx); err != nil {
		return c.handle(err)
	}
	return nil
}

// refresh reloads the user's answers and one question's counts after a write.
func (c *Controller) refresh(ctx context.Context, questionID int64) error {
	g, gctx := errgroup.WithContext(ctx)
	var answers []models.Answer
	var counts []models.AnswerCount
	g.Go(func() error {
		var err error
		answers, err = c.api.Answers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = c.api.Counts(gctx, questionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return c.handle(err)
	}
	c.answers = make(map[int64]models.Answer, len(answers))
	for _, a := range answers {
		c.answers[a.QuestionID] = a
	}
	c.counts[questionID] = counts
	return nil
}

func (c *Controller) currentQuestion() (*models.Question, error) {
	if c.View() != ViewQuestion {
		return nil, apperr.Validation("no current question")
	}
	return &c.questions[c.index], nil
}

// handle drops the session on authentication failures so the client returns to sign-in.
func (c *Controller) handle(err error) error {
	if !apperr.IsAuth(err) {
		return err
	}
	c.logger.Info("session rejected by server, signing out", zap.Error(err))
	c.state.Session = nil
	c.api.SetToken("")
	if saveErr := c.save(); saveErr != nil {
		return errors.Join(err, saveErr)
	}
	return err
}

func (c *Controller) save() error {
	if err := c.store.Save(c.state); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
