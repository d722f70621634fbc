package answers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/internal/middleware"
	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/internal/questions"
	"github.com/aura-survey/backend/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

type recordingNotifier struct {
	mu     sync.Mutex
	events map[int64][]models.AnswerCount
	err    error
}

func (n *recordingNotifier) PublishCounts(_ context.Context, questionID int64, counts []models.AnswerCount) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.events == nil {
		n.events = make(map[int64][]models.AnswerCount)
	}
	n.events[questionID] = counts
	return n.err
}

func newService(t *testing.T, notifier Notifier) (*Service, *sql.DB) {
	t.Helper()
	db := testutil.SetupSQLite(t)
	svc := NewService(NewSQLiteRepository(db), questions.NewSQLiteRepository(db), notifier, zap.NewNop())
	return svc, db
}

func TestSQLiteUpsertKeepsOneRow(t *testing.T) {
	db := testutil.SetupSQLite(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice@example.com")

	first, err := repo.Upsert(ctx, alice, 1, ptr(int64(2)), nil)
	require.NoError(t, err)
	assert.True(t, first.Inserted)
	assert.NotZero(t, first.ID)

	second, err := repo.Upsert(ctx, alice, 1, ptr(int64(3)), ptr("40"))
	require.NoError(t, err)
	assert.True(t, second.Updated)
	assert.Equal(t, first.ID, second.ID)

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM answers WHERE user_id = ? AND question_id = 1`, alice).Scan(&rows))
	assert.Equal(t, 1, rows)

	list, err := repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), *list[0].OptionID, "last write wins")
	assert.Equal(t, "40", *list[0].FreeAnswer)
}

func TestSQLiteUpsertClearsPrediction(t *testing.T) {
	db := testutil.SetupSQLite(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice@example.com")

	_, err := repo.Upsert(ctx, alice, 1, ptr(int64(2)), ptr("42"))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, alice, 1, ptr(int64(1)), nil)
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].FreeAnswer)
}

func TestCountsMatchDistinctUsers(t *testing.T) {
	db := testutil.SetupSQLite(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	choices := map[string]*int64{
		"a@example.com": ptr(int64(1)),
		"b@example.com": ptr(int64(2)),
		"c@example.com": ptr(int64(2)),
		"d@example.com": nil,
	}
	for email, option := range choices {
		id := testutil.CreateUser(t, db, email)
		_, err := repo.Upsert(ctx, id, 1, option, nil)
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, id, 1, option, ptr("50"))
		require.NoError(t, err)
	}

	counts, err := repo.CountsByOption(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.AnswerCount{{OptionID: 1, Count: 1}, {OptionID: 2, Count: 2}}, counts)

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	var distinct int
	require.NoError(t, db.QueryRow(`SELECT COUNT(DISTINCT user_id) FROM answers WHERE question_id = 1 AND answer_id IS NOT NULL`).Scan(&distinct))
	assert.Equal(t, distinct, total)
}

func TestServiceSubmitValidation(t *testing.T) {
	svc, db := newService(t, nil)
	alice := testutil.CreateUser(t, db, "alice@example.com")

	tests := []struct {
		name   string
		userID int64
		in     models.AnswerInput
		want   apperr.Kind
	}{
		{"no user", 0, models.AnswerInput{QuestionID: ptr(int64(1))}, apperr.KindValidation},
		{"no question", alice, models.AnswerInput{OptionID: ptr(int64(1))}, apperr.KindValidation},
		{"negative question", alice, models.AnswerInput{QuestionID: ptr(int64(-1))}, apperr.KindValidation},
		{"unknown question", alice, models.AnswerInput{QuestionID: ptr(int64(99)), OptionID: ptr(int64(1))}, apperr.KindNotFound},
		{"option of another question", alice, models.AnswerInput{QuestionID: ptr(int64(1)), OptionID: ptr(int64(5))}, apperr.KindValidation},
		{"non-numeric prediction", alice, models.AnswerInput{QuestionID: ptr(int64(1)), OptionID: ptr(int64(2)), FreeAnswer: ptr("lots")}, apperr.KindValidation},
		{"NaN prediction", alice, models.AnswerInput{QuestionID: ptr(int64(1)), OptionID: ptr(int64(2)), FreeAnswer: ptr("NaN")}, apperr.KindValidation},
		{"prediction out of range", alice, models.AnswerInput{QuestionID: ptr(int64(1)), OptionID: ptr(int64(2)), FreeAnswer: ptr("101")}, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.userID, tt.in)
			assert.Equal(t, tt.want, apperr.KindOf(err), "got %v", err)
		})
	}
}

func TestServiceSubmitZeroOptionIsNull(t *testing.T) {
	svc, db := newService(t, nil)
	alice := testutil.CreateUser(t, db, "alice@example.com")
	ctx := context.Background()

	_, err := svc.Submit(ctx, alice, models.AnswerInput{QuestionID: ptr(int64(1)), OptionID: ptr(int64(0)), FreeAnswer: ptr("10")})
	require.NoError(t, err)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].OptionID)
	assert.Equal(t, "10", *list[0].FreeAnswer)
}

func TestServiceSubmitNotifies(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("redis down")}
	svc, db := newService(t, notifier)
	alice := testutil.CreateUser(t, db, "alice@example.com")

	res, err := svc.Submit(context.Background(), alice, models.AnswerInput{QuestionID: ptr(int64(1)), OptionID: ptr(int64(2))})
	require.NoError(t, err, "publish failures are not returned")
	assert.True(t, res.Inserted)
	assert.Equal(t, []models.AnswerCount{{OptionID: 2, Count: 1}}, notifier.events[1])
}

func TestServiceCounts(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	counts, err := svc.Counts(ctx, 2)
	require.NoError(t, err)
	assert.NotNil(t, counts)
	assert.Empty(t, counts)

	_, err = svc.Counts(ctx, 99)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Counts(ctx, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, db := newService(t, nil)
	alice := testutil.CreateUser(t, db, "alice@example.com")
	h := NewHandler(svc)

	r := gin.New()
	authed := r.Group("/api", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, alice)
		c.Next()
	})
	authed.GET("/answers", h.List)
	authed.POST("/answers", h.Submit)
	r.GET("/api/answer_counts", h.Counts)

	w := testutil.MakeRequest(t, r, http.MethodGet, "/api/answers", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = testutil.MakeRequest(t, r, http.MethodPost, "/api/answers", gin.H{"question_id": 1, "answer_id": 2, "free_answer": nil}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var inserted models.UpsertResult
	testutil.DecodeJSON(t, w, &inserted)
	assert.True(t, inserted.Inserted)
	assert.NotZero(t, inserted.ID)

	w = testutil.MakeRequest(t, r, http.MethodPost, "/api/answers", gin.H{"question_id": 1, "answer_id": 2, "free_answer": "42"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":true}`, w.Body.String())

	w = testutil.MakeRequest(t, r, http.MethodGet, "/api/answers", nil, nil)
	assert.JSONEq(t, `[{"question_id":1,"answer_id":2,"free_answer":"42"}]`, w.Body.String())

	w = testutil.MakeRequest(t, r, http.MethodGet, "/api/answer_counts?question_id=1", nil, nil)
	assert.JSONEq(t, `[{"answer_id":2,"count":1}]`, w.Body.String())

	errorCases := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
	}{
		{"counts without id", http.MethodGet, "/api/answer_counts", nil, http.StatusBadRequest},
		{"counts bad id", http.MethodGet, "/api/answer_counts?question_id=abc", nil, http.StatusBadRequest},
		{"counts unknown question", http.MethodGet, "/api/answer_counts?question_id=99", nil, http.StatusNotFound},
		{"submit bad json", http.MethodPost, "/api/answers", "not an object", http.StatusBadRequest},
		{"submit foreign option", http.MethodPost, "/api/answers", gin.H{"question_id": 2, "answer_id": 1}, http.StatusBadRequest},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.MakeRequest(t, r, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}
