package questions

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/internal/testutil"
)

func TestSQLiteRepositoryList(t *testing.T) {
	repo := NewSQLiteRepository(testutil.SetupSQLite(t))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	for i, q := range list {
		assert.Equal(t, int64(i+1), q.ID)
		require.Len(t, q.Options, 4)
		for j := 1; j < len(q.Options); j++ {
			assert.Less(t, q.Options[j-1].ID, q.Options[j].ID, "options ordered by id")
			assert.Equal(t, q.ID, q.Options[j].QuestionID)
		}
	}
	assert.Equal(t, "Banana", list[0].Options[1].Text)
}

func TestSQLiteRepositoryGet(t *testing.T) {
	repo := NewSQLiteRepository(testutil.SetupSQLite(t))
	ctx := context.Background()

	q, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "Which season do you enjoy most?", q.Text)
	assert.NotNil(t, q.Option(6))
	assert.Nil(t, q.Option(1))

	missing, err := repo.Get(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewSQLiteRepository(testutil.SetupSQLite(t)))
	r := gin.New()
	r.GET("/api/questions", h.List)
	r.GET("/api/questions/:id", h.Get)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"list", "/api/questions", http.StatusOK},
		{"get", "/api/questions/1", http.StatusOK},
		{"unknown", "/api/questions/42", http.StatusNotFound},
		{"not numeric", "/api/questions/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.MakeRequest(t, r, http.MethodGet, tt.path, nil, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	w := testutil.MakeRequest(t, r, http.MethodGet, "/api/questions", nil, nil)
	var list []models.Question
	testutil.DecodeJSON(t, w, &list)
	require.Len(t, list, 3)
	assert.Equal(t, []models.Option{{ID: 1, Text: "Apple"}, {ID: 2, Text: "Banana"}, {ID: 3, Text: "Cherry"}, {ID: 4, Text: "Mango"}}, list[0].Options)
}
