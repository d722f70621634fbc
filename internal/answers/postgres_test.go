package answers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-survey/backend/internal/testutil"
)

func TestPostgresRepository(t *testing.T) {
	pool := testutil.SetupPostgres(t)
	ctx := context.Background()
	repo := NewPostgresRepository(pool)

	var alice, bob int64
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO users (email) VALUES ('alice@example.com') RETURNING id`).Scan(&alice))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO users (email) VALUES ('bob@example.com') RETURNING id`).Scan(&bob))

	first, err := repo.Upsert(ctx, alice, 1, ptr(int64(2)), nil)
	require.NoError(t, err)
	assert.True(t, first.Inserted)

	second, err := repo.Upsert(ctx, alice, 1, ptr(int64(2)), ptr("42"))
	require.NoError(t, err)
	assert.True(t, second.Updated)
	assert.Equal(t, first.ID, second.ID)

	_, err = repo.Upsert(ctx, bob, 1, ptr(int64(3)), nil)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, bob, 2, nil, ptr("not sure"))
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "42", *list[0].FreeAnswer)

	counts, err := repo.CountsByOption(ctx, 1)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, int64(2), counts[0].OptionID)
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, int64(3), counts[1].OptionID)

	counts, err = repo.CountsByOption(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
