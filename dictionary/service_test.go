package dictionary

import (
	"context"
	"testing"

	"github.com/VanitasCaesar1/intake/kvstore"
	"github.com/VanitasCaesar1/intake/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService() (*Service, kvstore.Store) {
	store := kvstore.NewMemoryStore()
	return NewService(store, zap.NewNop()), store
}

func TestToggleLearn(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	v, err := svc.ToggleLearn(ctx, 7)
	require.NoError(t, err)
	assert.True(t, v.Learned)
	assert.Equal(t, StatusLearning, v.Status)
	assert.Equal(t, "身体部位", v.CategoryName)

	_, err = svc.ToggleMastered(ctx, 7)
	require.NoError(t, err)

	// un-learning drops mastered too
	v, err = svc.ToggleLearn(ctx, 7)
	require.NoError(t, err)
	assert.False(t, v.Learned)
	assert.False(t, v.Mastered)
	assert.Equal(t, StatusNew, v.Status)

	var stored models.LearningProgress
	require.NoError(t, kvstore.GetJSON(ctx, store, kvstore.KeyLearningProgress, &stored))
	assert.Empty(t, stored.Learned)
	assert.Empty(t, stored.Mastered)

	_, err = svc.ToggleLearn(ctx, 99)
	assert.ErrorIs(t, err, ErrWordNotFound)
}

func TestToggleMastered(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	v, err := svc.ToggleMastered(ctx, 3)
	require.NoError(t, err)
	assert.True(t, v.Learned, "mastering marks the word learned")
	assert.True(t, v.Mastered)
	assert.Equal(t, StatusMastered, v.Status)

	v, err = svc.ToggleMastered(ctx, 3)
	require.NoError(t, err)
	assert.True(t, v.Learned)
	assert.False(t, v.Mastered)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.ToggleLearn(ctx, 1)
	require.NoError(t, err)
	_, err = svc.ToggleMastered(ctx, 2)
	require.NoError(t, err)

	o := svc.Stats(ctx)
	assert.Equal(t, Stats{Total: 19, Learned: 2, Remaining: 17, Mastered: 1, Percent: 11}, o.Stats)
	assert.Len(t, o.Categories, 8)
}

func TestPractice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	ids := func(views []WordView) []int {
		out := make([]int, len(views))
		for i, v := range views {
			out[i] = v.ID
		}
		return out
	}

	// nothing is being learned yet, so the first four words are suggested
	assert.Equal(t, []int{1, 2, 3, 4}, ids(svc.Practice(ctx)))

	for _, id := range []int{1, 2, 3} {
		_, err := svc.ToggleLearn(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{4, 5, 1, 2}, ids(svc.Practice(ctx)))

	_, err := svc.ToggleMastered(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 2, 3}, ids(svc.Practice(ctx)))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	_, err := svc.ToggleLearn(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, svc.Reset(ctx))

	_, err = store.Get(ctx, kvstore.KeyLearningProgress)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
	assert.Equal(t, 0, svc.Stats(ctx).Stats.Learned)
}

func TestCorruptProgressStartsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	require.NoError(t, store.Set(ctx, kvstore.KeyLearningProgress, []byte("[1,2")))

	v, err := svc.Word(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, v.Status)

	v, err = svc.ToggleLearn(ctx, 1)
	require.NoError(t, err)
	assert.True(t, v.Learned)
}

func TestSearchPage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.ToggleLearn(ctx, 13)
	require.NoError(t, err)

	page, err := svc.Search(ctx, Query{Category: CategoryNumber, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 9, page.Matched)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, PageSize, page.PageSize)
	for _, w := range page.Words {
		assert.Equal(t, w.ID == 13, w.Learned)
	}

	page, err = svc.Search(ctx, Query{Search: "不存在"})
	require.NoError(t, err)
	assert.Empty(t, page.Words)
	assert.Equal(t, 1, page.Page)

	_, err = svc.Search(ctx, Query{Page: 5})
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}
