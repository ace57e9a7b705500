package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/coursemarket/internal/entity"
	courseRepo "anoa.com/coursemarket/internal/modules/course/repository"
	"anoa.com/coursemarket/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexer struct {
	calls   int
	indexed []entity.Course
	err     error
}

func (f *fakeIndexer) IndexCourses(ctx context.Context, courses []entity.Course) error {
	f.calls++
	f.indexed = courses
	return f.err
}

func TestSearchReindexIndexesPublishedCourses(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, creator := testutil.CreateCreator(t, db)
	published := testutil.CreateCourse(t, db, creator, true)
	testutil.CreateCourse(t, db, creator, false)

	index := &fakeIndexer{}
	agent := NewSearchReindexAgent(courseRepo.NewCourseRepository(db), index, nil, "0 3 * * *", nil)

	require.NoError(t, agent.Execute(context.Background()))
	require.Len(t, index.indexed, 1)
	assert.Equal(t, published.ID, index.indexed[0].ID)
	require.NotNil(t, index.indexed[0].Creator)
	assert.NotNil(t, index.indexed[0].Creator.User)
	assert.Equal(t, SearchReindexName, agent.GetName())
	assert.Equal(t, "0 3 * * *", agent.GetSchedule())
}

func TestSearchReindexSkipsWhenLocked(t *testing.T) {
	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	index := &fakeIndexer{}
	agent := NewSearchReindexAgent(courseRepo.NewCourseRepository(db), index, rdb, "", nil)

	require.NoError(t, mr.Set("agent_lock:"+SearchReindexName, "1"))
	require.NoError(t, agent.Execute(context.Background()))
	assert.Zero(t, index.calls)

	mr.Del("agent_lock:" + SearchReindexName)
	require.NoError(t, agent.Execute(context.Background()))
	assert.Equal(t, 1, index.calls)
	assert.False(t, mr.Exists("agent_lock:"+SearchReindexName), "lock is released after the run")
}

func TestSearchReindexPropagatesIndexError(t *testing.T) {
	db := testutil.NewTestDB(t)
	index := &fakeIndexer{err: errors.New("meilisearch down")}
	agent := NewSearchReindexAgent(courseRepo.NewCourseRepository(db), index, nil, "", nil)
	agent.lockTTL = time.Minute

	assert.EqualError(t, agent.Execute(context.Background()), "meilisearch down")
}
