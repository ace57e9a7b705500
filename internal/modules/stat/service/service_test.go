package service

import (
	"context"
	"testing"

	"anoa.com/coursemarket/internal/entity"
	"anoa.com/coursemarket/internal/modules/stat/dto"
	"anoa.com/coursemarket/internal/modules/stat/repository"
	"anoa.com/coursemarket/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStats(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewStatService(repository.NewStatRepository(db))
	ctx := context.Background()

	creatorUser, creator := testutil.CreateCreator(t, db)
	_, otherCreator := testutil.CreateCreator(t, db)
	goCourse := testutil.CreateCourse(t, db, creator, true)
	testutil.CreateCourse(t, db, creator, false)
	designCourse := testutil.CreateCourse(t, db, otherCreator, true)
	require.NoError(t, db.Model(designCourse).Updates(map[string]any{"category": "Design", "level": entity.LevelAdvanced}).Error)

	alice := testutil.CreateUser(t, db, entity.RoleStudent)
	bob := testutil.CreateUser(t, db, entity.RoleStudent)
	testutil.Enroll(t, db, alice, goCourse)
	testutil.Enroll(t, db, bob, goCourse)
	testutil.Enroll(t, db, alice, designCourse)

	public, err := svc.GetStats(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, public.TotalCourses)
	assert.EqualValues(t, 2, public.PublishedCourses)
	assert.EqualValues(t, 2, public.TotalStudents)
	assert.EqualValues(t, 2, public.TotalCreators)
	assert.EqualValues(t, 3, public.TotalEnrollments)
	assert.InDelta(t, 1.5, public.AverageEnrollmentsPerCourse, 1e-9)
	assert.Nil(t, public.Student)
	assert.Nil(t, public.Creator)
	assert.Nil(t, public.Admin)

	student, err := svc.GetStats(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, student.Student)
	assert.EqualValues(t, 2, student.Student.EnrolledCourses)

	mine, err := svc.GetStats(ctx, creatorUser)
	require.NoError(t, err)
	require.NotNil(t, mine.Creator)
	assert.Equal(t, dto.CreatorStats{TotalCourses: 2, PublishedCourses: 1, TotalEnrollments: 2}, *mine.Creator)

	admin, err := svc.GetStats(ctx, testutil.CreateUser(t, db, entity.RoleAdmin))
	require.NoError(t, err)
	require.NotNil(t, admin.Admin)
	assert.ElementsMatch(t, []dto.CategoryCount{{Category: "Design", Count: 1}, {Category: "Programming", Count: 1}}, admin.Admin.CoursesByCategory)
	assert.ElementsMatch(t, []dto.LevelCount{{Level: entity.LevelAdvanced, Count: 1}, {Level: entity.LevelBeginner, Count: 1}}, admin.Admin.CoursesByLevel)
}

func TestGetStatsEmptyStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewStatService(repository.NewStatRepository(db))

	// a creator without a profile gets a zeroed block
	stats, err := svc.GetStats(context.Background(), testutil.CreateUser(t, db, entity.RoleCreator))
	require.NoError(t, err)
	assert.Zero(t, stats.AverageEnrollmentsPerCourse)
	require.NotNil(t, stats.Creator)
	assert.Equal(t, dto.CreatorStats{}, *stats.Creator)
}
