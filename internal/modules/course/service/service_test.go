package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"anoa.com/coursemarket/internal/entity"
	"anoa.com/coursemarket/internal/modules/course/dto"
	"anoa.com/coursemarket/internal/modules/course/repository"
	creatorRepo "anoa.com/coursemarket/internal/modules/creator/repository"
	"anoa.com/coursemarket/internal/testutil"
	"anoa.com/coursemarket/pkg/apperror"
	"anoa.com/coursemarket/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSearch struct {
	indexed []uuid.UUID
	deleted []uuid.UUID
	hits    []uuid.UUID
	err     error
}

func (f *fakeSearch) IndexCourse(ctx context.Context, course *entity.Course) error {
	f.indexed = append(f.indexed, course.ID)
	return nil
}

func (f *fakeSearch) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSearch) SearchCourseIDs(ctx context.Context, query string, limit int64) ([]uuid.UUID, error) {
	return f.hits, f.err
}

type fakeStorage struct {
	deleted []string
}

func (f *fakeStorage) UploadImage(ctx context.Context, r io.Reader, fileName string) (string, error) {
	return "https://res.cloudinary.com/demo/image/upload/v1/coursemarket/" + fileName, nil
}

func (f *fakeStorage) DeleteImage(ctx context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func (f *fakeStorage) Owns(fileURL string) bool {
	return strings.HasPrefix(fileURL, "https://res.cloudinary.com/")
}

type fixture struct {
	db      *gorm.DB
	svc     CourseService
	search  *fakeSearch
	storage *fakeStorage
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	search := &fakeSearch{}
	storage := &fakeStorage{}
	svc := NewCourseService(repository.NewCourseRepository(db), creatorRepo.NewCreatorRepository(db), search, storage, nil)
	return &fixture{db: db, svc: svc, search: search, storage: storage}
}

func request(published bool) dto.CourseRequest {
	price := 19.5
	return dto.CourseRequest{
		Title:       "  Intro to Gin  ",
		Description: "Routing, middleware and JSON APIs with gin.",
		Category:    "Programming",
		Level:       entity.LevelIntermediate,
		Price:       &price,
		Duration:    6,
		ImageURL:    "https://res.cloudinary.com/demo/image/upload/v1/coursemarket/gin.webp",
		IsPublished: &published,
	}
}

func ids(courses []dto.CourseResponse) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.ID)
	}
	return out
}

func TestListCoursesVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	userA, creatorA := testutil.CreateCreator(t, f.db)
	_, creatorB := testutil.CreateCreator(t, f.db)
	aPub := testutil.CreateCourse(t, f.db, creatorA, true)
	aDraft := testutil.CreateCourse(t, f.db, creatorA, false)
	bPub := testutil.CreateCourse(t, f.db, creatorB, true)
	bDraft := testutil.CreateCourse(t, f.db, creatorB, false)

	student := testutil.CreateUser(t, f.db, entity.RoleStudent)
	admin := testutil.CreateUser(t, f.db, entity.RoleAdmin)
	noProfile := testutil.CreateUser(t, f.db, entity.RoleCreator)

	cases := []struct {
		name   string
		user   *entity.User
		filter dto.CourseFilter
		want   []uuid.UUID
	}{
		{"anonymous", nil, dto.CourseFilter{}, []uuid.UUID{aPub.ID, bPub.ID}},
		{"student asking for drafts", student, dto.CourseFilter{IsPublished: "false"}, []uuid.UUID{aPub.ID, bPub.ID}},
		{"student by creator", student, dto.CourseFilter{CreatorID: creatorB.ID.String()}, []uuid.UUID{bPub.ID}},
		{"creator sees own catalogue", userA, dto.CourseFilter{}, []uuid.UUID{aPub.ID, aDraft.ID}},
		{"creator own drafts", userA, dto.CourseFilter{IsPublished: "false"}, []uuid.UUID{aDraft.ID}},
		{"creator asking for another creator", userA, dto.CourseFilter{CreatorID: creatorB.ID.String()}, []uuid.UUID{}},
		{"creator without profile", noProfile, dto.CourseFilter{}, []uuid.UUID{}},
		{"admin sees everything", admin, dto.CourseFilter{}, []uuid.UUID{aPub.ID, aDraft.ID, bPub.ID, bDraft.ID}},
		{"admin drafts only", admin, dto.CourseFilter{IsPublished: "false"}, []uuid.UUID{aDraft.ID, bDraft.ID}},
		{"admin by creator", admin, dto.CourseFilter{CreatorID: creatorB.ID.String()}, []uuid.UUID{bPub.ID, bDraft.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.svc.ListCourses(ctx, tc.user, tc.filter)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, ids(got))
		})
	}
}

func TestListCoursesFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, creator := testutil.CreateCreator(t, f.db)

	match := testutil.CreateCourse(t, f.db, creator, true)
	require.NoError(t, f.db.Model(match).Updates(map[string]any{"title": "Advanced Kubernetes", "level": entity.LevelAdvanced, "category": "DevOps"}).Error)
	testutil.CreateCourse(t, f.db, creator, true)

	got, err := f.svc.ListCourses(ctx, nil, dto.CourseFilter{Search: "kubernetes"})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{match.ID}, ids(got))

	got, err = f.svc.ListCourses(ctx, nil, dto.CourseFilter{Level: entity.LevelAdvanced, Category: "devops"})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{match.ID}, ids(got))
}

func TestGetCourseHidesDrafts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner, creator := testutil.CreateCreator(t, f.db)
	other, _ := testutil.CreateCreator(t, f.db)
	draft := testutil.CreateCourse(t, f.db, creator, false)
	student := testutil.CreateUser(t, f.db, entity.RoleStudent)
	admin := testutil.CreateUser(t, f.db, entity.RoleAdmin)

	for _, u := range []*entity.User{nil, student, other} {
		_, err := f.svc.GetCourse(ctx, u, draft.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	}

	for _, u := range []*entity.User{owner, admin} {
		resp, err := f.svc.GetCourse(ctx, u, draft.ID)
		require.NoError(t, err)
		assert.Nil(t, resp.IsEnrolled)
	}

	_, err := f.svc.GetCourse(ctx, admin, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetCourseEnrollmentFlag(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, creator := testutil.CreateCreator(t, f.db)
	course := testutil.CreateCourse(t, f.db, creator, true)
	student := testutil.CreateUser(t, f.db, entity.RoleStudent)

	resp, err := f.svc.GetCourse(ctx, student, course.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.IsEnrolled)
	assert.False(t, *resp.IsEnrolled)

	testutil.Enroll(t, f.db, student, course)

	resp, err = f.svc.GetCourse(ctx, student, course.ID)
	require.NoError(t, err)
	assert.True(t, *resp.IsEnrolled)
	assert.EqualValues(t, 1, resp.EnrollmentCount)
	require.NotNil(t, resp.Creator)
	assert.NotNil(t, resp.Creator.User)
}

func TestCreateCourse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	student := testutil.CreateUser(t, f.db, entity.RoleStudent)
	_, err := f.svc.CreateCourse(ctx, student, request(true))
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.CreateCourse(ctx, nil, request(true))
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	// the creator profile is created on first use
	user := testutil.CreateUser(t, f.db, entity.RoleCreator)
	resp, err := f.svc.CreateCourse(ctx, user, request(true))
	require.NoError(t, err)
	assert.Equal(t, "Intro to Gin", resp.Title)
	assert.True(t, resp.IsPublished)
	require.NotNil(t, resp.Creator)
	assert.Equal(t, user.ID, resp.Creator.User.ID)
	assert.Equal(t, []uuid.UUID{resp.ID}, f.search.indexed)

	var profiles int64
	require.NoError(t, f.db.Model(&entity.Creator{}).Where("user_id = ?", user.ID).Count(&profiles).Error)
	assert.EqualValues(t, 1, profiles)

	draft, err := f.svc.CreateCourse(ctx, user, request(false))
	require.NoError(t, err)
	assert.False(t, draft.IsPublished)
	assert.Contains(t, f.search.deleted, draft.ID)

	bad := request(true)
	bad.Title = "Go"
	_, err = f.svc.CreateCourse(ctx, user, bad)
	require.Error(t, err)
	assert.True(t, validator.IsValidationError(err))

	tooExpensive := request(true)
	price := 100000000.0
	tooExpensive.Price = &price
	_, err = f.svc.CreateCourse(ctx, user, tooExpensive)
	require.Error(t, err)
	fields := validator.FieldErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "price", fields[0].Field)
}

func TestUpdateCourseOwnership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner, creator := testutil.CreateCreator(t, f.db)
	intruder, _ := testutil.CreateCreator(t, f.db)
	admin := testutil.CreateUser(t, f.db, entity.RoleAdmin)
	course := testutil.CreateCourse(t, f.db, creator, false)

	// ownership is checked before the payload
	invalid := request(true)
	invalid.Title = ""
	_, err := f.svc.UpdateCourse(ctx, intruder, course.ID, invalid)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.UpdateCourse(ctx, owner, uuid.New(), invalid)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.UpdateCourse(ctx, owner, course.ID, invalid)
	assert.True(t, validator.IsValidationError(err))

	resp, err := f.svc.UpdateCourse(ctx, owner, course.ID, request(true))
	require.NoError(t, err)
	assert.True(t, resp.IsPublished)
	assert.Equal(t, creator.ID, resp.CreatorID)
	assert.Contains(t, f.search.indexed, course.ID)

	resp, err = f.svc.UpdateCourse(ctx, admin, course.ID, request(false))
	require.NoError(t, err)
	assert.False(t, resp.IsPublished)
	assert.Contains(t, f.search.deleted, course.ID)
}

func TestUpdateCourseReplacesImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner, creator := testutil.CreateCreator(t, f.db)
	course := testutil.CreateCourse(t, f.db, creator, true)
	oldImage := "https://res.cloudinary.com/demo/image/upload/v1/coursemarket/old.webp"
	require.NoError(t, f.db.Model(course).Update("image_url", oldImage).Error)

	_, err := f.svc.UpdateCourse(ctx, owner, course.ID, request(true))
	require.NoError(t, err)
	assert.Equal(t, []string{oldImage}, f.storage.deleted)
}

func TestDeleteCourseCascades(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner, creator := testutil.CreateCreator(t, f.db)
	intruder, _ := testutil.CreateCreator(t, f.db)
	course := testutil.CreateCourse(t, f.db, creator, true)
	for i := 0; i < 3; i++ {
		testutil.Enroll(t, f.db, testutil.CreateUser(t, f.db, entity.RoleStudent), course)
	}

	assert.ErrorIs(t, f.svc.DeleteCourse(ctx, intruder, course.ID), apperror.ErrForbidden)
	require.NoError(t, f.svc.DeleteCourse(ctx, owner, course.ID))

	var enrollments int64
	require.NoError(t, f.db.Model(&entity.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments).Error)
	assert.Zero(t, enrollments)
	assert.Contains(t, f.search.deleted, course.ID)
	// fixture image is not hosted on cloudinary
	assert.Empty(t, f.storage.deleted)

	assert.ErrorIs(t, f.svc.DeleteCourse(ctx, owner, course.ID), apperror.ErrNotFound)
}

func TestAdminDeletesAnotherCreatorsCourse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, creator := testutil.CreateCreator(t, f.db)
	otherCreator, _ := testutil.CreateCreator(t, f.db)
	admin := testutil.CreateUser(t, f.db, entity.RoleAdmin)
	course := testutil.CreateCourse(t, f.db, creator, false)

	assert.ErrorIs(t, f.svc.DeleteCourse(ctx, otherCreator, course.ID), apperror.ErrForbidden)
	require.NoError(t, f.svc.DeleteCourse(ctx, admin, course.ID))

	var remaining int64
	require.NoError(t, f.db.Model(&entity.Course{}).Where("id = ?", course.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestSearchCourses(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, creator := testutil.CreateCreator(t, f.db)
	first := testutil.CreateCourse(t, f.db, creator, true)
	second := testutil.CreateCourse(t, f.db, creator, true)
	draft := testutil.CreateCourse(t, f.db, creator, false)

	f.search.hits = []uuid.UUID{second.ID, draft.ID, uuid.New(), first.ID}
	got, err := f.svc.SearchCourses(ctx, nil, dto.SearchQuery{Query: "go"})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID, first.ID}, ids(got))

	f.search.err = errors.New("connection refused")
	_, err = f.svc.SearchCourses(ctx, nil, dto.SearchQuery{Query: "go"})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)

	noSearch := NewCourseService(repository.NewCourseRepository(f.db), creatorRepo.NewCreatorRepository(f.db), nil, nil, nil)
	_, err = noSearch.SearchCourses(ctx, nil, dto.SearchQuery{Query: "go"})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}
