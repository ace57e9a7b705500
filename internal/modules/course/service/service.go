package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"anoa.com/coursemarket/internal/entity"
	"anoa.com/coursemarket/internal/modules/course/dto"
	"anoa.com/coursemarket/internal/modules/course/repository"
	creatorRepo "anoa.com/coursemarket/internal/modules/creator/repository"
	"anoa.com/coursemarket/internal/policy"
	"anoa.com/coursemarket/pkg/apperror"
	"anoa.com/coursemarket/pkg/storage"
	"anoa.com/coursemarket/pkg/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrCourseNotFound = fmt.Errorf("course not found: %w", apperror.ErrNotFound)

// SearchIndex is the full-text index kept in sync with published courses.
type SearchIndex interface {
	IndexCourse(ctx context.Context, course *entity.Course) error
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	SearchCourseIDs(ctx context.Context, query string, limit int64) ([]uuid.UUID, error)
}

type CourseService interface {
	ListCourses(ctx context.Context, user *entity.User, filter dto.CourseFilter) ([]dto.CourseResponse, error)
	SearchCourses(ctx context.Context, user *entity.User, query dto.SearchQuery) ([]dto.CourseResponse, error)
	GetCourse(ctx context.Context, user *entity.User, id uuid.UUID) (*dto.CourseResponse, error)
	CreateCourse(ctx context.Context, user *entity.User, req dto.CourseRequest) (*dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, user *entity.User, id uuid.UUID, req dto.CourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, user *entity.User, id uuid.UUID) error
}

type courseService struct {
	repo         repository.CourseRepository
	creatorRepo  creatorRepo.CreatorRepository
	search       SearchIndex
	imageStorage storage.ImageStorage
	logger       *slog.Logger
}

// NewCourseService accepts nil search and imageStorage; indexing and image cleanup are then skipped.
func NewCourseService(
	repo repository.CourseRepository,
	creatorRepo creatorRepo.CreatorRepository,
	search SearchIndex,
	imageStorage storage.ImageStorage,
	logger *slog.Logger,
) CourseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &courseService{
		repo:         repo,
		creatorRepo:  creatorRepo,
		search:       search,
		imageStorage: imageStorage,
		logger:       logger,
	}
}

func (s *courseService) ListCourses(ctx context.Context, user *entity.User, filter dto.CourseFilter) ([]dto.CourseResponse, error) {
	q := repository.CourseQuery{
		Level:    filter.Level,
		Category: strings.TrimSpace(filter.Category),
		Search:   strings.TrimSpace(filter.Search),
	}

	if filter.IsPublished != "" {
		published := filter.IsPublished == "true"
		q.Published = &published
	}

	var requestedCreator *uuid.UUID
	if filter.CreatorID != "" {
		id, err := uuid.Parse(filter.CreatorID)
		if err != nil {
			return nil, fmt.Errorf("invalid filters: %w", apperror.ErrInvalidInput)
		}
		requestedCreator = &id
	}

	switch {
	case user == nil || user.Role == entity.RoleStudent:
		published := true
		q.Published = &published
		q.CreatorID = requestedCreator

	case user.Role == entity.RoleCreator:
		creator, err := s.callerCreator(ctx, user)
		if err != nil {
			return nil, err
		}
		// no profile yet, or asking for someone else's catalogue
		if creator == nil || (requestedCreator != nil && *requestedCreator != creator.ID) {
			return []dto.CourseResponse{}, nil
		}
		q.CreatorID = &creator.ID

	case user.Role == entity.RoleAdmin:
		q.CreatorID = requestedCreator

	default:
		return nil, fmt.Errorf("unknown role %q: %w", user.Role, apperror.ErrForbidden)
	}

	courses, err := s.repo.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, user, courses)
}

// SearchCourses only ever returns published courses, re-checked against the store.
func (s *courseService) SearchCourses(ctx context.Context, user *entity.User, query dto.SearchQuery) ([]dto.CourseResponse, error) {
	if s.search == nil {
		return nil, fmt.Errorf("course search is not configured: %w", apperror.ErrUnavailable)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	ids, err := s.search.SearchCourseIDs(ctx, strings.TrimSpace(query.Query), limit)
	if err != nil {
		return nil, fmt.Errorf("course search failed: %w", errors.Join(apperror.ErrUnavailable, err))
	}

	courses, err := s.repo.FindByIDs(ctx, ids, true)
	if err != nil {
		return nil, err
	}

	// keep search ranking
	byID := make(map[uuid.UUID]entity.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	ordered := make([]entity.Course, 0, len(courses))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return s.toResponses(ctx, user, ordered)
}

func (s *courseService) GetCourse(ctx context.Context, user *entity.User, id uuid.UUID) (*dto.CourseResponse, error) {
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if !course.IsPublished {
		creator, err := s.callerCreator(ctx, user)
		if err != nil {
			return nil, err
		}
		// drafts are hidden, not forbidden
		if !policy.CanViewCourse(user, creator, course) {
			return nil, ErrCourseNotFound
		}
	}

	responses, err := s.toResponses(ctx, user, []entity.Course{*course})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

func (s *courseService) CreateCourse(ctx context.Context, user *entity.User, req dto.CourseRequest) (*dto.CourseResponse, error) {
	if err := policy.EnsureRole(user, entity.RoleCreator, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	creator, err := s.creatorRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator profile: %w", err)
	}

	course := &entity.Course{CreatorID: creator.ID}
	applyRequest(course, req)

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, created)

	s.logger.InfoContext(ctx, "course created", "course_id", created.ID, "creator_id", creator.ID, "published", created.IsPublished)
	resp := dto.ToCourseResponse(created)
	return &resp, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, user *entity.User, id uuid.UUID, req dto.CourseRequest) (*dto.CourseResponse, error) {
	if err := policy.EnsureRole(user, entity.RoleCreator, entity.RoleAdmin); err != nil {
		return nil, err
	}

	course, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOwner(ctx, user, course); err != nil {
		return nil, err
	}

	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	oldImage := course.ImageURL
	applyRequest(course, req)

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}

	if oldImage != course.ImageURL {
		s.deleteImage(ctx, oldImage)
	}
	s.syncIndex(ctx, course)

	responses, err := s.toResponses(ctx, user, []entity.Course{*course})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// DeleteCourse removes the course together with its enrollments.
func (s *courseService) DeleteCourse(ctx context.Context, user *entity.User, id uuid.UUID) error {
	if err := policy.EnsureRole(user, entity.RoleCreator, entity.RoleAdmin); err != nil {
		return err
	}

	course, err := s.findCourse(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureOwner(ctx, user, course); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, course.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.deleteImage(ctx, course.ImageURL)
	if s.search != nil {
		if err := s.search.DeleteCourse(ctx, course.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to remove course from search index", "course_id", course.ID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "course deleted", "course_id", course.ID, "user_id", user.ID)
	return nil
}

func (s *courseService) findCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) ensureOwner(ctx context.Context, user *entity.User, course *entity.Course) error {
	if user.IsAdmin() {
		return nil
	}
	creator, err := s.callerCreator(ctx, user)
	if err != nil {
		return err
	}
	return policy.EnsureCourseOwner(user, creator, course)
}

// callerCreator returns nil without error for anonymous callers and users without a profile.
func (s *courseService) callerCreator(ctx context.Context, user *entity.User) (*entity.Creator, error) {
	if user == nil || user.Role == entity.RoleStudent {
		return nil, nil
	}
	creator, err := s.creatorRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return creator, nil
}

func (s *courseService) toResponses(ctx context.Context, user *entity.User, courses []entity.Course) ([]dto.CourseResponse, error) {
	out := make([]dto.CourseResponse, 0, len(courses))
	if len(courses) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	counts, err := s.repo.CountEnrollments(ctx, ids)
	if err != nil {
		return nil, err
	}

	var enrolled map[uuid.UUID]bool
	isStudent := user != nil && user.Role == entity.RoleStudent
	if isStudent {
		enrolled, err = s.repo.EnrolledCourseIDs(ctx, user.ID, ids)
		if err != nil {
			return nil, err
		}
	}

	for i := range courses {
		resp := dto.ToCourseResponse(&courses[i])
		resp.EnrollmentCount = counts[courses[i].ID]
		if isStudent {
			isEnrolled := enrolled[courses[i].ID]
			resp.IsEnrolled = &isEnrolled
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *courseService) syncIndex(ctx context.Context, course *entity.Course) {
	if s.search == nil {
		return
	}

	var err error
	if course.IsPublished {
		err = s.search.IndexCourse(ctx, course)
	} else {
		err = s.search.DeleteCourse(ctx, course.ID)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to sync course search index", "course_id", course.ID, "error", err)
	}
}

func (s *courseService) deleteImage(ctx context.Context, url string) {
	if s.imageStorage == nil || url == "" || !s.imageStorage.Owns(url) {
		return
	}
	if err := s.imageStorage.DeleteImage(ctx, url); err != nil {
		s.logger.WarnContext(ctx, "failed to delete course image", "url", url, "error", err)
	}
}

func applyRequest(course *entity.Course, req dto.CourseRequest) {
	course.Title = strings.TrimSpace(req.Title)
	course.Description = strings.TrimSpace(req.Description)
	course.Category = strings.TrimSpace(req.Category)
	course.Level = req.Level
	course.Price = *req.Price
	course.Duration = req.Duration
	course.ImageURL = req.ImageURL
	course.IsPublished = req.IsPublished != nil && *req.IsPublished
}
