package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"anoa.com/coursemarket/internal/entity"
	courseRepo "anoa.com/coursemarket/internal/modules/course/repository"
	"anoa.com/coursemarket/internal/modules/enrollment/dto"
	"anoa.com/coursemarket/internal/modules/enrollment/repository"
	"anoa.com/coursemarket/internal/policy"
	"anoa.com/coursemarket/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCourseNotFound     = fmt.Errorf("course not found: %w", apperror.ErrNotFound)
	ErrCourseNotAvailable = fmt.Errorf("course is not available for enrollment: %w", apperror.ErrBadRequest)
	ErrAlreadyEnrolled    = fmt.Errorf("already enrolled in this course: %w", apperror.ErrConflict)
	ErrEnrollmentNotFound = fmt.Errorf("enrollment not found: %w", apperror.ErrNotFound)
)

// Notifier tells the course owner about a new enrollment.
type Notifier interface {
	NotifyEnrollment(ctx context.Context, recipientID uuid.UUID, student *entity.User, course *entity.Course) error
}

type EnrollmentService interface {
	Enroll(ctx context.Context, user *entity.User, req dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error)
	ListEnrollments(ctx context.Context, user *entity.User, filter dto.EnrollmentFilter) ([]dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, user *entity.User, courseID uuid.UUID) error
}

type enrollmentService struct {
	repo       repository.EnrollmentRepository
	courseRepo courseRepo.CourseRepository
	notifier   Notifier
	logger     *slog.Logger
}

// NewEnrollmentService accepts a nil notifier.
func NewEnrollmentService(repo repository.EnrollmentRepository, courseRepo courseRepo.CourseRepository, notifier Notifier, logger *slog.Logger) EnrollmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &enrollmentService{
		repo:       repo,
		courseRepo: courseRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, user *entity.User, req dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	if err := policy.EnsureRole(user, entity.RoleStudent); err != nil {
		return nil, err
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}

	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublished {
		return nil, ErrCourseNotAvailable
	}

	// the unique index is authoritative; this lookup only gives the common case a clean error
	if _, err := s.repo.FindByUserAndCourse(ctx, user.ID, course.ID); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := &entity.Enrollment{UserID: user.ID, CourseID: course.ID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}
	enrollment.Course = course

	s.logger.InfoContext(ctx, "student enrolled", "user_id", user.ID, "course_id", course.ID)
	s.notifyOwner(ctx, user, course)

	resp := dto.ToEnrollmentResponse(enrollment)
	return &resp, nil
}

// ListEnrollments is always scoped to the caller, whatever the role.
func (s *enrollmentService) ListEnrollments(ctx context.Context, user *entity.User, filter dto.EnrollmentFilter) ([]dto.EnrollmentResponse, error) {
	if err := policy.EnsureRole(user, entity.RoleStudent, entity.RoleCreator, entity.RoleAdmin); err != nil {
		return nil, err
	}

	var courseID *uuid.UUID
	if filter.CourseID != "" {
		id, err := uuid.Parse(filter.CourseID)
		if err != nil {
			return nil, fmt.Errorf("invalid courseId: %w", apperror.ErrInvalidInput)
		}
		courseID = &id
	}

	enrollments, err := s.repo.FindByUser(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		out = append(out, dto.ToEnrollmentResponse(&enrollments[i]))
	}
	return out, nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, user *entity.User, courseID uuid.UUID) error {
	if err := policy.EnsureRole(user, entity.RoleStudent); err != nil {
		return err
	}

	if err := s.repo.DeleteByUserAndCourse(ctx, user.ID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	s.logger.InfoContext(ctx, "student unenrolled", "user_id", user.ID, "course_id", courseID)
	return nil
}

func (s *enrollmentService) notifyOwner(ctx context.Context, student *entity.User, course *entity.Course) {
	if s.notifier == nil || course.Creator == nil {
		return
	}
	if err := s.notifier.NotifyEnrollment(ctx, course.Creator.UserID, student, course); err != nil {
		s.logger.WarnContext(ctx, "failed to notify course owner", "course_id", course.ID, "error", err)
	}
}
