package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"anoa.com/coursemarket/internal/entity"
	courseDto "anoa.com/coursemarket/internal/modules/course/dto"
	courseRepo "anoa.com/coursemarket/internal/modules/course/repository"
	"anoa.com/coursemarket/internal/modules/creator/dto"
	"anoa.com/coursemarket/internal/modules/creator/repository"
	"anoa.com/coursemarket/internal/policy"
	"anoa.com/coursemarket/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrCreatorNotFound = fmt.Errorf("creator not found: %w", apperror.ErrNotFound)

type CreatorService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*dto.CreatorProfileResponse, error)
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*dto.CreatorProfileResponse, error)
	ListCreators(ctx context.Context) ([]dto.CreatorSummaryResponse, error)
	UpsertProfile(ctx context.Context, user *entity.User, req dto.UpsertCreatorRequest) (*dto.CreatorProfileResponse, error)
}

type creatorService struct {
	repo       repository.CreatorRepository
	courseRepo courseRepo.CourseRepository
	logger     *slog.Logger
}

func NewCreatorService(repo repository.CreatorRepository, courseRepo courseRepo.CourseRepository, logger *slog.Logger) CreatorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &creatorService{repo: repo, courseRepo: courseRepo, logger: logger}
}

func (s *creatorService) GetProfile(ctx context.Context, id uuid.UUID) (*dto.CreatorProfileResponse, error) {
	creator, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return s.buildProfile(ctx, creator)
}

func (s *creatorService) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*dto.CreatorProfileResponse, error) {
	creator, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.buildProfile(ctx, creator)
}

func (s *creatorService) ListCreators(ctx context.Context) ([]dto.CreatorSummaryResponse, error) {
	creators, err := s.repo.FindAllWithCourseCount(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CreatorSummaryResponse, 0, len(creators))
	for _, c := range creators {
		out = append(out, dto.CreatorSummaryResponse{
			ID:          c.ID,
			UserID:      c.UserID,
			Bio:         c.Bio,
			Expertise:   c.Expertise,
			User:        creatorUser(c.User),
			CourseCount: c.CourseCount,
			CreatedAt:   c.CreatedAt,
		})
	}
	return out, nil
}

// UpsertProfile creates the caller's profile on first use. Omitted fields keep their value; blank ones clear it.
func (s *creatorService) UpsertProfile(ctx context.Context, user *entity.User, req dto.UpsertCreatorRequest) (*dto.CreatorProfileResponse, error) {
	if err := policy.EnsureRole(user, entity.RoleCreator, entity.RoleAdmin); err != nil {
		return nil, err
	}

	creator, err := s.repo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator profile: %w", err)
	}

	if req.Bio != nil {
		creator.Bio = trimmed(req.Bio)
	}
	if req.Expertise != nil {
		creator.Expertise = trimmed(req.Expertise)
	}
	if err := s.repo.UpdateProfile(ctx, creator); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, creator.ID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "creator profile saved", "creator_id", updated.ID, "user_id", user.ID)
	return s.buildProfile(ctx, updated)
}

// buildProfile embeds only published courses.
func (s *creatorService) buildProfile(ctx context.Context, creator *entity.Creator) (*dto.CreatorProfileResponse, error) {
	courses, err := s.courseRepo.FindByCreator(ctx, creator.ID, true)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	counts, err := s.courseRepo.CountEnrollments(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]courseDto.CourseResponse, 0, len(courses))
	for i := range courses {
		resp := courseDto.ToCourseResponse(&courses[i])
		resp.EnrollmentCount = counts[courses[i].ID]
		items = append(items, resp)
	}

	return &dto.CreatorProfileResponse{
		ID:        creator.ID,
		UserID:    creator.UserID,
		Bio:       creator.Bio,
		Expertise: creator.Expertise,
		User:      creatorUser(creator.User),
		Courses:   items,
		CreatedAt: creator.CreatedAt,
		UpdatedAt: creator.UpdatedAt,
	}, nil
}

func creatorUser(u *entity.User) *courseDto.CreatorUser {
	if u == nil {
		return nil
	}
	return &courseDto.CreatorUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCreatorNotFound
	}
	return err
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
