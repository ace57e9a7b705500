package service

import (
	"context"

	"anoa.com/coursemarket/internal/entity"
	"anoa.com/coursemarket/internal/modules/stat/dto"
	"anoa.com/coursemarket/internal/modules/stat/repository"
)

type StatService interface {
	GetStats(ctx context.Context, user *entity.User) (*dto.StatsResponse, error)
}

type statService struct {
	repo repository.StatRepository
}

func NewStatService(repo repository.StatRepository) StatService {
	return &statService{repo: repo}
}

// GetStats returns the public block plus the block matching the caller's role.
func (s *statService) GetStats(ctx context.Context, user *entity.User) (*dto.StatsResponse, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.StatsResponse{
		TotalCourses:     totals.TotalCourses,
		PublishedCourses: totals.PublishedCourses,
		TotalStudents:    totals.TotalStudents,
		TotalCreators:    totals.TotalCreators,
		TotalEnrollments: totals.TotalEnrollments,
	}
	if totals.PublishedCourses > 0 {
		stats.AverageEnrollmentsPerCourse = float64(totals.TotalEnrollments) / float64(totals.PublishedCourses)
	}

	if user == nil {
		return stats, nil
	}

	switch user.Role {
	case entity.RoleStudent:
		enrolled, err := s.repo.StudentEnrollmentCount(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		stats.Student = &dto.StudentStats{EnrolledCourses: enrolled}

	case entity.RoleCreator:
		ct, err := s.repo.CreatorTotals(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		stats.Creator = &dto.CreatorStats{
			TotalCourses:     ct.TotalCourses,
			PublishedCourses: ct.PublishedCourses,
			TotalEnrollments: ct.TotalEnrollments,
		}

	case entity.RoleAdmin:
		byCategory, err := s.repo.PublishedCoursesBy(ctx, "category")
		if err != nil {
			return nil, err
		}
		byLevel, err := s.repo.PublishedCoursesBy(ctx, "level")
		if err != nil {
			return nil, err
		}

		admin := &dto.AdminStats{
			CoursesByCategory: make([]dto.CategoryCount, 0, len(byCategory)),
			CoursesByLevel:    make([]dto.LevelCount, 0, len(byLevel)),
		}
		for _, g := range byCategory {
			admin.CoursesByCategory = append(admin.CoursesByCategory, dto.CategoryCount{Category: g.Label, Count: g.Count})
		}
		for _, g := range byLevel {
			admin.CoursesByLevel = append(admin.CoursesByLevel, dto.LevelCount{Level: g.Label, Count: g.Count})
		}
		stats.Admin = admin
	}

	return stats, nil
}
