package category

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/coursemarket/internal/modules/category/dto"
	"anoa.com/coursemarket/internal/modules/category/repository"
)

type CategoryService interface {
	GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s *categoryService) GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error) {
	rows, err := s.repo.FindAll(ctx, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]dto.CategoryResponse, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, dto.CategoryResponse{
			Name:        row.Category,
			Slug:        Slugify(row.Category),
			CourseCount: row.Count,
		})
	}
	return categories, nil
}
