package repository

import (
	"context"
	"strings"

	"anoa.com/coursemarket/internal/entity"
	"gorm.io/gorm"
)

type CategoryCount struct {
	Category string
	Count    int64
}

// CategoryRepository derives categories from published courses; there is no category table.
type CategoryRepository interface {
	FindAll(ctx context.Context, filter string) ([]CategoryCount, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindAll(ctx context.Context, filter string) ([]CategoryCount, error) {
	var rows []CategoryCount
	query := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Select("category, COUNT(*) AS count").
		Where("is_published = ?", true)

	if filter != "" {
		query = query.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(filter)+"%")
	}

	if err := query.Group("category").Order("count DESC, category ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
