package repository

import (
	"context"

	"anoa.com/coursemarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreatorWithCount struct {
	entity.Creator
	CourseCount int64
}

type CreatorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Creator, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Creator, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*entity.Creator, error)
	UpdateProfile(ctx context.Context, creator *entity.Creator) error
	FindAllWithCourseCount(ctx context.Context) ([]CreatorWithCount, error)
}

type creatorRepository struct {
	db *gorm.DB
}

func NewCreatorRepository(db *gorm.DB) CreatorRepository {
	return &creatorRepository{db: db}
}

func (r *creatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Creator, error) {
	var creator entity.Creator
	if err := r.db.WithContext(ctx).Preload("User").First(&creator, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &creator, nil
}

func (r *creatorRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Creator, error) {
	var creator entity.Creator
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&creator).Error; err != nil {
		return nil, err
	}
	return &creator, nil
}

// GetOrCreate inserts the profile if missing. A concurrent insert is absorbed by the unique
// index on user_id and the row is re-read, so callers never see a duplicate.
func (r *creatorRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*entity.Creator, error) {
	creator := &entity.Creator{UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(creator).Error; err != nil {
		return nil, err
	}
	return r.FindByUserID(ctx, userID)
}

// UpdateProfile writes bio and expertise only, including nil values.
func (r *creatorRepository) UpdateProfile(ctx context.Context, creator *entity.Creator) error {
	return r.db.WithContext(ctx).
		Model(&entity.Creator{}).
		Where("id = ?", creator.ID).
		Updates(map[string]interface{}{
			"bio":       creator.Bio,
			"expertise": creator.Expertise,
		}).Error
}

func (r *creatorRepository) FindAllWithCourseCount(ctx context.Context) ([]CreatorWithCount, error) {
	var creators []entity.Creator
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Find(&creators).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		CreatorID uuid.UUID
		Count     int64
	}
	if err := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Select("creator_id, COUNT(*) AS count").
		Group("creator_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.CreatorID] = row.Count
	}

	out := make([]CreatorWithCount, 0, len(creators))
	for _, c := range creators {
		out = append(out, CreatorWithCount{Creator: c, CourseCount: counts[c.ID]})
	}
	return out, nil
}
