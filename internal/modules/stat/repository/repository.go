package repository

import (
	"context"

	"anoa.com/coursemarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Totals struct {
	TotalCourses     int64
	PublishedCourses int64
	TotalStudents    int64
	TotalCreators    int64
	TotalEnrollments int64
}

type CreatorTotals struct {
	TotalCourses     int64
	PublishedCourses int64
	TotalEnrollments int64
}

type GroupCount struct {
	Label string
	Count int64
}

// StatRepository is read-only.
type StatRepository interface {
	Totals(ctx context.Context) (*Totals, error)
	CreatorTotals(ctx context.Context, userID uuid.UUID) (*CreatorTotals, error)
	StudentEnrollmentCount(ctx context.Context, userID uuid.UUID) (int64, error)
	PublishedCoursesBy(ctx context.Context, column string) ([]GroupCount, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) Totals(ctx context.Context) (*Totals, error) {
	db := r.db.WithContext(ctx)
	var t Totals

	if err := db.Model(&entity.Course{}).Count(&t.TotalCourses).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Course{}).Where("is_published = ?", true).Count(&t.PublishedCourses).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.User{}).Where("role = ?", entity.RoleStudent).Count(&t.TotalStudents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.User{}).Where("role = ?", entity.RoleCreator).Count(&t.TotalCreators).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Enrollment{}).Count(&t.TotalEnrollments).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// CreatorTotals returns zeros when the user has no creator profile.
func (r *statRepository) CreatorTotals(ctx context.Context, userID uuid.UUID) (*CreatorTotals, error) {
	db := r.db.WithContext(ctx)
	var t CreatorTotals

	creatorIDs := db.Model(&entity.Creator{}).Select("id").Where("user_id = ?", userID)

	if err := db.Model(&entity.Course{}).Where("creator_id IN (?)", creatorIDs).Count(&t.TotalCourses).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Course{}).
		Where("creator_id IN (?) AND is_published = ?", creatorIDs, true).
		Count(&t.PublishedCourses).Error; err != nil {
		return nil, err
	}

	courseIDs := db.Model(&entity.Course{}).Select("id").Where("creator_id IN (?)", creatorIDs)
	if err := db.Model(&entity.Enrollment{}).Where("course_id IN (?)", courseIDs).Count(&t.TotalEnrollments).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *statRepository) StudentEnrollmentCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// PublishedCoursesBy groups published courses by "category" or "level".
func (r *statRepository) PublishedCoursesBy(ctx context.Context, column string) ([]GroupCount, error) {
	if column != "category" && column != "level" {
		column = "category"
	}

	var rows []GroupCount
	err := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Select(column+" AS label, COUNT(*) AS count").
		Where("is_published = ?", true).
		Group(column).
		Order("count DESC, label").
		Scan(&rows).Error
	return rows, err
}
