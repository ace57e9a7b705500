package repository

import (
	"context"
	"strings"

	"anoa.com/coursemarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseQuery is the resolved filter after role rules are applied.
type CourseQuery struct {
	Published *bool
	CreatorID *uuid.UUID
	Level     string
	Category  string
	Search    string
}

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID, publishedOnly bool) ([]entity.Course, error)
	FindAll(ctx context.Context, q CourseQuery) ([]entity.Course, error)
	FindByCreator(ctx context.Context, creatorID uuid.UUID, publishedOnly bool) ([]entity.Course, error)
	ListPublished(ctx context.Context) ([]entity.Course, error)
	CountEnrollments(ctx context.Context, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	EnrolledCourseIDs(ctx context.Context, userID uuid.UUID, courseIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

// Update saves every column so false and zero values are persisted.
func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Omit("Creator", "Enrollments").Save(course).Error
}

// Delete removes the course and its enrollments in one transaction.
func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&entity.Enrollment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Course{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *courseRepository) withCreator(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Creator").Preload("Creator.User")
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	if err := r.withCreator(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID, publishedOnly bool) ([]entity.Course, error) {
	var courses []entity.Course
	if len(ids) == 0 {
		return courses, nil
	}
	query := r.withCreator(ctx).Where("id IN ?", ids)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) FindAll(ctx context.Context, q CourseQuery) ([]entity.Course, error) {
	var courses []entity.Course
	query := r.withCreator(ctx)

	if q.Published != nil {
		query = query.Where("is_published = ?", *q.Published)
	}
	if q.CreatorID != nil {
		query = query.Where("creator_id = ?", *q.CreatorID)
	}
	if q.Level != "" {
		query = query.Where("level = ?", q.Level)
	}
	if q.Category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(q.Category))
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) FindByCreator(ctx context.Context, creatorID uuid.UUID, publishedOnly bool) ([]entity.Course, error) {
	published := true
	q := CourseQuery{CreatorID: &creatorID}
	if publishedOnly {
		q.Published = &published
	}
	return r.FindAll(ctx, q)
}

func (r *courseRepository) ListPublished(ctx context.Context) ([]entity.Course, error) {
	published := true
	return r.FindAll(ctx, CourseQuery{Published: &published})
}

func (r *courseRepository) CountEnrollments(ctx context.Context, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CourseID uuid.UUID
		Count    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&entity.Enrollment{}).
		Select("course_id, COUNT(*) AS count").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CourseID] = row.Count
	}
	return counts, nil
}

func (r *courseRepository) EnrolledCourseIDs(ctx context.Context, userID uuid.UUID, courseIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	enrolled := make(map[uuid.UUID]bool, len(courseIDs))
	if len(courseIDs) == 0 {
		return enrolled, nil
	}

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entity.Enrollment{}).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Pluck("course_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		enrolled[id] = true
	}
	return enrolled, nil
}
