package repository

import (
	"context"

	"anoa.com/coursemarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, error)
	FindByUser(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID) ([]entity.Enrollment, error)
	DeleteByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Create returns gorm.ErrDuplicatedKey when the (user, course) pair already exists.
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Creator").
		Preload("Course.Creator.User").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) FindByUser(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID) ([]entity.Enrollment, error) {
	var enrollments []entity.Enrollment
	query := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Creator").
		Preload("Course.Creator.User").
		Where("user_id = ?", userID)
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}
	if err := query.Order("enrolled_at DESC").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) DeleteByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&entity.Enrollment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
