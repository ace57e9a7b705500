package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment is unique per (user, course); the index backs the duplicate check.
type Enrollment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course,priority:1" json:"userId"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course,priority:2;index" json:"courseId"`
	Course     *Course   `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
	EnrolledAt time.Time `gorm:"autoCreateTime;index" json:"enrolledAt"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
