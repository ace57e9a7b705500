package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const NotificationEnrollmentCreated = "enrollment_created"

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"` // recipient
	ActorID   uuid.UUID  `gorm:"type:uuid;not null" json:"actorId"`
	CourseID  *uuid.UUID `gorm:"type:uuid" json:"courseId,omitempty"`
	Type      string     `gorm:"size:50;not null" json:"type"`
	Message   string     `gorm:"type:text" json:"message"`
	IsRead    bool       `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`

	User  *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Actor *User `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE" json:"actor,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
