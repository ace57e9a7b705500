package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Creator is the 1:1 publishing profile of a CREATOR or ADMIN user.
type Creator struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Bio       *string   `gorm:"type:text" json:"bio"`
	Expertise *string   `gorm:"type:text" json:"expertise"`
	Courses   []Course  `gorm:"constraint:OnDelete:CASCADE" json:"courses,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Creator) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
