package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
)

var Levels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}

type Course struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"creatorId"`
	Creator     *Creator     `gorm:"constraint:OnDelete:CASCADE" json:"creator,omitempty"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Category    string       `gorm:"size:100;not null;index" json:"category"`
	Level       string       `gorm:"size:20;not null" json:"level"`
	Price       float64      `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	Duration    int          `gorm:"not null" json:"duration"`
	ImageURL    string       `gorm:"type:text" json:"imageUrl"`
	IsPublished bool         `gorm:"not null;default:false;index" json:"isPublished"`
	Enrollments []Enrollment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time    `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
