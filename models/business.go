package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Business struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Slug      string          `gorm:"uniqueIndex;not null" json:"slug"`
	OwnerID   uuid.UUID       `gorm:"type:uuid;not null" json:"owner_id"`
	Owner     User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Type      string          `gorm:"default:salon" json:"type"` // salon, restaurant, venue, retail, professional
	Address   string          `json:"address"`
	City      string          `json:"city"`
	PostCode  string          `json:"post_code"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	Staff     []BusinessStaff `gorm:"foreignKey:BusinessID" json:"staff,omitempty"`
	Services  []Service       `gorm:"foreignKey:BusinessID" json:"services,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
