package models

import "time"

type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	DurationMin int    `gorm:"not null" json:"duration_min"`
	Category    string `gorm:"size:20;default:'other'" json:"category"`
	Active      bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
