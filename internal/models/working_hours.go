package models

import "time"

type Barber struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// UserID is the principal (from the auth service) that acts as this barber.
	UserID       uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	BarbershopID uint   `gorm:"index" json:"barbershop_id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	IsAvailable  bool   `gorm:"default:true" json:"is_available"`

	WorkingHours []WorkingHours `gorm:"foreignKey:BarberID" json:"working_hours,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WorkingHours struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"uniqueIndex:idx_working_hours_barber_weekday,priority:1" json:"barber_id"`

	// Weekday follows time.Weekday: 0 = Sunday.
	Weekday int `gorm:"uniqueIndex:idx_working_hours_barber_weekday,priority:2" json:"weekday"`

	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	Off       bool   `json:"off"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
