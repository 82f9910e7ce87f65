package models

import "time"

type Customer struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:200;not null" json:"name"`
	Email            string     `gorm:"size:255" json:"email"`
	Phone            string     `gorm:"size:50" json:"phone"`
	Address          string     `gorm:"type:text" json:"address"`
	PreferredContact string     `gorm:"size:50" json:"preferred_contact"`
	Notes            string     `gorm:"type:text" json:"notes"`
	Status           string     `gorm:"size:50;not null;default:active" json:"status"`
	JoinDate         time.Time  `gorm:"autoCreateTime" json:"join_date"`
	LastServiceDate  *time.Time `json:"last_service_date"`
	TotalSpent       float64    `gorm:"not null;default:0" json:"total_spent"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
