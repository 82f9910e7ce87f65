package models

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleSupervisor UserRole = "supervisor"
	RoleTechnician UserRole = "technician"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         UserRole   `gorm:"size:20;not null" json:"role"`
	Verified     bool       `gorm:"not null;default:false" json:"verified"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	DateJoined   time.Time  `json:"date_joined"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TechnicianProfile: extended info for technician accounts (1:1 with User)
type TechnicianProfile struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	User           User       `json:"user"`
	Specialization string     `gorm:"size:100" json:"specialization"`
	Phone          string     `gorm:"size:20" json:"phone"`
	HireDate       *time.Time `json:"hire_date"`
	HourlyRate     *float64   `json:"hourly_rate"`
	IsAvailable    bool       `gorm:"not null;default:true" json:"is_available"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
