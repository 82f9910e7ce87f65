package models

import "time"

type Supplier struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:200;not null;unique" json:"name"`
	Contact          string     `gorm:"size:200" json:"contact"`
	Email            string     `gorm:"size:255" json:"email"`
	Phone            string     `gorm:"size:50" json:"phone"`
	Amount           float64    `gorm:"not null;default:0" json:"amount"`
	DueDate          *time.Time `json:"due_date"`
	State            string     `gorm:"size:50;not null;default:due" json:"state"`
	ProductsSupplied string     `gorm:"type:text" json:"products_supplied"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
