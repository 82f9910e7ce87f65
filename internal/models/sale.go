package models

import "time"

// Sale: a point-of-sale transaction. CustomerID nil means walk-in.
type Sale struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Date       time.Time  `gorm:"autoCreateTime;index" json:"date"`
	CustomerID *uint      `gorm:"index" json:"customer_id"`
	Customer   *Customer  `json:"customer"`
	Total      float64    `gorm:"not null;default:0" json:"total"`
	Items      []SaleItem `json:"items"`
}

type SaleItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	SaleID     uint    `gorm:"index;not null" json:"sale_id"`
	PartNumber string  `gorm:"size:100" json:"part_number"`
	Name       string  `gorm:"size:255;not null" json:"name"`
	Qty        int     `gorm:"not null" json:"qty"`
	Unit       float64 `gorm:"not null;default:0" json:"unit"` // unit price
}
