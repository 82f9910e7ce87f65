package models

import "time"

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;unique" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Part struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PartNumber       string    `gorm:"size:100;uniqueIndex;not null" json:"part_number"`
	Description      string    `gorm:"type:text" json:"description"`
	CategoryID       *uint     `gorm:"index" json:"category_id"`
	Category         *Category `json:"category"`
	CurrentStock     int       `gorm:"not null;default:0" json:"current_stock"`
	MinimumThreshold int       `gorm:"not null;default:0" json:"minimum_threshold"`
	Supplier         string    `gorm:"size:200" json:"supplier"`
	UnitCost         float64   `gorm:"not null;default:0" json:"unit_cost"`
	Unit             string    `gorm:"size:20;not null;default:pcs" json:"unit"`
	Location         string    `gorm:"size:200" json:"location"`
	Notes            string    `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type TransactionType string

const (
	TransactionStockIn    TransactionType = "stock-in"
	TransactionStockOut   TransactionType = "stock-out"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionTransfer   TransactionType = "transfer"
)

// InventoryTransaction: the stock ledger. Append-only; every change to
// Part.CurrentStock is written in the same database transaction as
// exactly one of these rows.
type InventoryTransaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	PartID       uint            `gorm:"index;not null" json:"part_id"`
	Part         Part            `json:"part"`
	Type         TransactionType `gorm:"size:20;not null" json:"type"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	Value        float64         `gorm:"not null;default:0" json:"value"`
	Notes        string          `gorm:"type:text" json:"notes"`
	RelatedJobID *string         `gorm:"size:100" json:"related_job_id"`
	Timestamp    time.Time       `gorm:"autoCreateTime;index" json:"timestamp"`
}
