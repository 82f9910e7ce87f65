package inventory

import (
	"errors"
	"math"

	"garage-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPartNotFound      = errors.New("part not found")
)

// Adjustment describes one stock movement. Negative Delta deducts,
// positive replenishes. Value defaults to |Delta| * the part's unit cost.
type Adjustment struct {
	PartID       uint
	Delta        int
	Type         models.TransactionType
	Notes        string
	RelatedJobID *string
	Value        *float64
}

// Apply mutates the part's stock and appends the matching ledger row
// using the caller's transaction. Stock never goes negative: a deduction
// larger than current stock fails with ErrInsufficientStock and leaves
// everything untouched.
func Apply(tx *gorm.DB, adj Adjustment) (*models.InventoryTransaction, error) {
	var part models.Part
	if err := tx.First(&part, adj.PartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, err
	}

	if adj.Delta < 0 && -adj.Delta > part.CurrentStock {
		return nil, ErrInsufficientStock
	}

	// guarded in-place increment so a concurrent deduction cannot slip
	// between the read above and this write
	res := tx.Model(&models.Part{}).
		Where("id = ? AND current_stock + ? >= 0", part.ID, adj.Delta).
		Update("current_stock", gorm.Expr("current_stock + ?", adj.Delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientStock
	}
	part.CurrentStock += adj.Delta

	qty := adj.Delta
	if qty < 0 {
		qty = -qty
	}
	value := math.Round(float64(qty)*part.UnitCost*100) / 100
	if adj.Value != nil {
		value = *adj.Value
	}

	record := models.InventoryTransaction{
		PartID:       part.ID,
		Type:         adj.Type,
		Quantity:     qty,
		Value:        value,
		Notes:        adj.Notes,
		RelatedJobID: adj.RelatedJobID,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Adjust wraps Apply in its own transaction so the stock mutation and
// the ledger row can never be observed independently.
func Adjust(db *gorm.DB, adj Adjustment) (*models.InventoryTransaction, error) {
	var record *models.InventoryTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var applyErr error
		record, applyErr = Apply(tx, adj)
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
