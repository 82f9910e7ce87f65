package sales

import (
	"errors"
	"fmt"

	"garage-backend/internal/inventory"
	"garage-backend/internal/models"

	"gorm.io/gorm"
)

// StockError carries the part number that could not be deducted so the
// handler can report which item broke the sale.
type StockError struct {
	PartNumber string
	Available  int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d", e.PartNumber, e.Available)
}

type ItemInput struct {
	PartNumber string  `json:"part_number"`
	Name       string  `json:"name" validate:"required"`
	Qty        int     `json:"qty" validate:"required,gt=0"`
	Unit       float64 `json:"unit" validate:"gte=0"`
}

// CreateSale persists the sale and deducts stock for every item with a
// part number, one stock-out ledger row per item, all in one
// transaction. Any failure rolls the whole sale back.
func CreateSale(db *gorm.DB, customerID *uint, total float64, items []ItemInput) (*models.Sale, error) {
	var sale models.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		sale = models.Sale{CustomerID: customerID, Total: total}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		return deductItems(tx, &sale, items, fmt.Sprintf("Sale #%d", sale.ID))
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// UpdateSale treats an edit as delete-then-recreate: stock for every
// prior item is fully restored before the new items are validated and
// deducted, so the ledger records the compensation explicitly.
func UpdateSale(db *gorm.DB, sale *models.Sale, customerID *uint, total float64, items []ItemInput) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := restoreItems(tx, sale, fmt.Sprintf("Sale #%d update - stock restored", sale.ID)); err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}

		sale.CustomerID = customerID
		sale.Total = total
		sale.Items = nil
		if err := tx.Save(sale).Error; err != nil {
			return err
		}
		return deductItems(tx, sale, items, fmt.Sprintf("Sale #%d update", sale.ID))
	})
}

// DeleteSale restores stock for every item and removes the sale, one
// stock-in ledger row per restored item.
func DeleteSale(db *gorm.DB, sale *models.Sale) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := restoreItems(tx, sale, fmt.Sprintf("Sale #%d deleted - stock restored", sale.ID)); err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Sale{}, sale.ID).Error
	})
}

func deductItems(tx *gorm.DB, sale *models.Sale, items []ItemInput, notes string) error {
	for _, in := range items {
		item := models.SaleItem{
			SaleID:     sale.ID,
			PartNumber: in.PartNumber,
			Name:       in.Name,
			Qty:        in.Qty,
			Unit:       in.Unit,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		sale.Items = append(sale.Items, item)

		if in.PartNumber == "" {
			continue
		}
		var part models.Part
		if err := tx.Where("part_number = ?", in.PartNumber).First(&part).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("part not found: %s", in.PartNumber)
			}
			return err
		}

		value := float64(in.Qty) * in.Unit
		_, err := inventory.Apply(tx, inventory.Adjustment{
			PartID: part.ID,
			Delta:  -in.Qty,
			Type:   models.TransactionStockOut,
			Notes:  notes,
			Value:  &value,
		})
		if err != nil {
			if errors.Is(err, inventory.ErrInsufficientStock) {
				return &StockError{PartNumber: in.PartNumber, Available: part.CurrentStock}
			}
			return err
		}
	}
	return nil
}

func restoreItems(tx *gorm.DB, sale *models.Sale, notes string) error {
	var items []models.SaleItem
	if err := tx.Where("sale_id = ?", sale.ID).Find(&items).Error; err != nil {
		return err
	}
	for _, item := range items {
		if item.PartNumber == "" {
			continue
		}
		var part models.Part
		if err := tx.Where("part_number = ?", item.PartNumber).First(&part).Error; err != nil {
			// the part may have been removed since the sale; nothing to restore
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}

		value := float64(item.Qty) * item.Unit
		_, err := inventory.Apply(tx, inventory.Adjustment{
			PartID: part.ID,
			Delta:  item.Qty,
			Type:   models.TransactionStockIn,
			Notes:  notes,
			Value:  &value,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
