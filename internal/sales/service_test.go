package sales

import (
	"testing"

	"garage-backend/internal/database"
	"garage-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedPart(t *testing.T, db *gorm.DB, number string, stock int) *models.Part {
	t.Helper()
	part := &models.Part{
		PartNumber:   number,
		Description:  "Test part " + number,
		CurrentStock: stock,
		UnitCost:     10,
		Unit:         "pcs",
	}
	require.NoError(t, db.Create(part).Error)
	return part
}

func stockOf(t *testing.T, db *gorm.DB, partID uint) int {
	t.Helper()
	var part models.Part
	require.NoError(t, db.First(&part, partID).Error)
	return part.CurrentStock
}

func TestCreateSaleDeductsStock(t *testing.T) {
	db := setupDB(t)
	part := seedPart(t, db, "OIL-5W30", 10)

	sale, err := CreateSale(db, nil, 75, []ItemInput{
		{PartNumber: "OIL-5W30", Name: "Engine oil 5W30", Qty: 3, Unit: 25},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, stockOf(t, db, part.ID))

	var items []models.SaleItem
	require.NoError(t, db.Where("sale_id = ?", sale.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Qty)

	// one stock-out ledger row valued at the sale price
	var txRow models.InventoryTransaction
	require.NoError(t, db.Where("part_id = ?", part.ID).First(&txRow).Error)
	assert.Equal(t, models.TransactionStockOut, txRow.Type)
	assert.Equal(t, 75.0, txRow.Value)
}

func TestCreateSaleInsufficientStockAbortsEverything(t *testing.T) {
	db := setupDB(t)
	ok := seedPart(t, db, "OIL-5W30", 10)
	low := seedPart(t, db, "FLT-OIL", 1)

	_, err := CreateSale(db, nil, 100, []ItemInput{
		{PartNumber: "OIL-5W30", Name: "Engine oil", Qty: 2, Unit: 25},
		{PartNumber: "FLT-OIL", Name: "Oil filter", Qty: 3, Unit: 15},
	})
	require.Error(t, err)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "FLT-OIL", stockErr.PartNumber)
	assert.Equal(t, 1, stockErr.Available)

	// the whole transaction rolled back: no sale, no deduction
	assert.Equal(t, 10, stockOf(t, db, ok.ID))
	assert.Equal(t, 1, stockOf(t, db, low.ID))

	var saleCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	assert.Equal(t, int64(0), saleCount)
}

func TestCreateSaleItemWithoutPartNumberSkipsStock(t *testing.T) {
	db := setupDB(t)

	sale, err := CreateSale(db, nil, 30, []ItemInput{
		{Name: "Labor - diagnostics", Qty: 1, Unit: 30},
	})
	require.NoError(t, err)

	var items []models.SaleItem
	require.NoError(t, db.Where("sale_id = ?", sale.ID).Find(&items).Error)
	require.Len(t, items, 1)

	var txCount int64
	db.Model(&models.InventoryTransaction{}).Count(&txCount)
	assert.Equal(t, int64(0), txCount)
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	db := setupDB(t)
	part := seedPart(t, db, "OIL-5W30", 10)

	sale, err := CreateSale(db, nil, 50, []ItemInput{
		{PartNumber: "OIL-5W30", Name: "Engine oil", Qty: 4, Unit: 12.5},
	})
	require.NoError(t, err)
	require.Equal(t, 6, stockOf(t, db, part.ID))

	require.NoError(t, db.Preload("Items").First(sale, sale.ID).Error)
	require.NoError(t, DeleteSale(db, sale))

	assert.Equal(t, 10, stockOf(t, db, part.ID))

	var saleCount, itemCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	db.Model(&models.SaleItem{}).Count(&itemCount)
	assert.Equal(t, int64(0), saleCount)
	assert.Equal(t, int64(0), itemCount)

	// ledger keeps both movements
	var txCount int64
	db.Model(&models.InventoryTransaction{}).Where("part_id = ?", part.ID).Count(&txCount)
	assert.Equal(t, int64(2), txCount)
}

func TestUpdateSaleRestoresThenDeducts(t *testing.T) {
	db := setupDB(t)
	oil := seedPart(t, db, "OIL-5W30", 10)
	filter := seedPart(t, db, "FLT-OIL", 5)

	sale, err := CreateSale(db, nil, 50, []ItemInput{
		{PartNumber: "OIL-5W30", Name: "Engine oil", Qty: 4, Unit: 12.5},
	})
	require.NoError(t, err)
	require.Equal(t, 6, stockOf(t, db, oil.ID))

	require.NoError(t, db.Preload("Items").First(sale, sale.ID).Error)
	require.NoError(t, UpdateSale(db, sale, nil, 55, []ItemInput{
		{PartNumber: "OIL-5W30", Name: "Engine oil", Qty: 2, Unit: 12.5},
		{PartNumber: "FLT-OIL", Name: "Oil filter", Qty: 2, Unit: 15},
	}))

	assert.Equal(t, 8, stockOf(t, db, oil.ID))
	assert.Equal(t, 3, stockOf(t, db, filter.ID))

	var items []models.SaleItem
	require.NoError(t, db.Where("sale_id = ?", sale.ID).Find(&items).Error)
	assert.Len(t, items, 2)
}

func TestUpdateSaleInsufficientStockKeepsOriginal(t *testing.T) {
	db := setupDB(t)
	oil := seedPart(t, db, "OIL-5W30", 10)

	sale, err := CreateSale(db, nil, 50, []ItemInput{
		{PartNumber: "OIL-5W30", Name: "Engine oil", Qty: 4, Unit: 12.5},
	})
	require.NoError(t, err)

	require.NoError(t, db.Preload("Items").First(sale, sale.ID).Error)
	// 10 in stock after the restore step, asking for 11 must fail
	err = UpdateSale(db, sale, nil, 200, []ItemInput{
		{PartNumber: "OIL-5W30", Name: "Engine oil", Qty: 11, Unit: 12.5},
	})
	require.Error(t, err)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)

	// rollback keeps the original sale and its deduction
	assert.Equal(t, 6, stockOf(t, db, oil.ID))

	var items []models.SaleItem
	require.NoError(t, db.Where("sale_id = ?", sale.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Qty)
}

func TestDeleteSaleMissingPartStillDeletes(t *testing.T) {
	db := setupDB(t)
	part := seedPart(t, db, "OIL-5W30", 10)

	sale, err := CreateSale(db, nil, 25, []ItemInput{
		{PartNumber: "OIL-5W30", Name: "Engine oil", Qty: 2, Unit: 12.5},
	})
	require.NoError(t, err)

	// part removed from catalog after the sale
	require.NoError(t, db.Delete(&models.Part{}, part.ID).Error)

	require.NoError(t, db.Preload("Items").First(sale, sale.ID).Error)
	require.NoError(t, DeleteSale(db, sale))

	var saleCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	assert.Equal(t, int64(0), saleCount)
}
