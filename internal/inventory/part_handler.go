package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"garage-backend/internal/database"
	"garage-backend/internal/models"
	"garage-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// PartResponse uses the camelCase field names the frontend expects.
type PartResponse struct {
	ID               uint             `json:"id"`
	PartNumber       string           `json:"partNumber"`
	Description      string           `json:"description"`
	CurrentStock     int              `json:"currentStock"`
	MinimumThreshold int              `json:"minimumThreshold"`
	UnitCost         float64          `json:"unitCost"`
	Unit             string           `json:"unit"`
	Category         *models.Category `json:"category"`
	Supplier         string           `json:"supplier"`
	Location         string           `json:"location"`
	Notes            string           `json:"notes"`
}

func partResponse(p *models.Part) PartResponse {
	return PartResponse{
		ID:               p.ID,
		PartNumber:       p.PartNumber,
		Description:      p.Description,
		CurrentStock:     p.CurrentStock,
		MinimumThreshold: p.MinimumThreshold,
		UnitCost:         p.UnitCost,
		Unit:             p.Unit,
		Category:         p.Category,
		Supplier:         p.Supplier,
		Location:         p.Location,
		Notes:            p.Notes,
	}
}

type CreatePartRequest struct {
	PartNumber       string  `json:"part_number" validate:"required,max=100"`
	Description      string  `json:"description"`
	CategoryID       *uint   `json:"category_id"`
	CurrentStock     int     `json:"current_stock" validate:"gte=0"`
	MinimumThreshold int     `json:"minimum_threshold" validate:"gte=0"`
	Supplier         string  `json:"supplier"`
	UnitCost         float64 `json:"unit_cost" validate:"gte=0"`
	Unit             string  `json:"unit"`
	Location         string  `json:"location"`
	Notes            string  `json:"notes"`
}

type UpdatePartRequest struct {
	Description      *string  `json:"description"`
	CategoryID       *uint    `json:"category_id"`
	MinimumThreshold *int     `json:"minimum_threshold"`
	Supplier         *string  `json:"supplier"`
	UnitCost         *float64 `json:"unit_cost"`
	Unit             *string  `json:"unit"`
	Location         *string  `json:"location"`
	Notes            *string  `json:"notes"`
}

func ListPartsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Preload("Category").Model(&models.Part{})

		if category := c.Query("category"); category != "" {
			q = q.Where("category_id = ?", category)
		}
		if search := c.Query("search"); search != "" {
			like := "%" + search + "%"
			q = q.Where("part_number ILIKE ? OR description ILIKE ?", like, like)
		}

		var parts []models.Part
		if err := q.Order("part_number").Find(&parts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch parts")
		}

		out := make([]PartResponse, 0, len(parts))
		for i := range parts {
			out = append(out, partResponse(&parts[i]))
		}
		return c.JSON(out)
	}
}

func CreatePartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePartRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.Part{}).Where("part_number = ?", body.PartNumber).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Part number already exists")
		}

		unit := body.Unit
		if unit == "" {
			unit = "pcs"
		}
		part := models.Part{
			PartNumber:       body.PartNumber,
			Description:      body.Description,
			CategoryID:       body.CategoryID,
			CurrentStock:     body.CurrentStock,
			MinimumThreshold: body.MinimumThreshold,
			Supplier:         body.Supplier,
			UnitCost:         body.UnitCost,
			Unit:             unit,
			Location:         body.Location,
			Notes:            body.Notes,
		}
		if err := database.DB.Create(&part).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create part")
		}
		return c.Status(fiber.StatusCreated).JSON(partResponse(&part))
	}
}

func GetPartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		part, err := findPart(c)
		if err != nil {
			return err
		}
		return c.JSON(partResponse(part))
	}
}

func UpdatePartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		part, err := findPart(c)
		if err != nil {
			return err
		}

		var body UpdatePartRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Description != nil {
			part.Description = *body.Description
		}
		if body.CategoryID != nil {
			part.CategoryID = body.CategoryID
		}
		if body.MinimumThreshold != nil {
			part.MinimumThreshold = *body.MinimumThreshold
		}
		if body.Supplier != nil {
			part.Supplier = *body.Supplier
		}
		if body.UnitCost != nil {
			part.UnitCost = *body.UnitCost
		}
		if body.Unit != nil {
			part.Unit = *body.Unit
		}
		if body.Location != nil {
			part.Location = *body.Location
		}
		if body.Notes != nil {
			part.Notes = *body.Notes
		}

		if err := database.DB.Save(part).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update part")
		}
		return c.JSON(partResponse(part))
	}
}

func DeletePartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		part, err := findPart(c)
		if err != nil {
			return err
		}
		if err := database.DB.Delete(part).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete part")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func PartHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		part, err := findPart(c)
		if err != nil {
			return err
		}
		var txs []models.InventoryTransaction
		if err := database.DB.Where("part_id = ?", part.ID).Order("timestamp DESC").Find(&txs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch transactions")
		}
		return c.JSON(txs)
	}
}

func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var txs []models.InventoryTransaction
		if err := database.DB.Preload("Part").Order("timestamp DESC").Find(&txs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch transactions")
		}
		return c.JSON(txs)
	}
}

type AssignToJobRequest struct {
	PartID   uint   `json:"partId" validate:"required"`
	JobID    string `json:"jobId"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Notes    string `json:"notes"`
}

// AssignToJobHandler deducts stock consumed by a repair job and records
// the stock-out against the job.
func AssignToJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AssignToJobRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		var relatedJob *string
		if body.JobID != "" {
			relatedJob = &body.JobID
		}

		tx, err := Adjust(database.DB, Adjustment{
			PartID:       body.PartID,
			Delta:        -body.Quantity,
			Type:         models.TransactionStockOut,
			Notes:        body.Notes,
			RelatedJobID: relatedJob,
		})
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(fiber.Map{"message": "Assigned to job", "transaction": tx})
	}
}

type ReorderRequest struct {
	PartID   uint   `json:"partId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Notes    string `json:"notes"`
}

func ReorderPartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReorderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		notes := body.Notes
		if notes == "" {
			notes = "Reorder"
		}
		tx, err := Adjust(database.DB, Adjustment{
			PartID: body.PartID,
			Delta:  body.Quantity,
			Type:   models.TransactionStockIn,
			Notes:  notes,
		})
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(fiber.Map{"message": "Reordered", "transaction": tx})
	}
}

func ExportPartsCSVHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var parts []models.Part
		if err := database.DB.Preload("Category").Order("id").Find(&parts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch parts")
		}

		c.Set("Content-Type", "text/csv")
		c.Set("Content-Disposition", `attachment; filename="parts.csv"`)

		w := csv.NewWriter(c)
		_ = w.Write([]string{"id", "part_number", "description", "category", "current_stock", "minimum_threshold", "supplier", "unit_cost", "unit", "location"})
		for i := range parts {
			p := &parts[i]
			category := ""
			if p.Category != nil {
				category = p.Category.Name
			}
			_ = w.Write([]string{
				strconv.FormatUint(uint64(p.ID), 10),
				p.PartNumber,
				p.Description,
				category,
				strconv.Itoa(p.CurrentStock),
				strconv.Itoa(p.MinimumThreshold),
				p.Supplier,
				fmt.Sprintf("%.2f", p.UnitCost),
				p.Unit,
				p.Location,
			})
		}
		w.Flush()
		return w.Error()
	}
}

type ScanBarcodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// ScanBarcodeHandler looks a part up by its part number.
func ScanBarcodeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ScanBarcodeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "No code provided")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		var part models.Part
		if err := database.DB.Preload("Category").Where("part_number = ?", body.Code).First(&part).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Part not found")
		}
		return c.JSON(partResponse(&part))
	}
}

func findPart(c *fiber.Ctx) (*models.Part, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid part id")
	}
	var part models.Part
	if err := database.DB.Preload("Category").First(&part, id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Part not found")
	}
	return &part, nil
}

func ledgerError(err error) error {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return fiber.NewError(fiber.StatusBadRequest, "Insufficient stock")
	case errors.Is(err, ErrPartNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Part not found")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Stock adjustment failed")
	}
}
