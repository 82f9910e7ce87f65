package sales

import (
	"errors"
	"strings"
	"time"

	"garage-backend/internal/database"
	"garage-backend/internal/models"
	"garage-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type SaleRequest struct {
	CustomerID *uint       `json:"customer_id"` // nil = walk-in
	Total      float64     `json:"total" validate:"gte=0"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
}

func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sales []models.Sale
		err := database.DB.Preload("Customer").Preload("Items").Order("date DESC").Find(&sales).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch sales")
		}
		return c.JSON(sales)
	}
}

func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		sale, err := CreateSale(database.DB, body.CustomerID, body.Total, body.Items)
		if err != nil {
			return saleError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(sale)
	}
}

func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sale, err := findSale(c)
		if err != nil {
			return err
		}
		return c.JSON(sale)
	}
}

func UpdateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sale, err := findSale(c)
		if err != nil {
			return err
		}

		var body SaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		if err := UpdateSale(database.DB, sale, body.CustomerID, body.Total, body.Items); err != nil {
			return saleError(err)
		}
		return c.JSON(sale)
	}
}

func DeleteSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sale, err := findSale(c)
		if err != nil {
			return err
		}
		if err := DeleteSale(database.DB, sale); err != nil {
			return saleError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func CustomerSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("customer_id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid customer id")
		}
		var sales []models.Sale
		if err := database.DB.Preload("Items").Where("customer_id = ?", id).Order("date DESC").Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch sales")
		}
		return c.JSON(sales)
	}
}

func SalesStatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		// week starts Monday
		offset := (int(now.Weekday()) + 6) % 7
		weekStart := todayStart.AddDate(0, 0, -offset)

		type agg struct {
			Total float64
			Count int64
		}
		var today, week agg
		database.DB.Model(&models.Sale{}).
			Select("COALESCE(SUM(total),0) as total, COUNT(*) as count").
			Where("date >= ?", todayStart).
			Scan(&today)
		database.DB.Model(&models.Sale{}).
			Select("COALESCE(SUM(total),0) as total, COUNT(*) as count").
			Where("date >= ?", weekStart).
			Scan(&week)

		return c.JSON(fiber.Map{
			"today": fiber.Map{"total": today.Total, "count": today.Count},
			"week":  fiber.Map{"total": week.Total, "count": week.Count},
		})
	}
}

func SaleItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sales []models.Sale
		err := database.DB.Preload("Customer").Preload("Items").Order("date DESC").Find(&sales).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch sales")
		}
		return c.JSON(sales)
	}
}

func findSale(c *fiber.Ctx) (*models.Sale, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid sale id")
	}
	var sale models.Sale
	if err := database.DB.Preload("Customer").Preload("Items").First(&sale, id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Sale not found")
	}
	return &sale, nil
}

func saleError(err error) error {
	var stockErr *StockError
	if errors.As(err, &stockErr) {
		return fiber.NewError(fiber.StatusBadRequest, stockErr.Error())
	}
	if strings.HasPrefix(err.Error(), "part not found") {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Sale operation failed")
}
