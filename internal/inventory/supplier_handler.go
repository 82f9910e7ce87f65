package inventory

import (
	"time"

	"garage-backend/internal/database"
	"garage-backend/internal/models"
	"garage-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreateSupplierRequest struct {
	Name             string  `json:"name" validate:"required,max=200"`
	Contact          string  `json:"contact"`
	Email            string  `json:"email" validate:"omitempty,email"`
	Phone            string  `json:"phone"`
	Amount           float64 `json:"amount"`
	DueDate          *string `json:"due_date"` // "2006-01-02"
	State            string  `json:"state"`
	ProductsSupplied string  `json:"products_supplied"`
}

type UpdateSupplierRequest struct {
	Name             *string  `json:"name"`
	Contact          *string  `json:"contact"`
	Email            *string  `json:"email"`
	Phone            *string  `json:"phone"`
	Amount           *float64 `json:"amount"`
	DueDate          *string  `json:"due_date"`
	State            *string  `json:"state"`
	ProductsSupplied *string  `json:"products_supplied"`
}

func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := database.DB.Order("name").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch suppliers")
		}
		return c.JSON(suppliers)
	}
}

func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.Supplier{}).Where("name = ?", body.Name).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Supplier already exists")
		}

		dueDate, err := parseDate(body.DueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "due_date must be YYYY-MM-DD")
		}

		state := body.State
		if state == "" {
			state = "due"
		}
		supplier := models.Supplier{
			Name:             body.Name,
			Contact:          body.Contact,
			Email:            body.Email,
			Phone:            body.Phone,
			Amount:           body.Amount,
			DueDate:          dueDate,
			State:            state,
			ProductsSupplied: body.ProductsSupplied,
		}
		if err := database.DB.Create(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create supplier")
		}
		return c.Status(fiber.StatusCreated).JSON(supplier)
	}
}

func GetSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplier, err := findSupplier(c)
		if err != nil {
			return err
		}
		return c.JSON(supplier)
	}
}

func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplier, err := findSupplier(c)
		if err != nil {
			return err
		}

		var body UpdateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			supplier.Name = *body.Name
		}
		if body.Contact != nil {
			supplier.Contact = *body.Contact
		}
		if body.Email != nil {
			supplier.Email = *body.Email
		}
		if body.Phone != nil {
			supplier.Phone = *body.Phone
		}
		if body.Amount != nil {
			supplier.Amount = *body.Amount
		}
		if body.DueDate != nil {
			dueDate, err := parseDate(body.DueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "due_date must be YYYY-MM-DD")
			}
			supplier.DueDate = dueDate
		}
		if body.State != nil {
			supplier.State = *body.State
		}
		if body.ProductsSupplied != nil {
			supplier.ProductsSupplied = *body.ProductsSupplied
		}

		if err := database.DB.Save(supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update supplier")
		}
		return c.JSON(supplier)
	}
}

func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplier, err := findSupplier(c)
		if err != nil {
			return err
		}
		if err := database.DB.Delete(supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete supplier")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func findSupplier(c *fiber.Ctx) (*models.Supplier, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid supplier id")
	}
	var supplier models.Supplier
	if err := database.DB.First(&supplier, id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Supplier not found")
	}
	return &supplier, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
