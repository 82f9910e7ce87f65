package inventory

import (
	"garage-backend/internal/database"
	"garage-backend/internal/models"
	"garage-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreateCustomerRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	PreferredContact string `json:"preferred_contact"`
	Notes            string `json:"notes"`
	Status           string `json:"status"`
}

type UpdateCustomerRequest struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	PreferredContact *string `json:"preferred_contact"`
	Notes            *string `json:"notes"`
	Status           *string `json:"status"`
}

func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customers []models.Customer
		if err := database.DB.Order("name").Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch customers")
		}
		return c.JSON(customers)
	}
}

func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		status := body.Status
		if status == "" {
			status = "active"
		}
		customer := models.Customer{
			Name:             body.Name,
			Email:            body.Email,
			Phone:            body.Phone,
			Address:          body.Address,
			PreferredContact: body.PreferredContact,
			Notes:            body.Notes,
			Status:           status,
		}
		if err := database.DB.Create(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create customer")
		}
		return c.Status(fiber.StatusCreated).JSON(customer)
	}
}

func GetCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customer, err := findCustomer(c)
		if err != nil {
			return err
		}
		return c.JSON(customer)
	}
}

func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customer, err := findCustomer(c)
		if err != nil {
			return err
		}

		var body UpdateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			customer.Name = *body.Name
		}
		if body.Email != nil {
			customer.Email = *body.Email
		}
		if body.Phone != nil {
			customer.Phone = *body.Phone
		}
		if body.Address != nil {
			customer.Address = *body.Address
		}
		if body.PreferredContact != nil {
			customer.PreferredContact = *body.PreferredContact
		}
		if body.Notes != nil {
			customer.Notes = *body.Notes
		}
		if body.Status != nil {
			customer.Status = *body.Status
		}

		if err := database.DB.Save(customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update customer")
		}
		return c.JSON(customer)
	}
}

func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customer, err := findCustomer(c)
		if err != nil {
			return err
		}
		if err := database.DB.Delete(customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete customer")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func findCustomer(c *fiber.Ctx) (*models.Customer, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid customer id")
	}
	var customer models.Customer
	if err := database.DB.First(&customer, id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Customer not found")
	}
	return &customer, nil
}
