package jobs

import (
	"errors"
	"time"

	"garage-backend/internal/auth"
	"garage-backend/internal/database"
	"garage-backend/internal/models"
	"garage-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateProfileRequest struct {
	Username       string   `json:"username" validate:"required,min=3,max=50"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"omitempty,min=6"`
	Specialization string   `json:"specialization"`
	Phone          string   `json:"phone"`
	HireDate       *string  `json:"hire_date"` // "2006-01-02"
	HourlyRate     *float64 `json:"hourly_rate"`
}

type UpdateProfileRequest struct {
	Specialization *string  `json:"specialization"`
	Phone          *string  `json:"phone"`
	HireDate       *string  `json:"hire_date"`
	HourlyRate     *float64 `json:"hourly_rate"`
	IsAvailable    *bool    `json:"is_available"`
}

func ListProfilesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var profiles []models.TechnicianProfile
		if err := database.DB.Preload("User").Find(&profiles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch technician profiles")
		}
		return c.JSON(profiles)
	}
}

// CreateProfileHandler provisions the account and the profile as one
// unit; a failed profile write rolls the account back too.
func CreateProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		password := body.Password
		if password == "" {
			password = "defaultpass123"
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		var hireDate *time.Time
		if body.HireDate != nil && *body.HireDate != "" {
			parsed, err := time.Parse("2006-01-02", *body.HireDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "hire_date must be YYYY-MM-DD")
			}
			hireDate = &parsed
		}

		var profile models.TechnicianProfile
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var count int64
			tx.Model(&models.User{}).Where("username = ? OR email = ?", body.Username, body.Email).Count(&count)
			if count > 0 {
				return errors.New("user exists")
			}

			user := models.User{
				Username:     body.Username,
				Email:        body.Email,
				PasswordHash: string(hash),
				Role:         models.RoleTechnician,
				Verified:     true,
				IsActive:     true,
				DateJoined:   time.Now(),
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			profile = models.TechnicianProfile{
				UserID:         user.ID,
				Specialization: body.Specialization,
				Phone:          body.Phone,
				HireDate:       hireDate,
				HourlyRate:     body.HourlyRate,
				IsAvailable:    true,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			profile.User = user
			return nil
		})
		if err != nil {
			if err.Error() == "user exists" {
				return fiber.NewError(fiber.StatusBadRequest, "User already exists")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create technician profile")
		}
		return c.Status(fiber.StatusCreated).JSON(profile)
	}
}

func GetProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := findProfile(c)
		if err != nil {
			return err
		}

		// technicians may only read their own profile
		role, _ := auth.CurrentRole(c)
		if role == models.RoleTechnician {
			userID, _ := auth.CurrentUserID(c)
			if profile.UserID != userID {
				return fiber.NewError(fiber.StatusForbidden, "Permission denied")
			}
		}
		return c.JSON(profile)
	}
}

func UpdateProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := findProfile(c)
		if err != nil {
			return err
		}

		var body UpdateProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Specialization != nil {
			profile.Specialization = *body.Specialization
		}
		if body.Phone != nil {
			profile.Phone = *body.Phone
		}
		if body.HireDate != nil {
			parsed, err := time.Parse("2006-01-02", *body.HireDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "hire_date must be YYYY-MM-DD")
			}
			profile.HireDate = &parsed
		}
		if body.HourlyRate != nil {
			profile.HourlyRate = body.HourlyRate
		}
		if body.IsAvailable != nil {
			profile.IsAvailable = *body.IsAvailable
		}

		if err := database.DB.Save(profile).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update profile")
		}
		return c.JSON(profile)
	}
}

// DeleteProfileHandler removes the profile together with its user
// account. Admin only (wired at the route level).
func DeleteProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := findProfile(c)
		if err != nil {
			return err
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&models.TechnicianProfile{}, profile.ID).Error; err != nil {
				return err
			}
			return tx.Delete(&models.User{}, profile.UserID).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete technician")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func findProfile(c *fiber.Ctx) (*models.TechnicianProfile, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid profile id")
	}
	var profile models.TechnicianProfile
	if err := database.DB.Preload("User").First(&profile, id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Technician not found")
	}
	return &profile, nil
}
