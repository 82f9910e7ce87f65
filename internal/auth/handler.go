package auth

import (
	"errors"
	"log"
	"strings"
	"time"

	"garage-backend/internal/config"
	"garage-backend/internal/database"
	"garage-backend/internal/models"
	"garage-backend/internal/otp"
	"garage-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin supervisor technician"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type CreateTechnicianRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func RegisterHandler(cfg *config.Config, issuer *otp.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Username = strings.TrimSpace(body.Username)

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Email already exists")
		}
		database.DB.Model(&models.User{}).Where("username = ?", body.Username).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Username already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Username:     body.Username,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.UserRole(body.Role),
			Verified:     false,
			IsActive:     true,
			DateJoined:   time.Now(),
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		if _, err := issuer.Issue(body.Email, "Verification Code"); err != nil {
			// account and code are persisted, only delivery failed
			return fiber.NewError(fiber.StatusInternalServerError, "Registered but failed to send OTP")
		}

		return c.JSON(fiber.Map{"message": "Registered. OTP sent to email."})
	}
}

func LoginHandler(cfg *config.Config, issuer *otp.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		// Bootstrap identities: password lives in configuration, not the DB.
		// A match triggers the OTP second factor against the configured email.
		if body.Username == cfg.SupervisorUsername && cfg.SupervisorPassword != "" {
			if body.Password != cfg.SupervisorPassword {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
			}
			if _, err := issuer.Issue(cfg.SupervisorEmail, "Supervisor Login OTP"); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to send OTP to supervisor")
			}
			return c.JSON(fiber.Map{"message": "OTP sent to supervisor email", "otpRequired": true})
		}
		if body.Username == cfg.AdminUsername && cfg.AdminPassword != "" {
			if body.Password != cfg.AdminPassword {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
			}
			if _, err := issuer.Issue(cfg.AdminEmail, "Admin Login OTP"); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to send OTP to admin")
			}
			return c.JSON(fiber.Map{"message": "OTP sent to admin email", "otpRequired": true})
		}

		var user models.User
		if err := database.DB.Where("username = ?", body.Username).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		if !user.Verified {
			return fiber.NewError(fiber.StatusForbidden, "Email not verified")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}

		now := time.Now()
		database.DB.Model(&user).Update("last_login", &now)

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
		}

		return c.JSON(fiber.Map{
			"token":       token,
			"role":        user.Role,
			"permissions": PermissionsForRole(user.Role),
		})
	}
}

func VerifyOTPHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VerifyOTPRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if err := otp.Verify(database.DB, body.Email, body.OTP); err != nil {
			switch {
			case errors.Is(err, otp.ErrInvalidCode):
				return fiber.NewError(fiber.StatusBadRequest, "Invalid OTP")
			case errors.Is(err, otp.ErrCodeExpired):
				return fiber.NewError(fiber.StatusBadRequest, "OTP expired")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "Error verifying OTP")
			}
		}

		// Verifying a bootstrap identity's email doubles as its login step.
		if body.Email == cfg.SupervisorEmail {
			supervisor, err := syncBootstrapAccount(database.DB, cfg.SupervisorUsername, cfg.SupervisorEmail, cfg.SupervisorPassword, models.RoleSupervisor)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not provision supervisor account")
			}
			token, err := GenerateToken(cfg.JWTSecret, supervisor)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
			}
			return c.JSON(fiber.Map{
				"message":     "Supervisor verified",
				"token":       token,
				"role":        models.RoleSupervisor,
				"permissions": PermissionsForRole(models.RoleSupervisor),
			})
		}
		if body.Email == cfg.AdminEmail {
			admin, err := syncBootstrapAccount(database.DB, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword, models.RoleAdmin)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not provision admin account")
			}
			token, err := GenerateToken(cfg.JWTSecret, admin)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
			}
			return c.JSON(fiber.Map{
				"message":     "Admin verified",
				"token":       token,
				"role":        models.RoleAdmin,
				"permissions": PermissionsForRole(models.RoleAdmin),
			})
		}

		return c.JSON(fiber.Map{"message": "Email verified."})
	}
}

// syncBootstrapAccount upserts the configured admin/supervisor account,
// rewriting its stored hash from configuration on every successful
// verification. Config is truth for these two identities, the DB row is
// only a cache.
func syncBootstrapAccount(db *gorm.DB, username, email, password string, role models.UserRole) (*models.User, error) {
	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Username:   username,
			DateJoined: time.Now(),
		}
	} else if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user.Email = email
	user.PasswordHash = string(hash)
	user.Role = role
	user.Verified = true
	user.IsActive = true
	if err := db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Could not resolve user")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		return c.JSON(fiber.Map{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"role":        user.Role,
			"permissions": PermissionsForRole(user.Role),
		})
	}
}

func CreateTechnicianHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTechnicianRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var count int64
		database.DB.Model(&models.User{}).
			Where("username = ? OR email = ?", body.Username, body.Email).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "User already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		// created by a trusted role, so no OTP round trip is needed
		tech := models.User{
			Username:     body.Username,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleTechnician,
			Verified:     true,
			IsActive:     true,
			DateJoined:   time.Now(),
		}
		if err := database.DB.Create(&tech).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create technician")
		}

		return c.JSON(fiber.Map{"message": "Technician created", "id": tech.ID})
	}
}

// DevOTPsHandler exposes the tail of the OTP log for development.
// Disabled when 2FA is switched off for production mode.
func DevOTPsHandler(cfg *config.Config, otpLog *otp.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.Enable2FA {
			return fiber.NewError(fiber.StatusForbidden, "Dev OTP listing disabled in production mode")
		}
		lines, err := otpLog.LastLines(50)
		if err != nil {
			log.Printf("auth: reading OTP log failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to read OTP log")
		}
		return c.JSON(fiber.Map{"otps": lines})
	}
}
