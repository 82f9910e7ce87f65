package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"garage-backend/internal/config"
	"garage-backend/internal/database"
	"garage-backend/internal/models"
	"garage-backend/internal/otp"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// handlers read the package-global connection, so the tests point it at
// an in-memory database for their lifetime
func useTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func bootstrapConfig() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		AdminUsername:      "admin",
		AdminPassword:      "admin-config-pass",
		AdminEmail:         "admin@example.com",
		SupervisorUsername: "supervisor",
		SupervisorPassword: "super-config-pass",
		SupervisorEmail:    "supervisor@example.com",
	}
}

// newVerifyApp mirrors the server's JSON error handler so error bodies
// decode the same way they do in production
func newVerifyApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Unexpected server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}
			return c.Status(code).JSON(fiber.Map{"error": msg})
		},
	})
	app.Post("/verify-otp", VerifyOTPHandler(cfg))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (map[string]any, int) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded, resp.StatusCode
}

func TestVerifyOTPPlainUser(t *testing.T) {
	db := useTestDB(t)
	cfg := bootstrapConfig()

	user := models.User{Username: "ayse", Email: "ayse@example.com", PasswordHash: "x", Role: models.RoleTechnician}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.OTP{Email: user.Email, Code: "123456"}).Error)

	app := newVerifyApp(cfg)

	decoded, status := postJSON(t, app, "/verify-otp", fiber.Map{"email": "ayse@example.com", "otp": "123456"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Email verified.", decoded["message"])
	assert.NotContains(t, decoded, "token")

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.Verified)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	db := useTestDB(t)
	require.NoError(t, db.Create(&models.OTP{Email: "ayse@example.com", Code: "123456"}).Error)

	app := newVerifyApp(bootstrapConfig())

	decoded, status := postJSON(t, app, "/verify-otp", fiber.Map{"email": "ayse@example.com", "otp": "999999"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid OTP", decoded["error"])
}

func TestVerifyOTPProvisionsAdminFromConfig(t *testing.T) {
	db := useTestDB(t)
	cfg := bootstrapConfig()
	require.NoError(t, db.Create(&models.OTP{Email: cfg.AdminEmail, Code: "123456"}).Error)

	app := newVerifyApp(cfg)

	decoded, status := postJSON(t, app, "/verify-otp", fiber.Map{"email": cfg.AdminEmail, "otp": "123456"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "admin", decoded["role"])

	claims, err := ParseToken(cfg.JWTSecret, decoded["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	var admin models.User
	require.NoError(t, db.Where("username = ?", cfg.AdminUsername).First(&admin).Error)
	assert.True(t, admin.Verified)
	assert.Equal(t, cfg.AdminEmail, admin.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(cfg.AdminPassword)))
}

func TestVerifyOTPRewritesAdminHashFromConfig(t *testing.T) {
	db := useTestDB(t)
	cfg := bootstrapConfig()

	// stale row with an old hash; config is truth for bootstrap accounts
	oldHash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: string(oldHash),
		Role:         models.RoleAdmin,
	}).Error)
	require.NoError(t, db.Create(&models.OTP{Email: cfg.AdminEmail, Code: "123456"}).Error)

	app := newVerifyApp(cfg)

	_, status := postJSON(t, app, "/verify-otp", fiber.Map{"email": cfg.AdminEmail, "otp": "123456"})
	require.Equal(t, fiber.StatusOK, status)

	var admin models.User
	require.NoError(t, db.Where("username = ?", cfg.AdminUsername).First(&admin).Error)
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("old-password")))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(cfg.AdminPassword)))

	var count int64
	db.Model(&models.User{}).Where("username = ?", cfg.AdminUsername).Count(&count)
	assert.Equal(t, int64(1), count)
}

func newDevOTPsApp(cfg *config.Config, otpLog *otp.Log) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Unexpected server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}
			return c.Status(code).JSON(fiber.Map{"error": msg})
		},
	})
	app.Get("/dev/otps", DevOTPsHandler(cfg, otpLog))
	return app
}

func TestDevOTPsDisabledWithout2FA(t *testing.T) {
	cfg := bootstrapConfig()
	cfg.Enable2FA = false
	otpLog := otp.NewLog(filepath.Join(t.TempDir(), "otp.log"))
	app := newDevOTPsApp(cfg, otpLog)

	resp, err := app.Test(httptest.NewRequest("GET", "/dev/otps", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDevOTPsReturnsLogTail(t *testing.T) {
	cfg := bootstrapConfig()
	cfg.Enable2FA = true
	otpLog := otp.NewLog(filepath.Join(t.TempDir(), "otp.log"))
	for i := 1; i <= 55; i++ {
		require.NoError(t, otpLog.Append(fmt.Sprintf("OTP for user%d@example.com: 123456", i)))
	}
	app := newDevOTPsApp(cfg, otpLog)

	resp, err := app.Test(httptest.NewRequest("GET", "/dev/otps", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var decoded struct {
		OTPs []string `json:"otps"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.Len(t, decoded.OTPs, 50)
	assert.Contains(t, decoded.OTPs[0], "user6@example.com")
	assert.Contains(t, decoded.OTPs[49], "user55@example.com")
}

func TestVerifyOTPProvisionsSupervisor(t *testing.T) {
	db := useTestDB(t)
	cfg := bootstrapConfig()
	require.NoError(t, db.Create(&models.OTP{Email: cfg.SupervisorEmail, Code: "654321"}).Error)

	app := newVerifyApp(cfg)

	decoded, status := postJSON(t, app, "/verify-otp", fiber.Map{"email": cfg.SupervisorEmail, "otp": "654321"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "supervisor", decoded["role"])

	claims, err := ParseToken(cfg.JWTSecret, decoded["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupervisor, claims.Role)
}
