package jobs

import (
	"garage-backend/internal/auth"
	"garage-backend/internal/database"
	"garage-backend/internal/models"
	"garage-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// requireAssignedTechnician: progress updates, parts requests and
// messaging are tied to the job's current technician by identity, not
// by role.
func requireAssignedTechnician(c *fiber.Ctx, job *models.Job) (uint, error) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Could not resolve user")
	}
	if job.TechnicianID == nil || *job.TechnicianID != userID {
		return 0, fiber.NewError(fiber.StatusForbidden, "You can only act on jobs assigned to you")
	}
	return userID, nil
}

type ProgressRequest struct {
	ProgressPercentage int    `json:"progress_percentage" validate:"gte=0,lte=100"`
	Description        string `json:"description" validate:"required"`
}

func UpdateJobProgressHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}
		userID, err := requireAssignedTechnician(c, job)
		if err != nil {
			return err
		}

		var body ProgressRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		progress := models.JobProgress{
			JobID:              job.ID,
			TechnicianID:       userID,
			ProgressPercentage: body.ProgressPercentage,
			Description:        body.Description,
		}
		if err := database.DB.Create(&progress).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record progress")
		}
		return c.Status(fiber.StatusCreated).JSON(progress)
	}
}

type PartsRequestRequest struct {
	PartNumber        string `json:"part_number" validate:"required"`
	PartName          string `json:"part_name" validate:"required"`
	QuantityRequested int    `json:"quantity_requested" validate:"required,gt=0"`
	Reason            string `json:"reason"`
}

func RequestPartsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}
		userID, err := requireAssignedTechnician(c, job)
		if err != nil {
			return err
		}

		var body PartsRequestRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		request := models.PartsRequest{
			JobID:             job.ID,
			TechnicianID:      userID,
			PartNumber:        body.PartNumber,
			PartName:          body.PartName,
			QuantityRequested: body.QuantityRequested,
			Reason:            body.Reason,
			Status:            models.PartsRequestPending,
		}
		if err := database.DB.Create(&request).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create parts request")
		}
		return c.Status(fiber.StatusCreated).JSON(request)
	}
}

type SendMessageRequest struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	Message     string `json:"message" validate:"required"`
}

func SendMessageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}
		userID, err := requireAssignedTechnician(c, job)
		if err != nil {
			return err
		}

		var body SendMessageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		var recipient models.User
		if err := database.DB.First(&recipient, body.RecipientID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Recipient not found")
		}

		message := models.TechnicianMessage{
			JobID:       job.ID,
			SenderID:    userID,
			RecipientID: recipient.ID,
			Message:     body.Message,
		}
		if err := database.DB.Create(&message).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not send message")
		}
		return c.Status(fiber.StatusCreated).JSON(message)
	}
}

// TechnicianDashboardHandler: the signed-in technician's assigned jobs
// with their progress updates, parts requests and messages.
func TechnicianDashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := auth.CurrentRole(c)
		if role != models.RoleTechnician {
			return fiber.NewError(fiber.StatusForbidden, "Only technicians can access this endpoint")
		}
		userID, _ := auth.CurrentUserID(c)

		var jobs []models.Job
		err := database.DB.Preload("Customer").
			Where("technician_id = ?", userID).
			Order("created_at DESC").
			Find(&jobs).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch jobs")
		}

		out := make([]fiber.Map, 0, len(jobs))
		for i := range jobs {
			job := &jobs[i]
			var progress []models.JobProgress
			database.DB.Where("job_id = ?", job.ID).Order("created_at DESC").Find(&progress)
			var requests []models.PartsRequest
			database.DB.Where("job_id = ?", job.ID).Order("requested_at DESC").Find(&requests)
			var messages []models.TechnicianMessage
			database.DB.Where("job_id = ?", job.ID).Order("sent_at DESC").Find(&messages)

			out = append(out, fiber.Map{
				"job":              job,
				"progress_updates": progress,
				"parts_requests":   requests,
				"messages":         messages,
			})
		}
		return c.JSON(out)
	}
}

func MyMessagesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := auth.CurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Could not resolve user")
		}
		var messages []models.TechnicianMessage
		err := database.DB.Preload("Sender").Preload("Recipient").
			Where("sender_id = ? OR recipient_id = ?", userID, userID).
			Order("sent_at DESC").
			Find(&messages).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch messages")
		}
		return c.JSON(messages)
	}
}
