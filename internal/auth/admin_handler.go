package auth

import (
	"fmt"
	"time"

	"garage-backend/internal/database"
	"garage-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type TechnicianSummary struct {
	ID                uint       `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	IsActive          bool       `json:"is_active"`
	LastLogin         *time.Time `json:"last_login"`
	AssignedJobsCount int64      `json:"assigned_jobs_count"`
	DateJoined        time.Time  `json:"date_joined"`
}

func AdminStatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var totalTechnicians, activeTechnicians int64
		database.DB.Model(&models.User{}).Where("role = ?", models.RoleTechnician).Count(&totalTechnicians)
		database.DB.Model(&models.User{}).Where("role = ? AND is_active = ?", models.RoleTechnician, true).Count(&activeTechnicians)

		var totalJobs, pendingJobs, completedToday int64
		database.DB.Model(&models.Job{}).Count(&totalJobs)
		database.DB.Model(&models.Job{}).Where("status = ?", models.JobStatusPending).Count(&pendingJobs)

		todayStart := time.Now().Truncate(24 * time.Hour)
		database.DB.Model(&models.Job{}).
			Where("status = ? AND updated_at >= ?", models.JobStatusCompleted, todayStart).
			Count(&completedToday)

		return c.JSON(fiber.Map{
			"totalTechnicians":  totalTechnicians,
			"activeTechnicians": activeTechnicians,
			"pendingJobs":       pendingJobs,
			"completedJobs":     completedToday,
			"totalJobs":         totalJobs,
		})
	}
}

func ListTechniciansHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var technicians []models.User
		if err := database.DB.Where("role = ?", models.RoleTechnician).Order("username").Find(&technicians).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Error fetching technicians")
		}

		out := make([]TechnicianSummary, 0, len(technicians))
		for _, tech := range technicians {
			var assigned int64
			database.DB.Model(&models.Job{}).Where("technician_id = ?", tech.ID).Count(&assigned)
			out = append(out, TechnicianSummary{
				ID:                tech.ID,
				Username:          tech.Username,
				Email:             tech.Email,
				IsActive:          tech.IsActive,
				LastLogin:         tech.LastLogin,
				AssignedJobsCount: assigned,
				DateJoined:        tech.DateJoined,
			})
		}
		return c.JSON(out)
	}
}

// DeleteTechnicianHandler removes a technician account. Admin only;
// admin and supervisor accounts are never hard-deleted.
func DeleteTechnicianHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid technician id")
		}

		var tech models.User
		if err := database.DB.Where("id = ? AND role = ?", id, models.RoleTechnician).First(&tech).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Technician not found")
		}

		if err := database.DB.Delete(&tech).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Error deleting technician")
		}
		return c.JSON(fiber.Map{"message": "Technician deleted successfully"})
	}
}

// RecentActivityHandler derives an activity feed from the most recently
// updated jobs: completions, starts and assignments.
func RecentActivityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var jobs []models.Job
		err := database.DB.Preload("Technician").
			Order("updated_at DESC").
			Limit(10).
			Find(&jobs).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Error fetching recent activity")
		}

		activities := make([]fiber.Map, 0, len(jobs))
		for i := range jobs {
			job := &jobs[i]
			technician := "Unknown"
			if job.Technician != nil {
				technician = job.Technician.Username
			}

			switch {
			case job.Status == models.JobStatusCompleted:
				activities = append(activities, fiber.Map{
					"id":        fmt.Sprintf("job_completed_%d", job.ID),
					"type":      "job_completed",
					"message":   fmt.Sprintf("Job #%d completed by %s", job.ID, technician),
					"timestamp": job.UpdatedAt,
					"icon":      "CheckCircle",
					"color":     "text-success",
				})
			case job.Status == models.JobStatusInProgress:
				activities = append(activities, fiber.Map{
					"id":        fmt.Sprintf("job_started_%d", job.ID),
					"type":      "job_started",
					"message":   fmt.Sprintf("Job #%d started by %s", job.ID, technician),
					"timestamp": job.UpdatedAt,
					"icon":      "Play",
					"color":     "text-primary",
				})
			case job.TechnicianID != nil:
				activities = append(activities, fiber.Map{
					"id":        fmt.Sprintf("job_assigned_%d", job.ID),
					"type":      "job_assigned",
					"message":   fmt.Sprintf("Job #%d assigned to %s", job.ID, technician),
					"timestamp": job.UpdatedAt,
					"icon":      "UserCheck",
					"color":     "text-accent",
				})
			}
		}
		return c.JSON(activities)
	}
}

type ToggleActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

func ToggleTechnicianActiveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid technician id")
		}

		var tech models.User
		if err := database.DB.Where("id = ? AND role = ?", id, models.RoleTechnician).First(&tech).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Technician not found")
		}

		var body ToggleActiveRequest
		if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		isActive := !tech.IsActive
		if body.IsActive != nil {
			isActive = *body.IsActive
		}
		if err := database.DB.Model(&tech).Update("is_active", isActive).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Error updating technician")
		}

		msg := "Technician deactivated successfully"
		if isActive {
			msg = "Technician activated successfully"
		}
		return c.JSON(fiber.Map{"message": msg, "is_active": isActive})
	}
}
