package jobs

import (
	"time"

	"garage-backend/internal/auth"
	"garage-backend/internal/database"
	"garage-backend/internal/models"
	"garage-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreateJobRequest struct {
	CustomerID         uint    `json:"customer_id" validate:"required"`
	VehicleModel       string  `json:"vehicle_model" validate:"required,max=200"`
	VehiclePlate       string  `json:"vehicle_plate" validate:"required,max=50"`
	VehicleYear        int     `json:"vehicle_year" validate:"required,gte=1900"`
	ServiceDescription string  `json:"service_description" validate:"required"`
	EstimatedHours     float64 `json:"estimated_hours" validate:"gte=0"`
	EstimatedCost      float64 `json:"estimated_cost" validate:"gte=0"`
	TechnicianID       *uint   `json:"technician_id"`
	Priority           string  `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Status             string  `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled on_hold"`
	DueDate            string  `json:"due_date" validate:"required"` // "2006-01-02"
	Notes              string  `json:"notes"`
}

type UpdateJobRequest struct {
	VehicleModel       *string  `json:"vehicle_model"`
	VehiclePlate       *string  `json:"vehicle_plate"`
	VehicleYear        *int     `json:"vehicle_year"`
	ServiceDescription *string  `json:"service_description"`
	EstimatedHours     *float64 `json:"estimated_hours"`
	EstimatedCost      *float64 `json:"estimated_cost"`
	ActualHours        *float64 `json:"actual_hours"`
	ActualCost         *float64 `json:"actual_cost"`
	Priority           *string  `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Status             *string  `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled on_hold"`
	DueDate            *string  `json:"due_date"`
	Notes              *string  `json:"notes"`
}

func ListJobsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Preload("Customer").Preload("Technician").Model(&models.Job{})

		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if priority := c.Query("priority"); priority != "" {
			q = q.Where("priority = ?", priority)
		}
		if technician := c.Query("technician"); technician != "" {
			q = q.Where("technician_id = ?", technician)
		}
		if customer := c.Query("customer"); customer != "" {
			q = q.Where("customer_id = ?", customer)
		}
		if search := c.Query("search"); search != "" {
			like := "%" + search + "%"
			q = q.Where("customer_name ILIKE ? OR vehicle_model ILIKE ? OR vehicle_plate ILIKE ? OR service_description ILIKE ?", like, like, like, like)
		}

		var jobs []models.Job
		if err := q.Order("created_at DESC").Find(&jobs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch jobs")
		}
		return c.JSON(jobs)
	}
}

func CreateJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, ok := auth.CurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Could not resolve user")
		}

		var body CreateJobRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		var customer models.Customer
		if err := database.DB.First(&customer, body.CustomerID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}

		dueDate, err := time.Parse("2006-01-02", body.DueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "due_date must be YYYY-MM-DD")
		}

		if body.TechnicianID != nil {
			var count int64
			database.DB.Model(&models.User{}).
				Where("id = ? AND role = ?", *body.TechnicianID, models.RoleTechnician).
				Count(&count)
			if count == 0 {
				return fiber.NewError(fiber.StatusNotFound, "Technician not found")
			}
		}

		job := models.Job{
			CustomerID:         customer.ID,
			CustomerName:       customer.Name,
			VehicleModel:       body.VehicleModel,
			VehiclePlate:       body.VehiclePlate,
			VehicleYear:        body.VehicleYear,
			ServiceDescription: body.ServiceDescription,
			EstimatedHours:     body.EstimatedHours,
			EstimatedCost:      body.EstimatedCost,
			TechnicianID:       body.TechnicianID,
			Priority:           models.JobPriority(body.Priority),
			Status:             models.JobStatus(body.Status),
			DueDate:            dueDate,
			Notes:              body.Notes,
		}
		if err := Create(database.DB, &job, actorID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create job")
		}
		return c.Status(fiber.StatusCreated).JSON(job)
	}
}

func GetJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid job id")
		}
		var job models.Job
		err = database.DB.Preload("Customer").Preload("Technician").First(&job, id).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Job not found")
		}

		var parts []models.JobPart
		database.DB.Where("job_id = ?", job.ID).Order("added_at DESC").Find(&parts)
		var history []models.JobStatusHistory
		database.DB.Preload("ChangedBy").Where("job_id = ?", job.ID).Order("changed_at DESC").Find(&history)

		return c.JSON(fiber.Map{
			"job":            job,
			"parts_used":     parts,
			"status_history": history,
		})
	}
}

// UpdateJobHandler applies a general field update. A status change rides
// through the lifecycle service so the timestamp side effects and the
// audit row stay consistent with the dedicated status endpoint.
func UpdateJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}

		var body UpdateJobRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		if body.VehicleModel != nil {
			job.VehicleModel = *body.VehicleModel
		}
		if body.VehiclePlate != nil {
			job.VehiclePlate = *body.VehiclePlate
		}
		if body.VehicleYear != nil {
			job.VehicleYear = *body.VehicleYear
		}
		if body.ServiceDescription != nil {
			job.ServiceDescription = *body.ServiceDescription
		}
		if body.EstimatedHours != nil {
			job.EstimatedHours = *body.EstimatedHours
		}
		if body.EstimatedCost != nil {
			job.EstimatedCost = *body.EstimatedCost
		}
		if body.ActualHours != nil {
			job.ActualHours = body.ActualHours
		}
		if body.ActualCost != nil {
			job.ActualCost = body.ActualCost
		}
		if body.Priority != nil {
			job.Priority = models.JobPriority(*body.Priority)
		}
		if body.DueDate != nil {
			dueDate, err := time.Parse("2006-01-02", *body.DueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "due_date must be YYYY-MM-DD")
			}
			job.DueDate = dueDate
		}
		if body.Notes != nil {
			job.Notes = *body.Notes
		}

		if body.Status != nil && models.JobStatus(*body.Status) != job.Status {
			actorID, _ := auth.CurrentUserID(c)
			if err := ChangeStatus(database.DB, job, models.JobStatus(*body.Status), &actorID, "Updated via job edit"); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not update job")
			}
		} else if err := database.DB.Save(job).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update job")
		}
		return c.JSON(job)
	}
}

func DeleteJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}
		if err := database.DB.Delete(job).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete job")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed cancelled on_hold"`
	Notes  string `json:"notes"`
}

func UpdateJobStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}

		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		actorID, _ := auth.CurrentUserID(c)
		if err := ChangeStatus(database.DB, job, models.JobStatus(body.Status), &actorID, body.Notes); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update status")
		}
		return c.JSON(job)
	}
}

type AssignRequest struct {
	TechnicianID uint   `json:"technician_id" validate:"required"`
	Reason       string `json:"reason"`
}

func AssignJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}
		actorID, _ := auth.CurrentUserID(c)

		var body AssignRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		technician, err := findTechnician(body.TechnicianID)
		if err != nil {
			return err
		}
		if err := Assign(database.DB, job, technician, actorID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not assign job")
		}
		return c.JSON(fiber.Map{"message": "Job assigned successfully"})
	}
}

func ReassignJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}
		actorID, _ := auth.CurrentUserID(c)

		var body AssignRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		technician, err := findTechnician(body.TechnicianID)
		if err != nil {
			return err
		}

		var from *models.User
		if job.TechnicianID != nil {
			var prev models.User
			if err := database.DB.First(&prev, *job.TechnicianID).Error; err == nil {
				from = &prev
			}
		}

		if err := Reassign(database.DB, job, from, technician, actorID, body.Reason); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reassign job")
		}
		return c.JSON(fiber.Map{"message": "Job reassigned successfully"})
	}
}

func UnassignJobHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}
		actorID, _ := auth.CurrentUserID(c)

		if err := Unassign(database.DB, job, actorID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not unassign job")
		}
		return c.JSON(fiber.Map{"message": "Job unassigned successfully"})
	}
}

func JobStatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var total int64
		database.DB.Model(&models.Job{}).Count(&total)

		statusBreakdown := map[string]int64{}
		for _, status := range []models.JobStatus{
			models.JobStatusPending, models.JobStatusInProgress, models.JobStatusCompleted,
			models.JobStatusCancelled, models.JobStatusOnHold,
		} {
			var count int64
			database.DB.Model(&models.Job{}).Where("status = ?", status).Count(&count)
			statusBreakdown[string(status)] = count
		}

		priorityBreakdown := map[string]int64{}
		for _, priority := range []models.JobPriority{models.JobPriorityLow, models.JobPriorityMedium, models.JobPriorityHigh} {
			var count int64
			database.DB.Model(&models.Job{}).Where("priority = ?", priority).Count(&count)
			priorityBreakdown[string(priority)] = count
		}

		open := []models.JobStatus{models.JobStatusPending, models.JobStatusInProgress}
		today := time.Now().Truncate(24 * time.Hour)
		weekEnd := today.AddDate(0, 0, 7)
		weekAgo := time.Now().AddDate(0, 0, -7)

		var overdue, dueThisWeek, recent int64
		database.DB.Model(&models.Job{}).Where("due_date < ? AND status IN ?", today, open).Count(&overdue)
		database.DB.Model(&models.Job{}).Where("due_date >= ? AND due_date <= ? AND status IN ?", today, weekEnd, open).Count(&dueThisWeek)
		database.DB.Model(&models.Job{}).Where("created_at >= ?", weekAgo).Count(&recent)

		return c.JSON(fiber.Map{
			"total_jobs":         total,
			"status_breakdown":   statusBreakdown,
			"priority_breakdown": priorityBreakdown,
			"overdue_jobs":       overdue,
			"due_this_week":      dueThisWeek,
			"recent_jobs":        recent,
		})
	}
}

func CustomerJobsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("customer_id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid customer id")
		}
		var jobs []models.Job
		if err := database.DB.Where("customer_id = ?", id).Order("created_at DESC").Find(&jobs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch jobs")
		}
		return c.JSON(jobs)
	}
}

func TechnicianJobsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("technician_id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid technician id")
		}
		var jobs []models.Job
		if err := database.DB.Where("technician_id = ?", id).Order("created_at DESC").Find(&jobs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch jobs")
		}
		return c.JSON(jobs)
	}
}

func AvailableTechniciansHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var technicians []models.User
		err := database.DB.
			Select("id", "username", "email").
			Where("role = ? AND is_active = ?", models.RoleTechnician, true).
			Order("username").
			Find(&technicians).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch technicians")
		}
		return c.JSON(technicians)
	}
}

func AvailableCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customers []models.Customer
		if err := database.DB.Select("id", "name", "phone", "email").Order("name").Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch customers")
		}
		return c.JSON(customers)
	}
}

type AddJobPartRequest struct {
	PartNumber   string  `json:"part_number" validate:"required"`
	PartName     string  `json:"part_name" validate:"required"`
	QuantityUsed int     `json:"quantity_used" validate:"required,gt=0"`
	UnitCost     float64 `json:"unit_cost" validate:"gte=0"`
}

func AddJobPartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}

		var body AddJobPartRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		part := models.JobPart{
			JobID:        job.ID,
			PartNumber:   body.PartNumber,
			PartName:     body.PartName,
			QuantityUsed: body.QuantityUsed,
			UnitCost:     body.UnitCost,
			TotalCost:    float64(body.QuantityUsed) * body.UnitCost,
		}
		if err := database.DB.Create(&part).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not add part")
		}
		return c.Status(fiber.StatusCreated).JSON(part)
	}
}

func ListJobPartsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := findJob(c)
		if err != nil {
			return err
		}
		var parts []models.JobPart
		if err := database.DB.Where("job_id = ?", job.ID).Order("added_at DESC").Find(&parts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch parts")
		}
		return c.JSON(parts)
	}
}

func findJob(c *fiber.Ctx) (*models.Job, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid job id")
	}
	var job models.Job
	if err := database.DB.First(&job, id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Job not found")
	}
	return &job, nil
}

func findTechnician(id uint) (*models.User, error) {
	var technician models.User
	err := database.DB.Where("id = ? AND role = ?", id, models.RoleTechnician).First(&technician).Error
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Technician not found")
	}
	return &technician, nil
}
