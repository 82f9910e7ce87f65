package jobs

import (
	"fmt"
	"time"

	"garage-backend/internal/models"

	"gorm.io/gorm"
)

// Create persists a new job together with its synthetic creation
// transition (old status empty) in one transaction, so every job's audit
// trail starts at row one.
func Create(db *gorm.DB, job *models.Job, actorID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if job.Status == "" {
			job.Status = models.JobStatusPending
		}
		if job.Priority == "" {
			job.Priority = models.JobPriorityMedium
		}
		if err := tx.Create(job).Error; err != nil {
			return err
		}
		return writeHistory(tx, job.ID, "", job.Status, &actorID, "Job created")
	})
}

// ChangeStatus moves a job to newStatus and appends exactly one history
// row. Any status may move to any other; the only side effects are the
// first-entry timestamps: started_at on the first in_progress, completed_at
// on the first completed. Neither is ever overwritten.
func ChangeStatus(db *gorm.DB, job *models.Job, newStatus models.JobStatus, actorID *uint, notes string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		oldStatus := job.Status
		job.Status = newStatus

		now := time.Now()
		if newStatus == models.JobStatusInProgress && job.StartedAt == nil {
			job.StartedAt = &now
		}
		if newStatus == models.JobStatusCompleted && job.CompletedAt == nil {
			job.CompletedAt = &now
		}

		if err := tx.Save(job).Error; err != nil {
			return err
		}
		return writeHistory(tx, job.ID, oldStatus, newStatus, actorID, notes)
	})
}

// Assign sets the technician on an unassigned job (or replaces it
// without the reassignment bookkeeping) and notes the change in the
// audit trail.
func Assign(db *gorm.DB, job *models.Job, technician *models.User, actorID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		job.TechnicianID = &technician.ID
		if err := tx.Save(job).Error; err != nil {
			return err
		}
		note := fmt.Sprintf("Job assigned to %s", technician.Username)
		return writeHistory(tx, job.ID, job.Status, job.Status, &actorID, note)
	})
}

// Unassign clears the technician and notes it in the audit trail.
func Unassign(db *gorm.DB, job *models.Job, actorID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		job.TechnicianID = nil
		if err := tx.Model(job).Update("technician_id", nil).Error; err != nil {
			return err
		}
		return writeHistory(tx, job.ID, job.Status, job.Status, &actorID, "Job unassigned")
	})
}

// Reassign moves a job between technicians. It records a dedicated
// JobReassignment row plus a prose history row, both in the same
// transaction as the technician change.
func Reassign(db *gorm.DB, job *models.Job, from *models.User, to *models.User, actorID uint, reason string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var fromID *uint
		fromName := "unassigned"
		if from != nil {
			fromID = &from.ID
			fromName = from.Username
		}

		reassignment := models.JobReassignment{
			JobID:            job.ID,
			FromTechnicianID: fromID,
			ToTechnicianID:   to.ID,
			ReassignedByID:   actorID,
			Reason:           reason,
			ReassignedAt:     time.Now(),
		}
		if err := tx.Create(&reassignment).Error; err != nil {
			return err
		}

		job.TechnicianID = &to.ID
		if err := tx.Save(job).Error; err != nil {
			return err
		}

		note := fmt.Sprintf("Job reassigned from %s to %s", fromName, to.Username)
		return writeHistory(tx, job.ID, job.Status, job.Status, &actorID, note)
	})
}

func writeHistory(tx *gorm.DB, jobID uint, oldStatus, newStatus models.JobStatus, actorID *uint, notes string) error {
	return tx.Create(&models.JobStatusHistory{
		JobID:       jobID,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		ChangedByID: actorID,
		ChangedAt:   time.Now(),
		Notes:       notes,
	}).Error
}
