package jobs

import (
	"testing"
	"time"

	"garage-backend/internal/database"
	"garage-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestJob(t *testing.T, db *gorm.DB, actorID uint) *models.Job {
	t.Helper()
	job := &models.Job{
		CustomerID:         1,
		CustomerName:       "Ali Veli",
		VehicleModel:       "Ford Transit",
		VehiclePlate:       "34 ABC 123",
		VehicleYear:        2019,
		ServiceDescription: "Brake pad replacement",
		EstimatedHours:     2,
		EstimatedCost:      150,
		DueDate:            time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, Create(db, job, actorID))
	return job
}

func newTechnician(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleTechnician,
		Verified:     true,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func historyFor(t *testing.T, db *gorm.DB, jobID uint) []models.JobStatusHistory {
	t.Helper()
	var rows []models.JobStatusHistory
	require.NoError(t, db.Where("job_id = ?", jobID).Order("id").Find(&rows).Error)
	return rows
}

func TestCreateWritesCreationHistoryRow(t *testing.T) {
	db := setupDB(t)
	job := newTestJob(t, db, 1)

	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, models.JobPriorityMedium, job.Priority)

	rows := historyFor(t, db, job.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.JobStatus(""), rows[0].OldStatus)
	assert.Equal(t, models.JobStatusPending, rows[0].NewStatus)
	assert.Equal(t, "Job created", rows[0].Notes)
}

func TestChangeStatusAppendsOneRowPerTransition(t *testing.T) {
	db := setupDB(t)
	job := newTestJob(t, db, 1)
	actor := uint(1)

	require.NoError(t, ChangeStatus(db, job, models.JobStatusInProgress, &actor, "Work started"))
	require.NoError(t, ChangeStatus(db, job, models.JobStatusOnHold, &actor, "Waiting for parts"))
	require.NoError(t, ChangeStatus(db, job, models.JobStatusInProgress, &actor, "Parts arrived"))
	require.NoError(t, ChangeStatus(db, job, models.JobStatusCompleted, &actor, ""))

	rows := historyFor(t, db, job.ID)
	require.Len(t, rows, 5) // creation + four transitions
	assert.Equal(t, models.JobStatusInProgress, rows[1].NewStatus)
	assert.Equal(t, models.JobStatusInProgress, rows[2].OldStatus)
	assert.Equal(t, models.JobStatusOnHold, rows[2].NewStatus)
	assert.Equal(t, models.JobStatusCompleted, rows[4].NewStatus)
}

func TestFirstEntryTimestampsSetOnce(t *testing.T) {
	db := setupDB(t)
	job := newTestJob(t, db, 1)
	actor := uint(1)

	require.NoError(t, ChangeStatus(db, job, models.JobStatusInProgress, &actor, ""))
	require.NotNil(t, job.StartedAt)
	firstStart := *job.StartedAt

	require.NoError(t, ChangeStatus(db, job, models.JobStatusOnHold, &actor, ""))
	require.NoError(t, ChangeStatus(db, job, models.JobStatusInProgress, &actor, ""))
	assert.Equal(t, firstStart, *job.StartedAt)

	require.NoError(t, ChangeStatus(db, job, models.JobStatusCompleted, &actor, ""))
	require.NotNil(t, job.CompletedAt)
	firstComplete := *job.CompletedAt

	// reopening and completing again must not move completed_at
	require.NoError(t, ChangeStatus(db, job, models.JobStatusInProgress, &actor, "Reopened"))
	require.NoError(t, ChangeStatus(db, job, models.JobStatusCompleted, &actor, ""))
	assert.Equal(t, firstComplete, *job.CompletedAt)
}

func TestAnyTransitionIsAllowed(t *testing.T) {
	db := setupDB(t)
	job := newTestJob(t, db, 1)
	actor := uint(1)

	// completed straight back to pending is legal
	require.NoError(t, ChangeStatus(db, job, models.JobStatusCompleted, &actor, ""))
	require.NoError(t, ChangeStatus(db, job, models.JobStatusPending, &actor, ""))
	assert.Equal(t, models.JobStatusPending, job.Status)
}

func TestAssignAndUnassign(t *testing.T) {
	db := setupDB(t)
	job := newTestJob(t, db, 1)
	tech := newTechnician(t, db, "ayse")

	require.NoError(t, Assign(db, job, tech, 1))
	require.NotNil(t, job.TechnicianID)
	assert.Equal(t, tech.ID, *job.TechnicianID)

	require.NoError(t, Unassign(db, job, 1))
	assert.Nil(t, job.TechnicianID)

	var reloaded models.Job
	require.NoError(t, db.First(&reloaded, job.ID).Error)
	assert.Nil(t, reloaded.TechnicianID)

	rows := historyFor(t, db, job.ID)
	require.Len(t, rows, 3)
	assert.Equal(t, "Job assigned to ayse", rows[1].Notes)
	assert.Equal(t, "Job unassigned", rows[2].Notes)
}

func TestReassignRecordsBothRows(t *testing.T) {
	db := setupDB(t)
	job := newTestJob(t, db, 1)
	from := newTechnician(t, db, "ayse")
	to := newTechnician(t, db, "mehmet")

	require.NoError(t, Assign(db, job, from, 1))
	require.NoError(t, Reassign(db, job, from, to, 1, "Workload balancing"))

	require.NotNil(t, job.TechnicianID)
	assert.Equal(t, to.ID, *job.TechnicianID)

	var reassignments []models.JobReassignment
	require.NoError(t, db.Where("job_id = ?", job.ID).Find(&reassignments).Error)
	require.Len(t, reassignments, 1)
	require.NotNil(t, reassignments[0].FromTechnicianID)
	assert.Equal(t, from.ID, *reassignments[0].FromTechnicianID)
	assert.Equal(t, to.ID, reassignments[0].ToTechnicianID)
	assert.Equal(t, "Workload balancing", reassignments[0].Reason)

	rows := historyFor(t, db, job.ID)
	assert.Equal(t, "Job reassigned from ayse to mehmet", rows[len(rows)-1].Notes)
}

func TestReassignFromUnassigned(t *testing.T) {
	db := setupDB(t)
	job := newTestJob(t, db, 1)
	to := newTechnician(t, db, "mehmet")

	require.NoError(t, Reassign(db, job, nil, to, 1, ""))

	var reassignments []models.JobReassignment
	require.NoError(t, db.Where("job_id = ?", job.ID).Find(&reassignments).Error)
	require.Len(t, reassignments, 1)
	assert.Nil(t, reassignments[0].FromTechnicianID)

	rows := historyFor(t, db, job.ID)
	assert.Equal(t, "Job reassigned from unassigned to mehmet", rows[len(rows)-1].Notes)
}
