package models

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
	JobStatusOnHold     JobStatus = "on_hold"
)

type JobPriority string

const (
	JobPriorityLow    JobPriority = "Low"
	JobPriorityMedium JobPriority = "Medium"
	JobPriorityHigh   JobPriority = "High"
)

type Job struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	CustomerID   uint     `gorm:"index;not null" json:"customer_id"`
	Customer     Customer `json:"customer"`
	CustomerName string   `gorm:"size:200" json:"customer_name"`     // denormalized for list views

	VehicleModel string `gorm:"size:200;not null" json:"vehicle_model"`
	VehiclePlate string `gorm:"size:50;not null" json:"vehicle_plate"`
	VehicleYear  int    `gorm:"not null" json:"vehicle_year"`

	ServiceDescription string   `gorm:"type:text;not null" json:"service_description"`
	EstimatedHours     float64  `gorm:"not null" json:"estimated_hours"`
	EstimatedCost      float64  `gorm:"not null" json:"estimated_cost"`
	ActualHours        *float64 `json:"actual_hours"`
	ActualCost         *float64 `json:"actual_cost"`

	TechnicianID *uint       `gorm:"index" json:"technician_id"`
	Technician   *User       `json:"technician"`
	Priority     JobPriority `gorm:"size:10;not null;default:Medium" json:"priority"`
	Status       JobStatus   `gorm:"size:20;index;not null;default:pending" json:"status"`
	DueDate      time.Time   `gorm:"not null" json:"due_date"`
	Notes        string      `gorm:"type:text" json:"notes"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at"`   // set once, first entry into in_progress
	CompletedAt *time.Time `json:"completed_at"` // set once, first entry into completed
}

// JobStatusHistory: append-only audit trail, one row per transition.
// OldStatus is empty for the synthetic creation transition.
type JobStatusHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	JobID       uint      `gorm:"index;not null" json:"job_id"`
	OldStatus   JobStatus `gorm:"size:20" json:"old_status"`
	NewStatus   JobStatus `gorm:"size:20;not null" json:"new_status"`
	ChangedByID *uint     `json:"changed_by_id"`
	ChangedBy   *User     `json:"changed_by"`
	ChangedAt   time.Time `json:"changed_at"`
	Notes       string    `gorm:"type:text" json:"notes"`
}

type JobReassignment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	JobID            uint      `gorm:"index;not null" json:"job_id"`
	FromTechnicianID *uint     `json:"from_technician_id"`
	ToTechnicianID   uint      `gorm:"not null" json:"to_technician_id"`
	ReassignedByID   uint      `gorm:"not null" json:"reassigned_by_id"`
	Reason           string    `gorm:"type:text" json:"reason"`
	ReassignedAt     time.Time `json:"reassigned_at"`
}

type JobPart struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	JobID        uint      `gorm:"index;not null" json:"job_id"`
	PartNumber   string    `gorm:"size:100;not null" json:"part_number"`
	PartName     string    `gorm:"size:255;not null" json:"part_name"`
	QuantityUsed int       `gorm:"not null" json:"quantity_used"`
	UnitCost     float64   `gorm:"not null" json:"unit_cost"`
	TotalCost    float64   `gorm:"not null" json:"total_cost"`
	AddedAt      time.Time `gorm:"autoCreateTime" json:"added_at"`
}

type JobProgress struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	JobID              uint      `gorm:"index;not null" json:"job_id"`
	TechnicianID       uint      `gorm:"not null" json:"technician_id"`
	ProgressPercentage int       `gorm:"not null;default:0" json:"progress_percentage"` // 0-100
	Description        string    `gorm:"type:text;not null" json:"description"`
	CreatedAt          time.Time `json:"created_at"`
}

type PartsRequestStatus string

const (
	PartsRequestPending   PartsRequestStatus = "pending"
	PartsRequestApproved  PartsRequestStatus = "approved"
	PartsRequestRejected  PartsRequestStatus = "rejected"
	PartsRequestFulfilled PartsRequestStatus = "fulfilled"
)

type PartsRequest struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	JobID             uint               `gorm:"index;not null" json:"job_id"`
	TechnicianID      uint               `gorm:"not null" json:"technician_id"`
	PartNumber        string             `gorm:"size:100;not null" json:"part_number"`
	PartName          string             `gorm:"size:255;not null" json:"part_name"`
	QuantityRequested int                `gorm:"not null" json:"quantity_requested"`
	Reason            string             `gorm:"type:text" json:"reason"`
	Status            PartsRequestStatus `gorm:"size:20;not null;default:pending" json:"status"`
	RequestedAt       time.Time          `gorm:"autoCreateTime" json:"requested_at"`
	ApprovedByID      *uint              `json:"approved_by_id"`
	ApprovedAt        *time.Time         `json:"approved_at"`
}

type TechnicianMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	JobID       uint      `gorm:"index;not null" json:"job_id"`
	SenderID    uint      `gorm:"not null" json:"sender_id"`
	Sender      User      `json:"sender"`
	RecipientID uint      `gorm:"index;not null" json:"recipient_id"`
	Recipient   User      `json:"recipient"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	SentAt      time.Time `gorm:"autoCreateTime" json:"sent_at"`
}
