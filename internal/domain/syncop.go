package domain

import (
	"encoding/json"
	"time"
)

type OperationKind string

const (
	OpModuleProgress OperationKind = "ModuleProgress"
	OpDrillResult    OperationKind = "DrillResult"
	OpQuizResult     OperationKind = "QuizResult"
	OpUserProfile    OperationKind = "UserProfile"
	OpAlertView      OperationKind = "AlertView"
	OpContactAccess  OperationKind = "ContactAccess"
)

// SyncOperation is one queued state change awaiting confirmation by the
// server. IDs are generated on the device at enqueue time.
type SyncOperation struct {
	ID            string          `json:"id"`
	Kind          OperationKind   `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	RetryCount    int             `json:"retry_count"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// Kind-specific payloads carried inside SyncOperation.Payload.

type ModuleProgressPayload struct {
	ModuleID    string `json:"module_id"`
	LessonID    string `json:"lesson_id,omitempty"`
	Action      string `json:"action"` // downloaded, progress, lesson_completed, completed
	Progress    int    `json:"progress"`
	IsCompleted bool   `json:"is_completed"`
	TimeSpent   int    `json:"time_spent"`
}

type DrillResultPayload struct {
	ClientKey string `json:"client_key"`
	DrillID   string `json:"drill_id"`
	Score     int    `json:"score"`
	MaxScore  int    `json:"max_score"`
	TimeSpent int    `json:"time_spent"`
}

type QuizResultPayload struct {
	ClientKey string `json:"client_key"`
	QuizID    string `json:"quiz_id"`
	Score     int    `json:"score"`
	MaxScore  int    `json:"max_score"`
}

type UserProfilePayload struct {
	DisplayName      string `json:"display_name"`
	Region           string `json:"region"`
	HouseholdSize    int    `json:"household_size"`
	PreferredHazards string `json:"preferred_hazards"`
	NotificationsOn  bool   `json:"notifications_on"`
	AutoSyncEnabled  bool   `json:"auto_sync_enabled"`
}

type AlertViewPayload struct {
	AlertID  string    `json:"alert_id"`
	ViewedAt time.Time `json:"viewed_at"`
}

type ContactAccessPayload struct {
	ContactID  string    `json:"contact_id"`
	IsFavorite bool      `json:"is_favorite"`
	AccessedAt time.Time `json:"accessed_at"`
}

// SyncError records why a single operation failed during a drain.
type SyncError struct {
	OperationID string        `json:"operation_id"`
	Kind        OperationKind `json:"kind"`
	Message     string        `json:"message"`
	Dropped     bool          `json:"dropped"` // retry budget exhausted, operation discarded
}

// SyncResult summarizes one queue drain.
type SyncResult struct {
	Success   bool        `json:"success"`
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	Errors    []SyncError `json:"errors,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SyncStatus is the at-a-glance state the UI reads for the offline indicator.
type SyncStatus struct {
	Online     bool       `json:"online"`
	InProgress bool       `json:"in_progress"`
	Pending    int        `json:"pending"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
}

// ApplyOperationsRequest is the server-side sync ingestion contract: a device
// posts a batch of queued operations and gets a per-operation verdict back.
type ApplyOperationsRequest struct {
	DeviceID   string          `json:"device_id" validate:"required,uuid"`
	Operations []SyncOperation `json:"operations" validate:"required,min=1,max=10,dive"`
}

type OperationResult struct {
	OperationID string `json:"operation_id"`
	Applied     bool   `json:"applied"`
	Error       string `json:"error,omitempty"`
}

type ApplyOperationsResponse struct {
	Results  []OperationResult `json:"results"`
	SyncTime time.Time         `json:"sync_time"`
}
