package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusError      StepStatus = "error"
	StepStatusSkipped    StepStatus = "skipped"
)

// ClosingRun walks a fiscal year through the closing checklist. Cursor
// is the sequence number of the next step allowed to execute.
type ClosingRun struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	CompanyID    snowflake.ID  `gorm:"not null;index" json:"company_id"`
	FiscalYearID snowflake.ID  `gorm:"not null;index" json:"fiscal_year_id"`
	Status       RunStatus     `gorm:"type:text;not null" json:"status"`
	Cursor       int           `gorm:"not null;default:0" json:"cursor"`
	Steps        []ClosingStep `gorm:"foreignKey:RunID" json:"steps"`
	StartedAt    time.Time     `gorm:"not null" json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ClosingRun) TableName() string { return "closing_runs" }

type ClosingStep struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	RunID       snowflake.ID `gorm:"not null;index" json:"run_id"`
	Seq         int          `gorm:"not null" json:"seq"`
	Code        string       `gorm:"type:text;not null" json:"code"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Required    bool         `gorm:"not null" json:"required"`
	Status      StepStatus   `gorm:"type:text;not null;default:pending" json:"status"`
	Error       string       `gorm:"type:text" json:"error,omitempty"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

func (ClosingStep) TableName() string { return "closing_steps" }

var (
	ErrRunNotFound     = errors.New("closing_run_not_found")
	ErrRunActive       = errors.New("closing_run_already_active")
	ErrRunLocked       = errors.New("closing_run_locked")
	ErrRunNotRunning   = errors.New("closing_run_not_running")
	ErrStepNotFound    = errors.New("closing_step_not_found")
	ErrStepOutOfOrder  = errors.New("closing_step_out_of_order")
	ErrStepInProgress  = errors.New("closing_step_in_progress")
	ErrStepRequired    = errors.New("closing_step_required")
	ErrStepDone        = errors.New("closing_step_already_done")
	ErrUnknownStepCode = errors.New("closing_step_code_unknown")
	ErrEmptyChecklist  = errors.New("closing_checklist_empty")
)
