package domain

import "time"

// Task kinds.
const (
	TaskKindDecompose  = "decompose"
	TaskKindSynthesize = "synthesize"
	TaskKindAssemble   = "assemble"
)

// Task statuses.
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
	TaskStatusCancelled = "cancelled"
)

// TaskTerminalStatuses mirrors JobTerminalStatuses for the task status domain.
var TaskTerminalStatuses = map[string]bool{
	TaskStatusCompleted: true,
	TaskStatusFailed:    true,
	TaskStatusCancelled: true,
}

// Task is a child unit of work belonging to exactly one Job. Multiple tasks
// per job are independently trackable; a synthesize task carries a 1-based
// SlideIndex, decompose/assemble tasks leave it nil.
type Task struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID       uint64     `gorm:"column:job_id;not null;index" json:"job_id"`
	Kind        string     `gorm:"column:kind;not null;index" json:"kind"`
	SlideIndex  *int       `gorm:"column:slide_index" json:"slide_index,omitempty"`
	ExternalID  string     `gorm:"column:external_id" json:"external_id,omitempty"`
	Status      string     `gorm:"column:status;not null;index" json:"status"`
	Progress    string     `gorm:"column:progress" json:"progress,omitempty"`
	Error       string     `gorm:"column:error" json:"error,omitempty"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Task) TableName() string { return "task" }

// IsTerminal reports whether status is one of the three absorbing task states.
func (t *Task) IsTerminal() bool {
	if t == nil {
		return false
	}
	return TaskTerminalStatuses[t.Status]
}
