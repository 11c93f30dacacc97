package domain

import (
	"time"

	"gorm.io/gorm"
)

// Job statuses form the DAG pending -> decomposing -> synthesizing -> assembling -> completed,
// with failed/cancelled reachable from any non-terminal state.
const (
	JobStatusPending      = "pending"
	JobStatusDecomposing  = "decomposing"
	JobStatusSynthesizing = "synthesizing"
	JobStatusAssembling   = "assembling"
	JobStatusCompleted    = "completed"
	JobStatusFailed       = "failed"
	JobStatusCancelled    = "cancelled"
)

// JobTerminalStatuses are absorbing; a write attempting to leave one is rejected.
var JobTerminalStatuses = map[string]bool{
	JobStatusCompleted: true,
	JobStatusFailed:    true,
	JobStatusCancelled: true,
}

// Job is the unit submitted by a client: a slide deck plus a voice reference
// to be rendered into a narrated video.
type Job struct {
	ID                uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID           string         `gorm:"column:owner_id;not null;index" json:"owner_id"`
	VoiceRefID        string         `gorm:"column:voice_ref_id;not null" json:"voice_ref_id"`
	SourceArtifactKey string         `gorm:"column:source_artifact_key;not null" json:"source_artifact_key"`
	ResultArtifactKey *string        `gorm:"column:result_artifact_key" json:"result_artifact_key,omitempty"`
	Status            string         `gorm:"column:status;not null;index" json:"status"`
	Stage             string         `gorm:"column:stage;not null" json:"stage"`
	SlideCount        *int           `gorm:"column:slide_count" json:"slide_count,omitempty"`
	Error             string         `gorm:"column:error" json:"error,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Job) TableName() string { return "job" }

// IsTerminal reports whether status is one of the three absorbing states.
func (j *Job) IsTerminal() bool {
	if j == nil {
		return false
	}
	return JobTerminalStatuses[j.Status]
}
