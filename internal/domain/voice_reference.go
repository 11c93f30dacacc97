package domain

import (
	"strings"
	"time"
)

// BuiltinVoicePrefix marks an S3Path as a sentinel referring to an
// engine-built-in speaker rather than an uploaded reference clip.
const BuiltinVoicePrefix = "builtin://"

// VoiceReference names an uploaded clip or a built-in speaker handle.
type VoiceReference struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	OwnerID   string    `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	S3Path    string    `gorm:"column:s3_path;not null" json:"s3_path"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (VoiceReference) TableName() string { return "voice_reference" }

// IsBuiltin reports whether this reference points at an engine-built-in
// speaker rather than an uploaded clip.
func (v *VoiceReference) IsBuiltin() bool {
	return strings.HasPrefix(v.S3Path, BuiltinVoicePrefix)
}

// BuiltinID extracts the speaker handle from a builtin:// sentinel path.
// Returns "" if S3Path is not a builtin sentinel.
func (v *VoiceReference) BuiltinID() string {
	if !v.IsBuiltin() {
		return ""
	}
	return strings.TrimPrefix(v.S3Path, BuiltinVoicePrefix)
}
