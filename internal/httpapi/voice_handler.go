package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/httpapi/response"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
)

// VoiceHandler registers VoiceReference rows: either a builtin:// speaker
// sentinel or a pointer at a clip the caller already uploaded to the
// voice-clones bucket.
type VoiceHandler struct {
	voices repos.VoiceRepo
}

func NewVoiceHandler(voices repos.VoiceRepo) *VoiceHandler {
	return &VoiceHandler{voices: voices}
}

type createVoiceRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	S3Path  string `json:"s3_path" binding:"required"`
}

// POST /voice-references
func (h *VoiceHandler) Create(c *gin.Context) {
	var req createVoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	v := &domain.VoiceReference{
		ID:      uuid.NewString(),
		OwnerID: req.OwnerID,
		Name:    req.Name,
		S3Path:  req.S3Path,
	}
	created, err := h.voices.Create(dbctx.Context{Ctx: c.Request.Context()}, v)
	if err != nil {
		response.Err(c, http.StatusInternalServerError, "create_voice_reference_failed", err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"voice_reference": created})
}
