package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/httpapi/response"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/cancel"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/dispatcher"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/queue"
)

// JobHandler is the thin ingestion/status/cancel surface the spec
// describes as out-of-core: it creates Job rows, dispatches the decompose
// workflow, and reports status, deferring everything domain-specific to
// C1–C6.
type JobHandler struct {
	jobs   repos.JobRepo
	broker queue.Broker
	cancel *cancel.Service
}

func NewJobHandler(jobs repos.JobRepo, broker queue.Broker, cancelSvc *cancel.Service) *JobHandler {
	return &JobHandler{jobs: jobs, broker: broker, cancel: cancelSvc}
}

type createJobRequest struct {
	OwnerID           string `json:"owner_id" binding:"required"`
	VoiceRefID        string `json:"voice_ref_id" binding:"required"`
	SourceArtifactKey string `json:"source_artifact_key" binding:"required"`
}

// POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	job, err := h.jobs.CreateJob(dbctx.Context{Ctx: c.Request.Context()}, req.OwnerID, req.VoiceRefID, req.SourceArtifactKey)
	if err != nil {
		response.Err(c, http.StatusInternalServerError, "create_job_failed", err)
		return
	}

	dispatchID := fmt.Sprintf("job-%d-decompose", job.ID)
	if _, err := h.broker.Enqueue(c.Request.Context(), queue.QueueCPU, "DecomposeWorkflow", dispatcher.Payload{JobID: job.ID}, dispatchID); err != nil {
		response.Err(c, http.StatusInternalServerError, "enqueue_decompose_failed", err)
		return
	}

	response.OK(c, http.StatusAccepted, gin.H{"job": job})
}

// GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := parseJobID(c)
	if err != nil {
		response.Err(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.jobs.GetJob(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.Err(c, http.StatusInternalServerError, "get_job_failed", err)
		return
	}
	if job == nil {
		response.Err(c, http.StatusNotFound, "job_not_found", fmt.Errorf("job %d not found", id))
		return
	}
	response.OK(c, http.StatusOK, gin.H{"job": job})
}

// POST /jobs/:id/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	id, err := parseJobID(c)
	if err != nil {
		response.Err(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	ok, err := h.cancel.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Err(c, http.StatusInternalServerError, "cancel_job_failed", err)
		return
	}
	if !ok {
		response.Err(c, http.StatusConflict, "job_already_terminal", fmt.Errorf("job %d is already in a terminal state", id))
		return
	}
	response.OK(c, http.StatusOK, gin.H{"cancelled": true})
}

func parseJobID(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
