package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/httpapi/response"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/queue"
)

// StatusHandler is the dashboard read-out the broker contract's inspect
// operation exists for (§6: "non-essential to correctness"): queue
// poller counts plus tasks stuck in running long enough to be orphaned.
type StatusHandler struct {
	tasks  repos.TaskRepo
	broker queue.Broker
}

func NewStatusHandler(tasks repos.TaskRepo, broker queue.Broker) *StatusHandler {
	return &StatusHandler{tasks: tasks, broker: broker}
}

// GET /status
func (h *StatusHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	queues := gin.H{}
	for _, q := range []string{queue.QueueCPU, queue.QueueGPU} {
		stats, err := h.broker.Inspect(ctx, q)
		if err != nil {
			queues[q] = gin.H{"error": err.Error()}
			continue
		}
		queues[q] = stats
	}

	stale, err := h.tasks.ListStaleRunning(dbctx.Context{Ctx: ctx}, 2*time.Hour)
	if err != nil {
		response.Err(c, http.StatusInternalServerError, "list_stale_running_failed", err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"queues": queues, "stuck_tasks": stale})
}
