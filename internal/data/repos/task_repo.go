package repos

import (
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"gorm.io/gorm"
)

// TaskRepo exposes the Task-row half of the Job Store contract (§4.1).
type TaskRepo interface {
	CreateTask(dbc dbctx.Context, jobID uint64, kind string, slideIndex *int, externalID string) (*domain.Task, error)
	GetTask(dbc dbctx.Context, id uint64) (*domain.Task, error)
	GetTaskByExternalID(dbc dbctx.Context, externalID string) (*domain.Task, error)
	// UpdateTask mirrors update_task(id_or_external_id, {status, progress, error, external_id}):
	// on a transition to running it stamps started_at if unset, and on any
	// terminal status it stamps completed_at.
	UpdateTask(dbc dbctx.Context, id uint64, updates TaskUpdate) error
	UpdateTaskByExternalID(dbc dbctx.Context, externalID string, updates TaskUpdate) error
	ListTasks(dbc dbctx.Context, jobID uint64) ([]*domain.Task, error)
	ListTasksByIDs(dbc dbctx.Context, ids []uint64) ([]*domain.Task, error)
	// ListStaleRunning returns tasks stuck in "running" past the worker
	// hard-limit, candidates for reclaim by the retention sweep (§4.1 contracts).
	ListStaleRunning(dbc dbctx.Context, olderThan time.Duration) ([]*domain.Task, error)
}

// TaskUpdate is a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Status     *string
	Progress   *string
	Error      *string
	ExternalID *string
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (r *taskRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *taskRepo) CreateTask(dbc dbctx.Context, jobID uint64, kind string, slideIndex *int, externalID string) (*domain.Task, error) {
	t := &domain.Task{
		JobID:      jobID,
		Kind:       kind,
		SlideIndex: slideIndex,
		ExternalID: externalID,
		Status:     domain.TaskStatusPending,
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (r *taskRepo) GetTask(dbc dbctx.Context, id uint64) (*domain.Task, error) {
	var t domain.Task
	err := r.tx(dbc).WithContext(dbc.Ctx).First(&t, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) GetTaskByExternalID(dbc dbctx.Context, externalID string) (*domain.Task, error) {
	if externalID == "" {
		return nil, nil
	}
	var t domain.Task
	err := r.tx(dbc).WithContext(dbc.Ctx).First(&t, "external_id = ?", externalID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) UpdateTask(dbc dbctx.Context, id uint64, updates TaskUpdate) error {
	return r.applyUpdate(dbc, "id = ?", id, updates)
}

func (r *taskRepo) UpdateTaskByExternalID(dbc dbctx.Context, externalID string, updates TaskUpdate) error {
	return r.applyUpdate(dbc, "external_id = ?", externalID, updates)
}

func (r *taskRepo) applyUpdate(dbc dbctx.Context, whereClause string, whereArg interface{}, updates TaskUpdate) error {
	now := time.Now()
	fields := map[string]interface{}{"updated_at": now}
	if updates.Progress != nil {
		fields["progress"] = *updates.Progress
	}
	if updates.Error != nil {
		fields["error"] = *updates.Error
	}
	if updates.ExternalID != nil {
		fields["external_id"] = *updates.ExternalID
	}
	if updates.Status != nil {
		fields["status"] = *updates.Status
		if *updates.Status == domain.TaskStatusRunning {
			// started_at is stamped only if unset, so we set it conditionally
			// via a raw expression rather than unconditionally overwriting it.
			fields["started_at"] = gorm.Expr("COALESCE(started_at, ?)", now)
		}
		if domain.TaskTerminalStatuses[*updates.Status] {
			fields["completed_at"] = now
		}
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Task{}).
		Where(whereClause, whereArg).
		Updates(fields).Error
}

func (r *taskRepo) ListTasks(dbc dbctx.Context, jobID uint64) ([]*domain.Task, error) {
	var out []*domain.Task
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
		Order("kind ASC, slide_index ASC NULLS LAST").
		Find(&out).Error
	return out, err
}

func (r *taskRepo) ListTasksByIDs(dbc dbctx.Context, ids []uint64) ([]*domain.Task, error) {
	var out []*domain.Task
	if len(ids) == 0 {
		return out, nil
	}
	err := r.tx(dbc).WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *taskRepo) ListStaleRunning(dbc dbctx.Context, olderThan time.Duration) ([]*domain.Task, error) {
	var out []*domain.Task
	cutoff := time.Now().Add(-olderThan)
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("status = ? AND started_at IS NOT NULL AND started_at < ?", domain.TaskStatusRunning, cutoff).
		Find(&out).Error
	return out, err
}
