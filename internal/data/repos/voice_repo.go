package repos

import (
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"gorm.io/gorm"
)

// VoiceRepo persists VoiceReference rows: uploaded clips or builtin://
// speaker sentinels, resolved by the Synthesis Worker (C5 step 2).
type VoiceRepo interface {
	Create(dbc dbctx.Context, v *domain.VoiceReference) (*domain.VoiceReference, error)
	Get(dbc dbctx.Context, id string) (*domain.VoiceReference, error)
}

type voiceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVoiceRepo(db *gorm.DB, baseLog *logger.Logger) VoiceRepo {
	return &voiceRepo{db: db, log: baseLog.With("repo", "VoiceRepo")}
}

func (r *voiceRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *voiceRepo) Create(dbc dbctx.Context, v *domain.VoiceReference) (*domain.VoiceReference, error) {
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

func (r *voiceRepo) Get(dbc dbctx.Context, id string) (*domain.VoiceReference, error) {
	var v domain.VoiceReference
	err := r.tx(dbc).WithContext(dbc.Ctx).First(&v, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
