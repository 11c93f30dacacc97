// Package app wires the engine's shared collaborators (DB, object store,
// Temporal client/broker, repos, external HTTP clients) once, so each
// cmd/ binary only adds the pieces specific to its role.
package app

import (
	"context"
	"fmt"
	"os"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/rakshabesafe/ppttovideo/internal/data/db"
	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/external/muxer"
	"github.com/rakshabesafe/ppttovideo/internal/external/renderer"
	"github.com/rakshabesafe/ppttovideo/internal/external/tts"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/jobctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"github.com/rakshabesafe/ppttovideo/internal/platform/objectstore"
	"github.com/rakshabesafe/ppttovideo/internal/queue"
	"github.com/rakshabesafe/ppttovideo/internal/temporalx"
)

// App bundles every collaborator a cmd/ binary might need. Not every
// binary uses every field (the HTTP server never touches the muxer; the
// gpu worker never touches the renderer), which mirrors the teacher's own
// single wide App struct shared across its HTTP and worker entrypoints.
type App struct {
	Log *logger.Logger

	DBCfg       config.Database
	BrokerCfg   config.Broker
	ObjectCfg   config.ObjectStore
	SynthCfg    config.Synthesis
	BarrierCfg  config.Barrier
	RendererCfg config.Renderer

	DB       *db.Service
	Jobs     repos.JobRepo
	Tasks    repos.TaskRepo
	Voices   repos.VoiceRepo
	Report   *jobctx.Reporter
	Store    objectstore.Store
	Temporal temporalsdkclient.Client
	Broker   queue.Broker
	Renderer *renderer.Client
	Synth    tts.Synthesizer
	Muxer    muxer.Muxer
}

// New wires every collaborator common across binaries. It does not start
// any worker or HTTP server; callers do that with the pieces they need.
func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbCfg := config.LoadDatabase()
	pg, err := db.Open(dbCfg, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	jobs := repos.NewJobRepo(pg.DB, log)
	tasks := repos.NewTaskRepo(pg.DB, log)
	voices := repos.NewVoiceRepo(pg.DB, log)
	report := jobctx.New(jobs, tasks, log)

	objectCfg := config.LoadObjectStore()
	store, err := objectstore.New(ctx, objectCfg, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init object store: %w", err)
	}

	tc, err := temporalx.NewClient(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init temporal client: %w", err)
	}
	if tc == nil {
		log.Sync()
		return nil, fmt.Errorf("init temporal client: TEMPORAL_ADDRESS (or BROKER_URL) is not set")
	}
	broker := queue.NewTemporalBroker(tc)

	rendererCfg := config.LoadRenderer()
	synthCfg := config.LoadSynthesis()

	return &App{
		Log:         log,
		DBCfg:       dbCfg,
		BrokerCfg:   config.LoadBroker(),
		ObjectCfg:   objectCfg,
		SynthCfg:    synthCfg,
		BarrierCfg:  config.LoadBarrier(),
		RendererCfg: rendererCfg,
		DB:          pg,
		Jobs:        jobs,
		Tasks:       tasks,
		Voices:      voices,
		Report:      report,
		Store:       store,
		Temporal:    tc,
		Broker:      broker,
		Renderer:    renderer.New(rendererCfg, log),
		Synth:       tts.New(synthCfg.Engine, synthCfg.SampleRateHz),
		Muxer:       muxer.New(),
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Temporal != nil {
		a.Temporal.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
