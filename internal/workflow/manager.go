package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/notifications"
	"reelforge/internal/queue"
	"reelforge/internal/stage"
)

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	notifier     notifications.Service

	heartbeat *HeartbeatMonitor

	stages             []pipelineStage
	statusOrder        []queue.Status
	stageByStart       map[queue.Status]pipelineStage
	processingStatuses []queue.Status

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item

	queueActive bool
	queueStart  time.Time
}

// StageSet bundles the concrete handlers the manager orchestrates.
type StageSet struct {
	Fetcher   stage.Handler
	Clipper   stage.Handler
	Captioner stage.Handler
	Publisher stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// loggerAware lets the manager hand stage handlers a request-scoped logger.
type loggerAware interface {
	SetLogger(*slog.Logger)
}

// NewManager constructs a workflow manager with the default notifier.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	var stages []pipelineStage
	if set.Fetcher != nil {
		stages = append(stages, pipelineStage{
			name:             "fetcher",
			handler:          set.Fetcher,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusFetching,
			doneStatus:       queue.StatusFetched,
		})
	}
	if set.Clipper != nil {
		stages = append(stages, pipelineStage{
			name:             "clipper",
			handler:          set.Clipper,
			startStatus:      queue.StatusFetched,
			processingStatus: queue.StatusClipping,
			doneStatus:       queue.StatusClipped,
		})
	}
	if set.Captioner != nil {
		stages = append(stages, pipelineStage{
			name:             "captioner",
			handler:          set.Captioner,
			startStatus:      queue.StatusClipped,
			processingStatus: queue.StatusCaptioning,
			doneStatus:       queue.StatusCaptioned,
		})
	}
	publisherStart := queue.StatusCaptioned
	if set.Captioner == nil {
		publisherStart = queue.StatusClipped
	}
	if set.Publisher != nil {
		stages = append(stages, pipelineStage{
			name:             "publisher",
			handler:          set.Publisher,
			startStatus:      publisherStart,
			processingStatus: queue.StatusPublishing,
			doneStatus:       queue.StatusCompleted,
		})
	}

	stageByStart := make(map[queue.Status]pipelineStage, len(stages))
	statusOrder := make([]queue.Status, 0, len(stages))
	processing := make([]queue.Status, 0, len(stages))
	for _, stg := range stages {
		stageByStart[stg.startStatus] = stg
		statusOrder = append(statusOrder, stg.startStatus)
		processing = append(processing, stg.processingStatus)
	}

	m.mu.Lock()
	m.stages = stages
	m.statusOrder = statusOrder
	m.stageByStart = stageByStart
	m.processingStatuses = processing
	m.mu.Unlock()
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}
