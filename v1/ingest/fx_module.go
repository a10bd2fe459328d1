package ingest

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/chunker"
	"github.com/contextra/ragcore/v1/embedding"
	"github.com/contextra/ragcore/v1/minio"
	"github.com/contextra/ragcore/v1/observability"
	"github.com/contextra/ragcore/v1/rabbit"
	"github.com/contextra/ragcore/v1/store"
	"github.com/contextra/ragcore/v1/vectordb"
)

// FXModule is an fx module that provides the ingestion service. The queue
// worker is registered separately via WorkerFXModule so publishers (the API
// process) and consumers (the ingestion worker) can share this module.
var FXModule = fx.Module("ingest",
	fx.Provide(
		NewConfig,
		NewServiceWithDI,
	),
)

// WorkerFXModule additionally runs the queue worker for the lifetime of the
// application.
var WorkerFXModule = fx.Module("ingest-worker",
	fx.Provide(NewWorkerWithDI),
	fx.Invoke(RegisterWorkerLifecycle),
)

// ServiceParams groups the dependencies needed to create the ingestion
// service.
type ServiceParams struct {
	fx.In

	Config   Config
	Docs     *store.DocumentRepository
	Chunks   *store.ChunkRepository
	Blobs    minio.Client
	Splitter *chunker.Splitter
	Embedder *embedding.Client
	Index    vectordb.Service
	Queue    rabbit.Client          `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewServiceWithDI creates the ingestion service using dependency injection.
func NewServiceWithDI(params ServiceParams) (*Service, error) {
	svc, err := NewService(
		params.Config,
		params.Docs,
		params.Chunks,
		params.Blobs,
		params.Splitter,
		params.Embedder,
		params.Index,
	)
	if err != nil {
		return nil, err
	}

	if params.Queue != nil {
		svc = svc.WithQueue(params.Queue)
	}
	if params.Observer != nil {
		svc = svc.WithObserver(params.Observer)
	}
	return svc, nil
}

// WorkerParams groups the dependencies needed to create the queue worker.
type WorkerParams struct {
	fx.In

	Service *Service
	Queue   rabbit.Client
	Logger  Logger `optional:"true"`
}

// NewWorkerWithDI creates the queue worker using dependency injection.
func NewWorkerWithDI(params WorkerParams) *Worker {
	worker := NewWorker(params.Service, params.Queue)
	if params.Logger != nil {
		worker = worker.WithLogger(params.Logger)
	}
	return worker
}

// WorkerLifecycleParams groups the dependencies needed for worker lifecycle
// management.
type WorkerLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Worker    *Worker
}

// RegisterWorkerLifecycle runs the worker for the lifetime of the
// application and drains it on shutdown.
func RegisterWorkerLifecycle(params WorkerLifecycleParams) {
	runCtx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				params.Worker.Run(runCtx, wg)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			wg.Wait()
			return nil
		},
	})
}
