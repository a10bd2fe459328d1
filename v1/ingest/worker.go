package ingest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/contextra/ragcore/v1/faults"
	"github.com/contextra/ragcore/v1/rabbit"
)

// requeueDelay spaces out redeliveries of jobs that failed transiently so a
// flapping backend is not hammered.
const requeueDelay = 5 * time.Second

// Worker drains the ingestion queue and runs each job through the Service.
type Worker struct {
	service *Service
	queue   rabbit.Client
	logger  Logger
}

// Logger is the minimal logging surface the worker needs.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// NewWorker constructs a Worker.
func NewWorker(service *Service, queue rabbit.Client) *Worker {
	return &Worker{service: service, queue: queue}
}

// WithLogger attaches a logger. Returns the worker for chaining.
func (w *Worker) WithLogger(logger Logger) *Worker {
	w.logger = logger
	return w
}

// Run consumes ingestion jobs until the context is cancelled or the queue
// shuts down. Malformed payloads and permanent failures are dead-lettered;
// transient failures are requeued after a short delay.
func (w *Worker) Run(ctx context.Context, wg *sync.WaitGroup) {
	for msg := range w.queue.Consume(ctx, wg) {
		w.handle(ctx, msg)
	}
}

func (w *Worker) handle(ctx context.Context, msg rabbit.Message) {
	var job Job
	if err := json.Unmarshal(msg.Body(), &job); err != nil {
		w.logError(ctx, "Dropping malformed ingestion job", err, nil)
		_ = msg.NackMsg(false)
		return
	}
	if job.DocumentID == "" || job.OwnerID == "" || job.ObjectKey == "" {
		w.logError(ctx, "Dropping incomplete ingestion job", nil, map[string]interface{}{
			"document_id": job.DocumentID,
		})
		_ = msg.NackMsg(false)
		return
	}

	err := w.service.ProcessDocument(ctx, job)
	if err == nil {
		_ = msg.AckMsg()
		return
	}

	if faults.IsRetryable(err) && ctx.Err() == nil {
		w.logWarn(ctx, "Ingestion job failed transiently, requeueing", err, map[string]interface{}{
			"document_id": job.DocumentID,
		})
		select {
		case <-time.After(requeueDelay):
		case <-ctx.Done():
		}
		_ = msg.NackMsg(true)
		return
	}

	w.logError(ctx, "Ingestion job failed, dead-lettering", err, map[string]interface{}{
		"document_id": job.DocumentID,
	})
	_ = msg.NackMsg(false)
}

func (w *Worker) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if w.logger != nil {
		w.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

func (w *Worker) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if w.logger != nil {
		w.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
