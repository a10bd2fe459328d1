package ingest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	body    []byte
	acked   bool
	nacked  bool
	requeue bool
}

func (m *fakeMessage) AckMsg() error { m.acked = true; return nil }

func (m *fakeMessage) NackMsg(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *fakeMessage) Body() []byte                   { return m.body }
func (m *fakeMessage) Header() map[string]interface{} { return nil }

func jobMessage(t *testing.T, job Job) *fakeMessage {
	t.Helper()
	payload, err := json.Marshal(job)
	require.NoError(t, err)
	return &fakeMessage{body: payload}
}

func TestWorker_AcksSuccessfulJob(t *testing.T) {
	p := newTestPipeline(t)
	queue := &fakeQueue{}
	p.svc = p.svc.WithQueue(queue)
	ctx := context.Background()

	doc, err := p.svc.Upload(ctx, "owner-1", "doc", []byte("text to process"))
	require.NoError(t, err)

	worker := &Worker{service: p.svc}
	msg := jobMessage(t, Job{DocumentID: doc.ID, OwnerID: "owner-1", ObjectKey: doc.ObjectKey})
	worker.handle(ctx, msg)

	assert.True(t, msg.acked)
	assert.False(t, msg.nacked)
}

func TestWorker_DeadLettersMalformedPayload(t *testing.T) {
	p := newTestPipeline(t)
	worker := &Worker{service: p.svc}

	msg := &fakeMessage{body: []byte("{not json")}
	worker.handle(context.Background(), msg)

	assert.True(t, msg.nacked)
	assert.False(t, msg.requeue)
}

func TestWorker_DeadLettersIncompleteJob(t *testing.T) {
	p := newTestPipeline(t)
	worker := &Worker{service: p.svc}

	msg := jobMessage(t, Job{DocumentID: "only-an-id"})
	worker.handle(context.Background(), msg)

	assert.True(t, msg.nacked)
	assert.False(t, msg.requeue)
}

func TestWorker_DeadLettersPermanentFailure(t *testing.T) {
	p := newTestPipeline(t)
	queue := &fakeQueue{}
	p.svc = p.svc.WithQueue(queue)
	ctx := context.Background()

	doc, err := p.svc.Upload(ctx, "owner-1", "doc", []byte("text"))
	require.NoError(t, err)

	// Missing blob is a permanent failure: redelivery cannot fix it.
	require.NoError(t, p.blobs.Delete(ctx, doc.ObjectKey))

	worker := &Worker{service: p.svc}
	msg := jobMessage(t, Job{DocumentID: doc.ID, OwnerID: "owner-1", ObjectKey: doc.ObjectKey})
	worker.handle(ctx, msg)

	assert.True(t, msg.nacked)
	assert.False(t, msg.requeue)
}
