// Package rabbit provides the RabbitMQ client used to queue document
// ingestion jobs.
//
// The API gateway publishes a job for every uploaded document; the ingestion
// worker consumes jobs from the durable queue and processes them. Jobs that
// exhaust their delivery attempts or exceed the queue TTL are dead-lettered
// for inspection and replay.
//
// # Features
//
//   - Automatic reconnection with topology re-declaration
//   - Publisher confirms on every channel
//   - Dead-letter exchange and queue for failed jobs
//   - QoS prefetch limits tuned for heavyweight ingestion work
//   - Optional TLS, including mutual TLS with client certificates
//   - Observability hooks for publish and consume operations
//
// # Usage with Fx
//
//	app := fx.New(
//	    rabbit.FXModule,
//	    fx.Provide(rabbit.NewConfig),
//	    fx.Invoke(func(client rabbit.Client) {
//	        // publish or consume
//	    }),
//	)
//
// # Direct usage
//
//	cfg := rabbit.NewConfig()
//	cfg.Channel.IsConsumer = true
//
//	client, err := rabbit.NewClient(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.GracefulShutdown()
//
//	wg := &sync.WaitGroup{}
//	for msg := range client.Consume(ctx, wg) {
//	    if err := process(msg.Body()); err != nil {
//	        _ = msg.NackMsg(false) // dead-letter the job
//	        continue
//	    }
//	    _ = msg.AckMsg()
//	}
package rabbit
