// Package metrics exposes Prometheus metrics for the retrieval pipeline.
//
// It owns an isolated registry, serves it over HTTP at /metrics, and
// implements observability.Observer so backend clients (embedding, qdrant,
// llm, redis, minio, rabbit) and the pipeline services report their
// operations as counters and latency histograms without importing
// Prometheus themselves.
package metrics
