package retriever

import (
	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/embedding"
	"github.com/contextra/ragcore/v1/observability"
	"github.com/contextra/ragcore/v1/tracer"
	"github.com/contextra/ragcore/v1/vectordb"
)

// FXModule wires the retriever into Fx.
//
// Dependencies required by this module:
//   - *retriever.Config
//   - *embedding.Client (bound to the Embedder interface here)
//   - vectordb.Service
//   - optionally a ChunkLookup for resolving chunk text
//   - optionally an observability.Observer
var FXModule = fx.Module("retriever",
	fx.Provide(
		NewConfig,
		fx.Annotate(
			func(c *embedding.Client) *embedding.Client { return c },
			fx.As(new(Embedder)),
		),
		NewServiceWithDI,
	),
)

// RetrieverParams groups the dependencies needed to create a Service.
type RetrieverParams struct {
	fx.In

	Config   *Config
	Embedder Embedder
	Index    vectordb.Service
	Lookup   ChunkLookup            `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
}

// NewServiceWithDI creates a retriever from injected dependencies.
func NewServiceWithDI(p RetrieverParams) (*Service, error) {
	svc, err := NewService(p.Config, p.Embedder, p.Index, p.Lookup)
	if err != nil {
		return nil, err
	}
	if p.Observer != nil {
		svc = svc.WithObserver(p.Observer)
	}
	if p.Tracer != nil {
		svc = svc.WithTracer(p.Tracer)
	}
	return svc, nil
}
