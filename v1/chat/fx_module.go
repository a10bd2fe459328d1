package chat

import (
	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/assembler"
	"github.com/contextra/ragcore/v1/llm"
	"github.com/contextra/ragcore/v1/observability"
	"github.com/contextra/ragcore/v1/retriever"
	"github.com/contextra/ragcore/v1/store"
	"github.com/contextra/ragcore/v1/tracer"
)

// FXModule is an fx module that provides the chat orchestrator.
var FXModule = fx.Module("chat",
	fx.Provide(
		NewConfig,
		NewServiceWithDI,
	),
)

// ChatParams groups the dependencies needed to create the chat orchestrator.
type ChatParams struct {
	fx.In

	Config    Config
	Sessions  *store.SessionRepository
	Retriever *retriever.Service
	Assembler *assembler.Assembler
	Generator *llm.Client
	Observer  observability.Observer `optional:"true"`
	Tracer    *tracer.Tracer         `optional:"true"`
}

// NewServiceWithDI creates the chat orchestrator using dependency injection.
func NewServiceWithDI(params ChatParams) (*Service, error) {
	svc, err := NewService(
		params.Config,
		params.Sessions,
		params.Retriever,
		params.Assembler,
		params.Generator,
	)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		svc = svc.WithObserver(params.Observer)
	}
	if params.Tracer != nil {
		svc = svc.WithTracer(params.Tracer)
	}
	return svc, nil
}
