package llm

import (
	"context"

	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/observability"
)

// FXModule wires the completion client into Fx.
//
// It provides:
//   - *Config        (NewConfig)
//   - *Client        (NewClientWithDI)
//   - Lifecycle hook (RegisterLLMLifecycle)
var FXModule = fx.Module(
	"llm",

	fx.Provide(
		NewConfig,
		NewClientWithDI,
	),

	fx.Invoke(RegisterLLMLifecycle),
)

// LLMParams groups the dependencies needed to create a Client.
type LLMParams struct {
	fx.In

	Config   *Config
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a completion client, attaching the observer when
// one is available in the container.
func NewClientWithDI(p LLMParams) (*Client, error) {
	client, err := NewClient(p.Config)
	if err != nil {
		return nil, err
	}
	if p.Observer != nil {
		client = client.WithObserver(p.Observer)
	}
	return client, nil
}

// RegisterLLMLifecycle releases client resources on application shutdown.
func RegisterLLMLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
