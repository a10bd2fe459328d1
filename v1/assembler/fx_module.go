package assembler

import "go.uber.org/fx"

// FXModule wires the context assembler into Fx.
var FXModule = fx.Module("assembler",
	fx.Provide(
		NewConfig,
		New,
	),
)
