package chunker

import "go.uber.org/fx"

// FXModule wires the chunker into Fx.
//
// It provides:
//   - Config    (NewConfig)
//   - *Splitter (NewSplitter)
var FXModule = fx.Module("chunker",
	fx.Provide(
		NewConfig,
		NewSplitter,
	),
)
