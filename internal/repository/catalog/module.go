package catalog

import "go.uber.org/fx"

// Module provides the catalog repository to Fx as its Store interface.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(Store))),
)
