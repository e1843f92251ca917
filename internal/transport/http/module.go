package http

import (
	"go.uber.org/fx"

	ordertransport "github.com/routedash/routedash/internal/transport/http/order"
	restauranttransport "github.com/routedash/routedash/internal/transport/http/restaurant"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	restauranttransport.Module,
)
