package app

import (
	"go.uber.org/fx"

	"github.com/routedash/routedash/internal/cache"
	"github.com/routedash/routedash/internal/config"
	"github.com/routedash/routedash/internal/database"
	"github.com/routedash/routedash/internal/logger"
	"github.com/routedash/routedash/internal/messaging"
	"github.com/routedash/routedash/internal/observability"
	repositorycatalog "github.com/routedash/routedash/internal/repository/catalog"
	repositoryorder "github.com/routedash/routedash/internal/repository/order"
	grpcserver "github.com/routedash/routedash/internal/server/grpc"
	httpserver "github.com/routedash/routedash/internal/server/http"
	serviceanalytics "github.com/routedash/routedash/internal/service/analytics"
	serviceorder "github.com/routedash/routedash/internal/service/order"
	transporthttp "github.com/routedash/routedash/internal/transport/http"
	"github.com/routedash/routedash/internal/worker"
	workerorder "github.com/routedash/routedash/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositorycatalog.Module,
	repositoryorder.Module,
	serviceanalytics.Module,
	serviceorder.Module,
)

// HTTP wires the request-serving transports on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
