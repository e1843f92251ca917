package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/routedash/routedash/internal/config"
	"github.com/routedash/routedash/internal/messaging"
	ordersvc "github.com/routedash/routedash/internal/service/order"
	"github.com/routedash/routedash/internal/worker"
)

var workerTracer = otel.Tracer("github.com/routedash/routedash/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewLifecycleHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewLifecycleHandler sets up a worker handler that consumes order lifecycle
// events from the order topic and records them.
func NewLifecycleHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		switch event.Event {
		case ordersvc.EventOrderCreated:
			logger.Info("order created event processed",
				zap.String("order_id", event.OrderID),
				zap.String("restaurant_id", event.RestaurantID),
				zap.Int64("total_cents", event.TotalCents),
			)
		case ordersvc.EventOrderStatusChanged:
			logger.Info("order status change event processed",
				zap.String("order_id", event.OrderID),
				zap.String("from", string(event.PreviousStatus)),
				zap.String("to", string(event.Status)),
			)
		default:
			logger.Warn("unknown order event", zap.String("event", event.Event))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
