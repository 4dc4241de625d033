package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/logger"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/tracing"
)

const (
	routingKeyDomainAlert         = "alert.domain"
	routingKeyDeliverabilityAlert = "alert.deliverability"
)

// rabbitPublisher fans alerts out on a topic exchange. Consumers bind on
// alert.domain / alert.deliverability routing keys.
type rabbitPublisher struct {
	log      logger.Logger
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// noopPublisher is used when no broker URL is configured; alerts stay
// DB-only and publishing silently succeeds.
type noopPublisher struct{}

func (noopPublisher) PublishDomainAlert(context.Context, *models.DomainAlert) error { return nil }
func (noopPublisher) PublishDeliverabilityAlert(context.Context, *models.DeliverabilityAlert) error {
	return nil
}
func (noopPublisher) Close() error { return nil }

func NewAlertPublisher(cfg *config.EventsConfig, log logger.Logger) (interfaces.AlertPublisher, error) {
	if cfg == nil || cfg.RabbitMQURL == "" {
		log.Info("events: no broker configured, alert publishing disabled")
		return noopPublisher{}, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, errors.Wrap(err, "rabbitmq connection failed")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "rabbitmq channel failed")
	}

	if err := channel.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, errors.Wrap(err, "exchange declaration failed")
	}

	return &rabbitPublisher{
		log:      log,
		conn:     conn,
		channel:  channel,
		exchange: cfg.Exchange,
	}, nil
}

func (p *rabbitPublisher) PublishDomainAlert(ctx context.Context, alert *models.DomainAlert) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AlertPublisher.PublishDomainAlert")
	defer span.Finish()
	tracing.TagComponentPublisher(span)
	tracing.TagTenant(span, alert.Tenant)

	return p.publish(ctx, span, routingKeyDomainAlert, alert)
}

func (p *rabbitPublisher) PublishDeliverabilityAlert(ctx context.Context, alert *models.DeliverabilityAlert) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AlertPublisher.PublishDeliverabilityAlert")
	defer span.Finish()
	tracing.TagComponentPublisher(span)
	tracing.TagTenant(span, alert.Tenant)

	return p.publish(ctx, span, routingKeyDeliverabilityAlert, alert)
}

func (p *rabbitPublisher) publish(ctx context.Context, span opentracing.Span, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "alert serialization failed"))
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(publishCtx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "alert publish failed"))
		return err
	}

	return nil
}

func (p *rabbitPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.log.Warnf("events: channel close failed: %v", err)
	}
	return p.conn.Close()
}
