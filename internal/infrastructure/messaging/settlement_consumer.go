// Package messaging consumes payment settlement notices from RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appdonation "github.com/donortrack/backend/internal/application/donation"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/donortrack/backend/internal/infrastructure/config"
	"github.com/donortrack/backend/internal/infrastructure/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const defaultReconnectWait = 5 * time.Second

// SettlementHandler applies a decoded settlement notice
type SettlementHandler interface {
	SettleDonation(ctx context.Context, notice appdonation.SettlementNotice) (*appdonation.SettlementResult, error)
}

// SettlementConsumer reads settlement notices from a durable queue bound to
// a topic exchange. Each delivery is acked once applied, rejected without
// requeue when it can never succeed, and requeued on transient failures.
type SettlementConsumer struct {
	cfg     config.AMQPConfig
	handler SettlementHandler
	logger  *zap.Logger
	dial    func(url string) (*amqp.Connection, error)
}

// NewSettlementConsumer creates a consumer; call Run to start it
func NewSettlementConsumer(cfg config.AMQPConfig, handler SettlementHandler, log *zap.Logger) *SettlementConsumer {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = defaultReconnectWait
	}
	return &SettlementConsumer{
		cfg:     cfg,
		handler: handler,
		logger:  log.Named("settlement_consumer"),
		dial:    amqp.Dial,
	}
}

// Run consumes until ctx is cancelled, reconnecting after broker failures
func (c *SettlementConsumer) Run(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("Settlement consumer disconnected, reconnecting",
			zap.Duration("wait", c.cfg.ReconnectWait),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.ReconnectWait):
		}
	}
}

func (c *SettlementConsumer) consume(ctx context.Context) error {
	conn, err := c.dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := c.declare(ch); err != nil {
		return err
	}
	deliveries, err := ch.Consume(c.cfg.Queue, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consuming settlement notices",
		zap.String("exchange", c.cfg.Exchange),
		zap.String("queue", c.cfg.Queue),
		zap.String("routing_key", c.cfg.RoutingKey))

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("connection closed")
			}
			return amqpErr
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.Handle(ctx, d)
		}
	}
}

func (c *SettlementConsumer) declare(ch *amqp.Channel) error {
	if c.cfg.PrefetchCount > 0 {
		if err := ch.Qos(c.cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set prefetch: %w", err)
		}
	}
	if err := ch.ExchangeDeclare(c.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, c.cfg.RoutingKey, c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// Handle settles one delivery and acknowledges it. A panicking handler
// requeues the message once; a redelivered message that panics is dropped.
func (c *SettlementConsumer) Handle(ctx context.Context, d amqp.Delivery) {
	log := c.logger.With(
		zap.String("message_id", d.MessageId),
		zap.Uint64("delivery_tag", d.DeliveryTag))
	ctx = logger.WithContext(ctx, log)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Settlement handler panic",
				zap.Any("panic", r),
				zap.Bool("redelivered", d.Redelivered))
			c.settleAck(log, d.Nack(false, !d.Redelivered))
		}
	}()

	var notice appdonation.SettlementNotice
	if err := json.Unmarshal(d.Body, &notice); err != nil {
		log.Warn("Discarding malformed settlement notice", zap.Error(err))
		c.settleAck(log, d.Reject(false))
		return
	}

	result, err := c.handler.SettleDonation(ctx, notice)
	switch {
	case err == nil:
		log.Info("Settlement notice applied",
			zap.String("donation_id", notice.DonationID.String()),
			zap.Bool("already_processed", result != nil && result.AlreadyProcessed))
		c.settleAck(log, d.Ack(false))
	case permanent(err):
		log.Warn("Rejecting settlement notice",
			zap.String("donation_id", notice.DonationID.String()),
			zap.Error(err))
		c.settleAck(log, d.Reject(false))
	default:
		log.Error("Settlement failed, requeueing",
			zap.String("donation_id", notice.DonationID.String()),
			zap.Error(err))
		c.settleAck(log, d.Nack(false, !d.Redelivered))
	}
}

func (c *SettlementConsumer) settleAck(log *zap.Logger, err error) {
	if err != nil {
		log.Error("Failed to acknowledge delivery", zap.Error(err))
	}
}

// permanent reports errors that redelivery cannot fix
func permanent(err error) bool {
	return shared.IsValidation(err) ||
		shared.IsNotFound(err) ||
		shared.IsInvalidTransition(err)
}
