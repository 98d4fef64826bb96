package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/Foodgram/internal/config"
	"github.com/GoArmGo/Foodgram/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client публикует и потребляет задачи очистки изображений.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет очередь.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Идемпотентно: очередь создаётся, только если её ещё нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	logger.Info("rabbitmq connected", "queue", q.Name, "messages", q.Messages)
	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает канал и соединение.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	c.logger.Info("rabbitmq connection closed")
	return errors.Join(errs...)
}

// PublishImageCleanup реализует ports.ImageCleanupPublisher.
func (c *Client) PublishImageCleanup(ctx context.Context, payload payloads.ImageCleanupPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    payload.RequestedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}
	c.logger.Debug("image cleanup published", "queue", c.queue.Name, "key", payload.ObjectKey)
	return nil
}

// StartConsumingImageCleanup реализует ports.ImageCleanupConsumer.
// Сообщения обрабатываются в отдельной горутине до отмены ctx.
func (c *Client) StartConsumingImageCleanup(ctx context.Context, handler func(context.Context, payloads.ImageCleanupPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack, подтверждаем вручную
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn("rabbitmq delivery channel closed, stopping consumer")
					return
				}
				processDelivery(ctx, msg.Body, msg, handler, c.logger)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping consumer")
				return
			}
		}
	}()

	return nil
}

// acknowledger реализуется amqp.Delivery.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// processDelivery разбирает сообщение и вызывает handler.
// Битые сообщения отбрасываются, ошибки обработки возвращают сообщение в очередь.
func processDelivery(
	ctx context.Context,
	body []byte,
	ack acknowledger,
	handler func(context.Context, payloads.ImageCleanupPayload) error,
	logger *slog.Logger,
) {
	var payload payloads.ImageCleanupPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.ObjectKey == "" {
		logger.Error("dropping malformed message", "body", string(body), "error", err)
		if err := ack.Nack(false, false); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := handler(ctx, payload); err != nil {
		logger.Error("failed to process message", "key", payload.ObjectKey, "error", err)
		if err := ack.Nack(false, true); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Error("failed to ack message", "error", err)
		return
	}
	logger.Info("message processed", "key", payload.ObjectKey, "recipe_id", payload.RecipeID)
}
