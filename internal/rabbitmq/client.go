package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/GoArmGo/Weplash/internal/config"
	"github.com/GoArmGo/Weplash/internal/messaging/payloads"
)

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к RabbitMQ, открывает канал и объявляет очередь задач обогащения
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{logger: logger.With("component", "rabbitmq")}

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	client.conn = conn

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	client.channel = ch

	if cfg.RabbitMQ.PrefetchCount > 0 {
		if err := ch.Qos(cfg.RabbitMQ.PrefetchCount, 0, false); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	// Идемпотентно: очередь создаётся, только если её нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	client.queue = q

	client.logger.Info("connected to RabbitMQ", "queue", q.Name, "messages", q.Messages)
	return client, nil
}

// Close закрывает канал и соединение
func (c *Client) Close() error {
	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close channel: %w", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close connection: %w", err)
		}
	}
	c.logger.Info("RabbitMQ connection closed")
	return firstErr
}

// PublishEnrichmentJob публикует задачу обогащения фото.
// Реализует ports.EnrichmentPublisher.
func (c *Client) PublishEnrichmentJob(ctx context.Context, payload payloads.EnrichmentPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
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
			MessageId:    payload.JobID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}
	c.logger.Debug("enrichment job published", "job_id", payload.JobID, "job", payload.Job, "photo_id", payload.PhotoID)
	return nil
}

// StartConsumingEnrichmentJobs начинает потребление задач из очереди.
// Реализует ports.EnrichmentConsumer. Сообщения не возвращаются в очередь:
// при ошибке обработки задача отбрасывается.
func (c *Client) StartConsumingEnrichmentJobs(ctx context.Context, handler func(context.Context, payloads.EnrichmentPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered, waiting for messages", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("delivery channel closed, stopping consumer")
					return
				}
				c.handleDelivery(ctx, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping consumer")
				return
			}
		}
	}()

	return nil
}

// acknowledger — часть amqp.Delivery, нужная для подтверждения
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.EnrichmentPayload) error) {
	dispatch(ctx, c.logger, msg.Body, msg, handler)
}

func dispatch(ctx context.Context, logger *slog.Logger, body []byte, ack acknowledger, handler func(context.Context, payloads.EnrichmentPayload) error) {
	var payload payloads.EnrichmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error("failed to unmarshal message", "error", err, "body", string(body))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	log := logger.With("job_id", payload.JobID, "job", payload.Job, "photo_id", payload.PhotoID)
	if err := handler(ctx, payload); err != nil {
		log.Error("enrichment job failed, dropping", "error", err)
		if err := ack.Nack(false, false); err != nil {
			log.Error("failed to nack message", "error", err)
		}
		return
	}
	if err := ack.Ack(false); err != nil {
		log.Error("failed to ack message", "error", err)
		return
	}
	log.Debug("enrichment job acked")
}
