package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "tutorconnect_events"

	publishAttempts = 3
	publishBackoff  = 250 * time.Millisecond
	prefetchCount   = 10
)

// AMQPBus routes envelopes through a durable RabbitMQ topic exchange. Every
// event name gets one durable queue (`<event>_queue`), so horizontally scaled
// consumers of the same service share the queue and compete for messages.
type AMQPBus struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func ConnectAMQP(url string) (*AMQPBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrTransport, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: channel: %v", ErrTransport, err)
	}

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%w: declare exchange: %v", ErrTransport, err)
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%w: qos: %v", ErrTransport, err)
	}

	connClosed := make(chan *amqp.Error, 1)
	chClosed := make(chan *amqp.Error, 1)
	conn.NotifyClose(connClosed)
	ch.NotifyClose(chClosed)
	go watchClose(connClosed, chClosed, log.Fatalf)

	log.Println("✅ Connected to RabbitMQ")
	return &AMQPBus{conn: conn, ch: ch}, nil
}

// watchClose blocks until the broker reports that the connection or channel
// is gone. A nil error means a deliberate Close. Anything else leaves every
// consumer goroutine dead with no recovery path, because the client library
// does not redial on its own, so the process exits and the supervisor
// restarts it with a fresh connection and fresh subscriptions.
func watchClose(connClosed, chClosed <-chan *amqp.Error, fatalf func(format string, v ...interface{})) {
	var closeErr *amqp.Error
	select {
	case closeErr = <-connClosed:
	case closeErr = <-chClosed:
	}
	if closeErr != nil {
		fatalf("🔥 RabbitMQ connection lost, exiting for restart: %v", closeErr)
	}
}

// Publish sends a persistent envelope with the event name as routing key.
// Transient broker failures are retried with backoff; exhausting the retries
// returns ErrTransport so the caller can report a degraded success.
func (b *AMQPBus) Publish(ctx context.Context, event string, payload interface{}) error {
	body, err := newEnvelope(event, payload)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", event, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	}

	var lastErr error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		b.mu.Lock()
		ch := b.ch
		b.mu.Unlock()

		lastErr = ch.PublishWithContext(ctx, exchangeName, event, false, false, msg)
		if lastErr == nil {
			log.Printf("📤 Event published: %s", event)
			return nil
		}

		log.Printf("⚠️ Publish attempt %d/%d for %s failed: %v", attempt, publishAttempts, event, lastErr)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: publish %s: %v", ErrTransport, event, ctx.Err())
		case <-time.After(time.Duration(attempt) * publishBackoff):
		}
	}

	return fmt.Errorf("%w: publish %s: %v", ErrTransport, event, lastErr)
}

// Subscribe binds a durable queue to the event's routing key and feeds
// deliveries to the handler. A message is acknowledged only after the handler
// returns nil; handler errors nack with requeue, so redelivery is expected.
func (b *AMQPBus) Subscribe(event string, handler Handler) error {
	queueName := event + "_queue"

	b.mu.Lock()
	ch := b.ch
	b.mu.Unlock()

	queue, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // auto-delete
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("%w: declare queue %s: %v", ErrTransport, queueName, err)
	}

	if err := ch.QueueBind(queue.Name, event, exchangeName, false, nil); err != nil {
		return fmt.Errorf("%w: bind queue %s: %v", ErrTransport, queueName, err)
	}

	deliveries, err := ch.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("%w: consume %s: %v", ErrTransport, queueName, err)
	}

	go func() {
		for delivery := range deliveries {
			var envelope Envelope
			if err := json.Unmarshal(delivery.Body, &envelope); err != nil {
				// Unparseable messages would loop forever on requeue.
				log.Printf("🔥 Dropping malformed message on %s: %v", queueName, err)
				if err := delivery.Ack(false); err != nil {
					log.Printf("⚠️ Ack failed on %s for message %s: %v", queueName, delivery.MessageId, err)
				}
				continue
			}

			log.Printf("📥 Event received: %s", envelope.Event)
			if err := handler(envelope.Data); err != nil {
				log.Printf("🔥 Handler for %s failed, message requeued: %v", event, err)
				if err := delivery.Nack(false, true); err != nil {
					log.Printf("⚠️ Nack failed on %s for message %s: %v", queueName, delivery.MessageId, err)
				}
				continue
			}
			if err := delivery.Ack(false); err != nil {
				log.Printf("⚠️ Ack failed on %s for message %s: %v", queueName, delivery.MessageId, err)
			}
		}
	}()

	log.Printf("👂 Listening for event: %s", event)
	return nil
}

func (b *AMQPBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var lastErr error
	if b.ch != nil {
		if err := b.ch.Close(); err != nil {
			lastErr = err
		}
		b.ch = nil
	}
	if b.conn != nil {
		if err := b.conn.Close(); err != nil {
			lastErr = err
		}
		b.conn = nil
	}
	return lastErr
}
