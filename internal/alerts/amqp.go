package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	amqpQueueSize      = 64
	amqpPublishTimeout = 5 * time.Second
)

// AMQPConfig describes where status changes are published.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// amqpChannel is the subset of *amqp.Channel used for publishing.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// statusMessage is the JSON body published for each change.
type statusMessage struct {
	TripID string    `json:"trip_id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	At     time.Time `json:"at"`
}

// AMQPPublisher publishes status changes to a durable topic exchange with
// routing key "trip.status.<status>". Publishing happens on a single
// background goroutine; when its queue is full the change is dropped.
type AMQPPublisher struct {
	exchange string
	conn     *amqp.Connection
	ch       amqpChannel
	queue    chan StatusChange
	done     chan struct{}
	once     sync.Once
}

// DialAMQP connects to the broker, declares the exchange and starts the
// publishing goroutine.
func DialAMQP(cfg AMQPConfig) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dialing amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening amqp channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declaring exchange %q: %w", cfg.Exchange, err)
	}

	p := newAMQPPublisher(cfg.Exchange, ch)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(exchange string, ch amqpChannel) *AMQPPublisher {
	p := &AMQPPublisher{
		exchange: exchange,
		ch:       ch,
		queue:    make(chan StatusChange, amqpQueueSize),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Notify queues change for publishing.
func (p *AMQPPublisher) Notify(change StatusChange) {
	defer func() { _ = recover() }()
	select {
	case p.queue <- change:
	default:
		slog.Warn("amqp publish queue full, dropping status change", "trip", change.TripID, "status", change.To.String())
	}
}

// Close drains queued changes and closes the broker connection.
func (p *AMQPPublisher) Close() error {
	var err error
	p.once.Do(func() {
		close(p.queue)
		<-p.done
		err = p.ch.Close()
		if p.conn != nil {
			if cerr := p.conn.Close(); err == nil {
				err = cerr
			}
		}
	})
	return err
}

func (p *AMQPPublisher) run() {
	defer close(p.done)
	for change := range p.queue {
		if err := p.publish(change); err != nil {
			slog.Error("failed to publish status change", "trip", change.TripID, "error", err)
		}
	}
}

func routingKey(s Status) string {
	return "trip.status." + s.String()
}

func (p *AMQPPublisher) publish(change StatusChange) error {
	body, err := json.Marshal(statusMessage{
		TripID: change.TripID,
		From:   change.From.String(),
		To:     change.To.String(),
		At:     change.At,
	})
	if err != nil {
		return fmt.Errorf("encoding status change: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), amqpPublishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(ctx,
		p.exchange,            // exchange
		routingKey(change.To), // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    change.At,
		},
	)
}
