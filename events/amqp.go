package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go-restobook/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishQueue   = 256
	publishTimeout = 5 * time.Second
	dialTimeout    = 5 * time.Second
	redialDelay    = 5 * time.Second
)

var (
	ErrPublishQueueFull = errors.New("rabbitmq: publish queue full")
	ErrPublisherClosed  = errors.New("rabbitmq: publisher closed")
)

type outgoing struct {
	routingKey string
	body       []byte
	at         time.Time
}

// AMQPPublisher publishes events as persistent JSON messages to a durable
// topic exchange, using the event name as the routing key. Publish only
// queues the message; a single worker sends it, redialling a broken
// connection at most once per redialDelay. Messages that cannot be sent
// are logged and dropped.
type AMQPPublisher struct {
	url      string
	exchange string

	queue chan outgoing
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup

	// owned by the worker after NewAMQPPublisher returns
	conn       *amqp.Connection
	ch         *amqp.Channel
	nextDialAt time.Time
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	p := newAMQPPublisher(url, exchange, publishQueue)
	if err := p.dial(); err != nil {
		return nil, err
	}
	p.wg.Add(1)
	go p.run()
	return p, nil
}

func newAMQPPublisher(url, exchange string, queue int) *AMQPPublisher {
	return &AMQPPublisher{
		url:      url,
		exchange: exchange,
		queue:    make(chan outgoing, queue),
		done:     make(chan struct{}),
	}
}

func (p *AMQPPublisher) dial() error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("rabbitmq: declare exchange %s: %w", p.exchange, err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Publish queues the event and returns at once.
func (p *AMQPPublisher) Publish(ctx context.Context, e models.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	select {
	case <-p.done:
		return ErrPublisherClosed
	default:
	}
	select {
	case p.queue <- outgoing{routingKey: e.Event, body: body, at: time.Now().UTC()}:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s", ErrPublishQueueFull, e.Event)
	}
}

func (p *AMQPPublisher) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			p.drain()
			return
		case m := <-p.queue:
			p.send(m)
		}
	}
}

// drain sends whatever is still queued when the publisher closes.
func (p *AMQPPublisher) drain() {
	for {
		select {
		case m := <-p.queue:
			p.send(m)
		default:
			return
		}
	}
}

func (p *AMQPPublisher) send(m outgoing) {
	if p.ch == nil || p.ch.IsClosed() {
		p.reset()
		if time.Now().Before(p.nextDialAt) {
			slog.Warn("rabbitmq: not connected, dropping event", "event", m.routingKey)
			return
		}
		if err := p.dial(); err != nil {
			p.nextDialAt = time.Now().Add(redialDelay)
			slog.Warn("rabbitmq: redial failed, dropping event", "event", m.routingKey, "error", err)
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	err := p.ch.PublishWithContext(ctx,
		p.exchange,   // exchange
		m.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    m.at,
			Body:         m.body,
		},
	)
	if err != nil {
		slog.Warn("rabbitmq: publish failed", "event", m.routingKey, "error", err)
		p.reset()
	}
}

// Close stops accepting events, flushes the queue and disconnects.
func (p *AMQPPublisher) Close() error {
	p.once.Do(func() { close(p.done) })
	p.wg.Wait()
	p.reset()
	return nil
}
