package service

import (
    "context"
    "encoding/json"
    "errors"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"

    "github.com/iliyamo/noteful-api/internal/metrics"
    "github.com/iliyamo/noteful-api/internal/queue"
)

const (
    // publishTimeout bounds each broker round trip: dial plus handshake, and
    // the publish itself.
    publishTimeout = 2 * time.Second
    // publishBuffer is how many events may wait for the broker before new
    // ones are dropped.
    publishBuffer = 256
)

var (
    errPublisherFull   = errors.New("publish buffer full")
    errPublisherClosed = errors.New("publisher closed")
)

// Publisher emits activity events.  Implementations never fail the caller:
// errors are logged and counted, then dropped.
type Publisher interface {
    Publish(ctx context.Context, ev queue.ActivityEvent)
}

// NopPublisher discards every event.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.ActivityEvent) {}

// AMQPPublisher publishes events to a durable RabbitMQ queue through the
// default exchange.  Publish only enqueues; a single worker goroutine owns
// the connection, opens it lazily and reopens it after any failure.
type AMQPPublisher struct {
    url   string
    queue string
    log   zerolog.Logger

    events   chan queue.ActivityEvent
    done     chan struct{}
    stopOnce sync.Once
    wg       sync.WaitGroup

    // owned by run
    conn *amqp.Connection
    ch   *amqp.Channel
}

func NewAMQPPublisher(url, queueName string, log zerolog.Logger) *AMQPPublisher {
    return newAMQPPublisher(url, queueName, log, publishBuffer)
}

func newAMQPPublisher(url, queueName string, log zerolog.Logger, buffer int) *AMQPPublisher {
    p := &AMQPPublisher{
        url:    url,
        queue:  queueName,
        log:    log,
        events: make(chan queue.ActivityEvent, buffer),
        done:   make(chan struct{}),
    }
    p.wg.Add(1)
    go p.run()
    return p
}

// Publish hands ev to the worker and returns immediately.  When the buffer
// is full or the publisher is closed the event is dropped and counted.
func (p *AMQPPublisher) Publish(_ context.Context, ev queue.ActivityEvent) {
    select {
    case <-p.done:
        p.fail(errPublisherClosed, ev)
        return
    default:
    }
    select {
    case p.events <- ev:
    default:
        p.fail(errPublisherFull, ev)
    }
}

func (p *AMQPPublisher) run() {
    defer p.wg.Done()
    defer p.reset()
    for {
        select {
        case ev := <-p.events:
            p.send(ev)
        case <-p.done:
            p.flush()
            return
        }
    }
}

// flush drains events still buffered at Close.  After the first failure the
// rest are dropped rather than retried.
func (p *AMQPPublisher) flush() {
    healthy := true
    for {
        select {
        case ev := <-p.events:
            if healthy {
                healthy = p.send(ev)
            } else {
                p.fail(errPublisherClosed, ev)
            }
        default:
            return
        }
    }
}

// send publishes ev as a persistent JSON message and reports success.
func (p *AMQPPublisher) send(ev queue.ActivityEvent) bool {
    body, err := json.Marshal(ev)
    if err != nil {
        p.fail(err, ev)
        return false
    }
    ch, err := p.channel()
    if err != nil {
        p.fail(err, ev)
        return false
    }

    ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
    defer cancel()

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        p.reset()
        p.fail(err, ev)
        return false
    }
    return true
}

// channel returns an open channel with the queue declared, dialing if needed.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.reset()
    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(publishTimeout),
    })
    if err != nil {
        return nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, err
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, err
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *AMQPPublisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.ch, p.conn = nil, nil
}

func (p *AMQPPublisher) fail(err error, ev queue.ActivityEvent) {
    metrics.ObservePublishFailure()
    p.log.Warn().Err(err).
        Str("action", ev.Action).
        Str("resource", ev.Resource).
        Str("resource_id", ev.ResourceID).
        Msg("rabbitmq: publish activity event failed")
}

// Close stops the worker after it has tried to send buffered events, then
// releases the broker connection.  It is safe to call more than once.
func (p *AMQPPublisher) Close() error {
    p.stopOnce.Do(func() { close(p.done) })
    p.wg.Wait()
    return nil
}
