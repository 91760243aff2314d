package events

import (
	"context"
	"errors"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	LookupEventType string = "energy-planner.events.lookup"
	defaultTopic    string = "energy-planner.events"
	defaultSource   string = "energy-planner"

	closeTimeout = 5 * time.Second
)

var ErrProducerClosed = errors.New("event producer closed")

// Writer delivers envelopes to a topic.
type Writer interface {
	Write(ctx context.Context, topic string, e cloudevents.Event) error
	Close(ctx context.Context) error
}

// EventProducer wraps lookup events into CloudEvents and hands them to a Writer from
// its own goroutine, so publishing never waits on the writer.
type EventProducer struct {
	queue    *queue
	notifyCh chan struct{}
	doneCh   chan struct{}
	stopped  chan struct{}
	writer   Writer
	topic    string
	source   string
	now      func() time.Time
}

type ProducerOption func(*EventProducer)

func WithOutputTopic(topic string) ProducerOption {
	return func(p *EventProducer) {
		if topic != "" {
			p.topic = topic
		}
	}
}

func WithSource(source string) ProducerOption {
	return func(p *EventProducer) {
		if source != "" {
			p.source = source
		}
	}
}

func NewEventProducer(w Writer, opts ...ProducerOption) *EventProducer {
	p := &EventProducer{
		queue:    &queue{},
		notifyCh: make(chan struct{}, 1),
		doneCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
		writer:   w,
		topic:    defaultTopic,
		source:   defaultSource,
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}

	go p.run()
	return p
}

// Publish queues ev. It fails only when ev cannot be encoded or the producer is closed.
func (p *EventProducer) Publish(_ context.Context, ev LookupEvent) error {
	select {
	case <-p.doneCh:
		return ErrProducerClosed
	default:
	}

	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetSource(p.source)
	e.SetType(LookupEventType)
	e.SetTime(p.now())
	if ev.RequestID != "" {
		e.SetExtension("requestid", ev.RequestID)
	}
	if err := e.SetData(cloudevents.ApplicationJSON, ev); err != nil {
		return err
	}

	p.queue.push(e)
	select {
	case p.notifyCh <- struct{}{}:
	default:
	}
	return nil
}

// Close writes the pending events and closes the writer.
func (p *EventProducer) Close() error {
	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	close(p.doneCh)

	g, ctx := errgroup.WithContext(closeCtx)
	g.Go(func() error {
		select {
		case <-p.stopped:
		case <-ctx.Done():
			return ctx.Err()
		}
		return p.writer.Close(ctx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Named("event_producer").Errorw("event producer closed with error", "error", err, "dropped", p.queue.len())
		return err
	}

	zap.S().Named("event_producer").Info("event producer closed")
	return nil
}

func (p *EventProducer) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.notifyCh:
			p.flush()
		case <-p.doneCh:
			p.flush()
			return
		}
	}
}

func (p *EventProducer) flush() {
	for _, e := range p.queue.drain() {
		if err := p.writer.Write(context.Background(), p.topic, e); err != nil {
			zap.S().Named("event_producer").Errorw("failed to write event", "error", err, "id", e.ID(), "type", e.Type())
		}
	}
}
