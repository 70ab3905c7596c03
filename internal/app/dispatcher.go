package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/jinhajunho/luel-note-sub000/internal/service"
)

// Dispatcher fans successful-mutation events out to subscribers (cache
// invalidation, staff notifications) without blocking the request path.
// It implements service.Hook.
type Dispatcher struct {
	logger   *zap.Logger
	subs     []func(context.Context, service.Event)
	events   chan service.Event
	stopChan chan struct{}
}

func NewDispatcher(logger *zap.Logger, buffer int) *Dispatcher {
	return &Dispatcher{
		logger:   logger,
		events:   make(chan service.Event, buffer),
		stopChan: make(chan struct{}),
	}
}

// Subscribe registers a consumer. Not safe to call after Start.
func (d *Dispatcher) Subscribe(fn func(context.Context, service.Event)) {
	d.subs = append(d.subs, fn)
}

// Publish enqueues an event. When the buffer is full the event is dropped
// rather than stalling a request; subscribers are refresh hints, not state.
func (d *Dispatcher) Publish(e service.Event) {
	select {
	case d.events <- e:
	default:
		d.logger.Warn("Event dropped, dispatcher buffer full",
			zap.String("kind", string(e.Kind)),
			zap.Int64("lesson_id", e.LessonID),
		)
	}
}

// Start launches the delivery goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("Starting event dispatcher")
	go d.run(ctx)
}

// Stop stops delivery.
func (d *Dispatcher) Stop() {
	close(d.stopChan)
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case e := <-d.events:
			for _, fn := range d.subs {
				fn(ctx, e)
			}
		case <-d.stopChan:
			d.logger.Info("Event dispatcher stopped")
			return
		case <-ctx.Done():
			d.logger.Info("Event dispatcher cancelled")
			return
		}
	}
}
