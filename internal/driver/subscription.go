package driver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/anchor"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gasservice"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gateway"
)

const notificationBuffer = 64

// Notification is one delivered event occurrence.
type Notification struct {
	Event     string
	Payload   interface{}
	Slot      uint64
	Signature solana.Signature
}

// Callback receives notifications on the subscription's listener goroutine,
// never inline with Subscribe or the triggering send.
type Callback func(Notification)

// Subscription is a live event registration. It must be released with
// exactly one Unsubscribe call; drivers defer it right after Subscribe.
type Subscription struct {
	event  string
	cb     Callback
	stream LogStream
	cancel context.CancelFunc
	drv    *Driver

	notifs chan Notification
	done   chan struct{}
	err    error

	mu     sync.Mutex
	closed bool
}

// Subscribe registers a callback for the named event on the driver's
// program. An empty event name matches every event. The log subscription is
// established before Subscribe returns, so an instruction sent afterwards
// cannot race past it. cb may be nil; notifications are always available on
// Notifications as well.
func (d *Driver) Subscribe(ctx context.Context, event string, cb Callback) (*Subscription, error) {
	if ctx.Err() != nil {
		return nil, &SubscriptionError{Event: event, Err: ctx.Err()}
	}

	stream, err := d.chain.SubscribeLogs(d.program)
	if err != nil {
		return nil, &SubscriptionError{Event: event, Err: err}
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		event:  event,
		cb:     cb,
		stream: stream,
		cancel: cancel,
		drv:    d,
		notifs: make(chan Notification, notificationBuffer),
		done:   make(chan struct{}),
	}

	d.registered.Add(1)
	d.logger.Info("Subscribed to event", "program", d.program, "event", event)

	go d.listen(listenCtx, sub)

	return sub, nil
}

// SubscribeReceived registers a callback for the received event.
func (d *Driver) SubscribeReceived(ctx context.Context, cb Callback) (*Subscription, error) {
	return d.Subscribe(ctx, gateway.ReceivedEventName, cb)
}

// Notifications exposes the subscription's delivery stream. The channel is
// closed when the subscription ends.
func (s *Subscription) Notifications() <-chan Notification {
	return s.notifs
}

// Err reports why the listener stopped, nil for a clean Unsubscribe.
func (s *Subscription) Err() error {
	<-s.done
	return s.err
}

// Unsubscribe releases the subscription. When it returns, the listener
// goroutine has exited and no further callback will run. A second call is a
// contract violation and errors.
func (s *Subscription) Unsubscribe() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return &SubscriptionError{Event: s.event, Err: errors.New("already unsubscribed")}
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	<-s.done
	s.stream.Unsubscribe()

	s.drv.unregistered.Add(1)
	s.drv.logger.Info("Unsubscribed from event", "program", s.drv.program, "event", s.event)
	return nil
}

// listen receives log notifications until the subscription is released or
// the stream dies. All callback invocations happen here.
func (d *Driver) listen(ctx context.Context, sub *Subscription) {
	defer close(sub.done)
	defer close(sub.notifs)

	for {
		result, err := sub.stream.Recv(ctx)
		if err != nil {
			if ctx.Err() == nil {
				sub.err = &SubscriptionError{Event: sub.event, Err: err}
				d.logger.Error("Log subscription stream failed",
					"program", d.program,
					"event", sub.event,
					"error", err)
			}
			return
		}
		d.deliver(ctx, sub, result)
	}
}

// deliver decodes the events of one confirmed transaction and hands the
// matching ones to the subscription.
func (d *Driver) deliver(ctx context.Context, sub *Subscription, result *ws.LogResult) {
	if result == nil || result.Value.Err != nil {
		return
	}

	events := anchor.EventsFromLogs(result.Value.Logs)
	if len(events) == 0 {
		// Event-CPI events never show up as log lines
		events = d.fetchCPIEvents(ctx, result.Value.Signature)
	}

	for _, ev := range events {
		name, payload := decodeEvent(ev)
		if sub.event != "" && sub.event != name {
			continue
		}

		n := Notification{
			Event:     name,
			Payload:   payload,
			Slot:      result.Context.Slot,
			Signature: result.Value.Signature,
		}

		if sub.cb != nil {
			sub.cb(n)
		}
		select {
		case sub.notifs <- n:
		default:
			d.logger.Warn("Notification buffer full, dropping",
				"event", name,
				"signature", result.Value.Signature)
		}
	}
}

// fetchCPIEvents pulls the transaction and extracts event-CPI records from
// its inner instructions.
func (d *Driver) fetchCPIEvents(ctx context.Context, sig solana.Signature) []anchor.Event {
	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := d.chain.Transaction(fetchCtx, sig)
	if err != nil {
		d.logger.Warn("Failed to fetch transaction for event extraction",
			"signature", sig,
			"error", err)
		return nil
	}
	if out == nil || out.Transaction == nil {
		return nil
	}

	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		d.logger.Warn("Failed to decode transaction", "signature", sig, "error", err)
		return nil
	}

	return anchor.EventsFromInnerInstructions(tx, out.Meta, d.program)
}

func decodeEvent(ev anchor.Event) (string, interface{}) {
	if name, payload, ok := gateway.DecodeEvent(ev); ok {
		return name, payload
	}
	if name, payload, ok := gasservice.DecodeEvent(ev); ok {
		return name, payload
	}
	return "", nil
}

// WaitForValue blocks until the subscription delivers a received event
// decoding to want, the subscription dies, or ctx expires.
func WaitForValue(ctx context.Context, sub *Subscription, want uint64) (Notification, error) {
	for {
		select {
		case <-ctx.Done():
			return Notification{}, &TimeoutError{Event: sub.event, Err: ctx.Err()}
		case n, ok := <-sub.notifs:
			if !ok {
				if sub.err != nil {
					return Notification{}, sub.err
				}
				return Notification{}, &SubscriptionError{Event: sub.event, Err: errors.New("subscription closed")}
			}
			if r, matched := n.Payload.(gateway.Received); matched && r.Value == want {
				return n, nil
			}
		}
	}
}
