package worker

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/config"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/metrics"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/registry"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/types"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/webhook"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/anchor"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gasservice"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gateway"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/client/chainclient"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/retry"
)

const maxReconnectDelay = 30 * time.Second

// Worker holds a log subscription for one program and distributes decoded
// events to the program's subscribers.
type Worker struct {
	entry           *types.RegistryEntry
	client          *chainclient.Client
	registryManager *registry.RegistryManager
	webhookClient   *webhook.Client
	logger          logging.Logger
	ctx             context.Context
	cancel          context.CancelFunc
}

// NewWorker creates a new event worker
func NewWorker(
	entry *types.RegistryEntry,
	client *chainclient.Client,
	registryManager *registry.RegistryManager,
	webhookClient *webhook.Client,
	logger logging.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(entry.WorkerCtx)
	return &Worker{
		entry:           entry,
		client:          client,
		registryManager: registryManager,
		webhookClient:   webhookClient,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start runs the subscribe/receive loop until the worker is stopped. Stream
// errors trigger a resubscribe with exponential backoff.
func (w *Worker) Start() {
	w.logger.Info("Starting event worker", "program", w.entry.Key)
	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	delay := config.GetReconnectDelay()
	if delay <= 0 {
		delay = time.Second
	}

	for {
		if w.ctx.Err() != nil {
			w.logger.Info("Worker context cancelled, stopping", "program", w.entry.Key)
			return
		}

		sub, err := w.client.SubscribeLogs(w.entry.Program)
		if err != nil {
			metrics.WSReconnectsTotal.WithLabelValues(w.entry.Key).Inc()
			w.logger.Error("Failed to open log subscription",
				"program", w.entry.Key,
				"retry_in", delay,
				"error", err)
			if !w.sleep(delay) {
				return
			}
			delay = retry.CalculateNextDelay(delay, 2.0, maxReconnectDelay)
			continue
		}

		delay = config.GetReconnectDelay()
		w.receive(sub)
		sub.Unsubscribe()
	}
}

// Stop stops the worker
func (w *Worker) Stop() {
	w.cancel()
}

// receive drains one subscription until it fails or the worker is stopped
func (w *Worker) receive(sub *ws.LogSubscription) {
	for {
		result, err := sub.Recv(w.ctx)
		if err != nil {
			if w.ctx.Err() != nil {
				return
			}
			metrics.WSReconnectsTotal.WithLabelValues(w.entry.Key).Inc()
			w.logger.Warn("Log subscription stream error, resubscribing",
				"program", w.entry.Key,
				"error", err)
			return
		}
		w.processNotification(result)
	}
}

// processNotification decodes all Anchor events in one log notification and
// dispatches them to matching subscribers.
func (w *Worker) processNotification(result *ws.LogResult) {
	if result == nil || result.Value.Err != nil {
		// Failed transactions emit nothing
		return
	}

	slot := result.Context.Slot
	sig := result.Value.Signature

	events := anchor.EventsFromLogs(result.Value.Logs)
	events = append(events, w.cpiEvents(sig)...)
	if len(events) == 0 {
		return
	}

	for _, ev := range events {
		name, payload := w.decodeEvent(ev)
		metrics.EventsDecodedTotal.WithLabelValues(w.entry.Key, name).Inc()
		w.registryManager.RecordEvent(w.entry.Key, slot)
		w.dispatch(name, payload, ev, slot, sig)
	}
}

// cpiEvents fetches the transaction and extracts events emitted through
// event-CPI inner instructions, which never show up as log lines.
func (w *Worker) cpiEvents(sig solana.Signature) []anchor.Event {
	ctx, cancel := context.WithTimeout(w.ctx, config.GetConfirmTimeout())
	defer cancel()

	out, err := w.client.Transaction(ctx, sig)
	if err != nil {
		metrics.TransactionFetchErrorsTotal.Inc()
		w.logger.Warn("Failed to fetch transaction for event extraction",
			"program", w.entry.Key,
			"signature", sig,
			"error", err)
		return nil
	}
	if out == nil || out.Transaction == nil {
		return nil
	}

	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		w.logger.Warn("Failed to decode transaction",
			"program", w.entry.Key,
			"signature", sig,
			"error", err)
		return nil
	}

	return anchor.EventsFromInnerInstructions(tx, out.Meta, w.entry.Program)
}

// decodeEvent resolves an event's name and typed payload. Unknown
// discriminators keep an empty name and no payload; subscribers still get
// the raw data.
func (w *Worker) decodeEvent(ev anchor.Event) (string, interface{}) {
	if name, payload, ok := gateway.DecodeEvent(ev); ok {
		return name, payload
	}
	if name, payload, ok := gasservice.DecodeEvent(ev); ok {
		return name, payload
	}
	return "", nil
}

// dispatch sends a notification to every subscriber whose event filter
// matches. The subscriber snapshot is taken under the entry lock, so a
// subscriber that unregistered before this event never receives it.
func (w *Worker) dispatch(name string, payload interface{}, ev anchor.Event, slot uint64, sig solana.Signature) {
	subscribers := w.registryManager.SnapshotSubscribers(w.entry.Key)

	for _, subscriber := range subscribers {
		if subscriber.Event != "" && subscriber.Event != name {
			continue
		}

		notification := &types.EventNotification{
			RequestID: subscriber.RequestID,
			Program:   w.entry.Key,
			Event:     name,
			Payload:   payload,
			Data:      base64.StdEncoding.EncodeToString(ev.Data),
			Slot:      slot,
			Signature: sig.String(),
			Timestamp: time.Now(),
		}

		go func(sub *types.Subscriber, notif *types.EventNotification) {
			if err := w.webhookClient.Send(sub.WebhookURL, notif); err != nil {
				metrics.NotificationsDeliveredTotal.WithLabelValues("failed").Inc()
				w.logger.Error("Failed to deliver notification",
					"request_id", sub.RequestID,
					"webhook_url", sub.WebhookURL,
					"error", err)
				return
			}
			metrics.NotificationsDeliveredTotal.WithLabelValues("delivered").Inc()
		}(subscriber, notification)
	}
}

// sleep waits for d or until the worker is stopped
func (w *Worker) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-w.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
