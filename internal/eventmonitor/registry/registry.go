package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/types"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
)

// RegistryManager manages the registry of event subscriptions. Entries are
// keyed by program address; each entry carries the subscriber set served by
// one worker.
type RegistryManager struct {
	registry map[string]*types.RegistryEntry
	mu       sync.RWMutex
	logger   logging.Logger

	registeredTotal   atomic.Uint64
	unregisteredTotal atomic.Uint64
}

// NewRegistryManager creates a new registry manager
func NewRegistryManager(logger logging.Logger) *RegistryManager {
	rm := &RegistryManager{
		registry: make(map[string]*types.RegistryEntry),
		logger:   logger,
	}

	// Start background cleanup goroutine
	go rm.cleanupExpired()

	return rm
}

// Register registers a new subscription
func (rm *RegistryManager) Register(req *types.SubscriptionRequest) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	program, err := solana.PublicKeyFromBase58(req.Program)
	if err != nil {
		return fmt.Errorf("invalid program address %s: %w", req.Program, err)
	}

	key := program.String()

	entry, exists := rm.registry[key]
	if !exists {
		ctx, cancel := context.WithCancel(context.Background())
		entry = &types.RegistryEntry{
			Key:          key,
			Program:      program,
			Subscribers:  make(map[string]*types.Subscriber),
			WorkerCtx:    ctx,
			WorkerCancel: cancel,
		}
		rm.registry[key] = entry
		rm.logger.Info("Created new registry entry", "program", key)
	}

	entry.Mu.Lock()
	if _, dup := entry.Subscribers[req.RequestID]; dup {
		entry.Mu.Unlock()
		return fmt.Errorf("request ID already registered: %s", req.RequestID)
	}
	entry.Subscribers[req.RequestID] = &types.Subscriber{
		RequestID:  req.RequestID,
		Event:      req.Event,
		WebhookURL: req.WebhookURL,
		ExpiresAt:  req.ExpiresAt,
		State:      types.StateRegistered,
	}
	subscriberCount := len(entry.Subscribers)
	entry.Mu.Unlock()

	rm.registeredTotal.Add(1)
	rm.logger.Info("Registered subscription",
		"request_id", req.RequestID,
		"program", key,
		"event", req.Event,
		"subscribers", subscriberCount)

	return nil
}

// Unregister unregisters a subscription. After this returns, the subscriber
// is gone from the entry and no further notifications will be dispatched to
// it: SnapshotSubscribers and Unregister serialize on the entry lock.
func (rm *RegistryManager) Unregister(requestID string) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	var foundEntry *types.RegistryEntry
	var foundKey string

	for key, entry := range rm.registry {
		entry.Mu.RLock()
		if _, exists := entry.Subscribers[requestID]; exists {
			foundEntry = entry
			foundKey = key
			entry.Mu.RUnlock()
			break
		}
		entry.Mu.RUnlock()
	}

	if foundEntry == nil {
		return fmt.Errorf("request ID not found: %s", requestID)
	}

	foundEntry.Mu.Lock()
	sub := foundEntry.Subscribers[requestID]
	sub.State = types.StateUnregistered
	delete(foundEntry.Subscribers, requestID)
	subscriberCount := len(foundEntry.Subscribers)
	foundEntry.Mu.Unlock()

	rm.unregisteredTotal.Add(1)
	rm.logger.Info("Unregistered subscription",
		"request_id", requestID,
		"program", foundKey,
		"remaining_subscribers", subscriberCount)

	// If no subscribers remain, stop worker and remove entry
	if subscriberCount == 0 {
		foundEntry.WorkerCancel()
		delete(rm.registry, foundKey)
		rm.logger.Info("Removed registry entry (no subscribers)", "program", foundKey)
	}

	return nil
}

// SnapshotSubscribers returns the current subscribers of an entry. Workers
// dispatch against this snapshot; a subscriber removed by Unregister never
// appears in a snapshot taken afterwards.
func (rm *RegistryManager) SnapshotSubscribers(key string) []*types.Subscriber {
	rm.mu.RLock()
	entry, exists := rm.registry[key]
	rm.mu.RUnlock()
	if !exists {
		return nil
	}

	entry.Mu.RLock()
	defer entry.Mu.RUnlock()

	subs := make([]*types.Subscriber, 0, len(entry.Subscribers))
	for _, sub := range entry.Subscribers {
		subs = append(subs, sub)
	}
	return subs
}

// RecordEvent bumps an entry's event counter and last seen slot
func (rm *RegistryManager) RecordEvent(key string, slot uint64) {
	rm.mu.RLock()
	entry, exists := rm.registry[key]
	rm.mu.RUnlock()
	if !exists {
		return
	}

	entry.Mu.Lock()
	entry.EventsSeen++
	if slot > entry.LastSlot {
		entry.LastSlot = slot
	}
	entry.Mu.Unlock()
}

// GetEntry returns a registry entry by key
func (rm *RegistryManager) GetEntry(key string) (*types.RegistryEntry, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	entry, exists := rm.registry[key]
	return entry, exists
}

// GetEntryByRequestID returns a registry entry by request ID
func (rm *RegistryManager) GetEntryByRequestID(requestID string) (*types.RegistryEntry, string, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	for key, entry := range rm.registry {
		entry.Mu.RLock()
		if _, exists := entry.Subscribers[requestID]; exists {
			entry.Mu.RUnlock()
			return entry, key, true
		}
		entry.Mu.RUnlock()
	}

	return nil, "", false
}

// GetAllEntries returns all registry entries
func (rm *RegistryManager) GetAllEntries() map[string]*types.RegistryEntry {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	result := make(map[string]*types.RegistryEntry)
	for k, v := range rm.registry {
		result[k] = v
	}
	return result
}

// GetActiveSubscriptionCount returns the number of live subscriptions
func (rm *RegistryManager) GetActiveSubscriptionCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, entry := range rm.registry {
		entry.Mu.RLock()
		count += len(entry.Subscribers)
		entry.Mu.RUnlock()
	}
	return count
}

// GetMonitoredPrograms returns the list of programs with live entries
func (rm *RegistryManager) GetMonitoredPrograms() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	programs := make([]string, 0, len(rm.registry))
	for key := range rm.registry {
		programs = append(programs, key)
	}
	return programs
}

// RegisteredTotal returns the lifetime count of registrations
func (rm *RegistryManager) RegisteredTotal() uint64 {
	return rm.registeredTotal.Load()
}

// UnregisteredTotal returns the lifetime count of deregistrations
func (rm *RegistryManager) UnregisteredTotal() uint64 {
	return rm.unregisteredTotal.Load()
}

// cleanupExpired periodically drops subscriptions past their expiry. A zero
// ExpiresAt means the subscription never expires.
func (rm *RegistryManager) cleanupExpired() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		rm.mu.Lock()
		now := time.Now()

		for key, entry := range rm.registry {
			entry.Mu.Lock()
			expiredRequestIDs := make([]string, 0)

			for requestID, subscriber := range entry.Subscribers {
				if !subscriber.ExpiresAt.IsZero() && subscriber.ExpiresAt.Before(now) {
					expiredRequestIDs = append(expiredRequestIDs, requestID)
				}
			}

			for _, requestID := range expiredRequestIDs {
				entry.Subscribers[requestID].State = types.StateUnregistered
				delete(entry.Subscribers, requestID)
				rm.unregisteredTotal.Add(1)
				rm.logger.Info("Removed expired subscription",
					"request_id", requestID,
					"program", key)
			}

			subscriberCount := len(entry.Subscribers)
			entry.Mu.Unlock()

			if subscriberCount == 0 {
				entry.WorkerCancel()
				delete(rm.registry, key)
				rm.logger.Info("Removed registry entry (expired)", "program", key)
			}
		}

		rm.mu.Unlock()
	}
}
