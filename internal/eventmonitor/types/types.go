package types

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Subscription lifecycle states. A subscription never re-registers after
// leaving StateRegistered.
const (
	StateRegistered   = "registered"
	StateUnregistered = "unregistered"
)

// SubscriptionRequest represents a request to monitor a program/event
type SubscriptionRequest struct {
	RequestID  string    `json:"request_id" binding:"required"`
	Program    string    `json:"program" binding:"required"`
	Event      string    `json:"event"`
	WebhookURL string    `json:"webhook_url" binding:"required"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}

// EventNotification represents a decoded event delivered to subscribers
type EventNotification struct {
	RequestID string      `json:"request_id"`
	Program   string      `json:"program"`
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload,omitempty"`
	Data      string      `json:"data"`
	Slot      uint64      `json:"slot"`
	Signature string      `json:"signature"`
	Timestamp time.Time   `json:"timestamp"`
}

// RegistryEntry represents a registry entry for a monitored program
type RegistryEntry struct {
	Key          string
	Program      solana.PublicKey
	Subscribers  map[string]*Subscriber
	EventsSeen   uint64
	LastSlot     uint64
	WorkerCtx    context.Context
	WorkerCancel context.CancelFunc
	Mu           sync.RWMutex
}

// Subscriber represents a subscriber to a program's events. An empty Event
// matches every event the program emits.
type Subscriber struct {
	RequestID  string
	Event      string
	WebhookURL string
	ExpiresAt  time.Time
	State      string
}

// RegisterResponse represents the response for a register request
type RegisterResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// UnregisterRequest represents a request to drop a subscription
type UnregisterRequest struct {
	RequestID string `json:"request_id" binding:"required"`
}

// UnregisterResponse represents the response for an unregister request
type UnregisterResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// StatusResponse represents the status of a subscription
type StatusResponse struct {
	RequestID  string    `json:"request_id"`
	Status     string    `json:"status"`
	Program    string    `json:"program"`
	Event      string    `json:"event"`
	LastSlot   uint64    `json:"last_slot"`
	EventsSeen uint64    `json:"events_seen"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status              string   `json:"status"`
	Version             string   `json:"version"`
	ActiveSubscriptions int      `json:"active_subscriptions"`
	MonitoredPrograms   []string `json:"monitored_programs"`
}
