package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/config"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/metrics"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/registry"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/types"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/webhook"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/worker"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/client/chainclient"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
)

// Service manages the event monitor service
type Service struct {
	registryManager *registry.RegistryManager
	client          *chainclient.Client
	workers         map[string]*worker.Worker // registry key -> Worker
	webhookClient   *webhook.Client
	logger          logging.Logger
	mu              sync.RWMutex
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
}

// NewService creates a new event monitor service
func NewService(logger logging.Logger) (*Service, error) {
	ctx, cancel := context.WithCancel(context.Background())

	rm := registry.NewRegistryManager(logger)
	wc := webhook.NewClient(webhook.Config{
		Timeout:    config.GetWebhookTimeout(),
		MaxRetries: config.GetWebhookMaxRetries(),
		RetryDelay: config.GetWebhookRetryDelay(),
	}, logger)

	clientCfg := chainclient.DefaultConfig(logger)
	clientCfg.RPCURL = config.GetRPCURL()
	clientCfg.WSURL = config.GetWSURL()
	clientCfg.Commitment = rpc.CommitmentType(config.GetCommitment())
	clientCfg.ConfirmTimeout = config.GetConfirmTimeout()

	client, err := chainclient.New(ctx, clientCfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create chain client: %w", err)
	}
	logger.Info("Connected to node",
		"rpc_url", config.GetRPCURL(),
		"ws_url", config.GetWSURL(),
		"commitment", config.GetCommitment())

	return &Service{
		registryManager: rm,
		client:          client,
		workers:         make(map[string]*worker.Worker),
		webhookClient:   wc,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
	}, nil
}

// Start starts the service
func (s *Service) Start() error {
	s.logger.Info("Starting event monitor service")

	// Reconcile workers with registry changes (expiry cleanup included)
	go s.monitorRegistry()

	return nil
}

// Stop stops the service
func (s *Service) Stop() {
	s.logger.Info("Stopping event monitor service")

	s.cancel()

	s.mu.Lock()
	for key, w := range s.workers {
		w.Stop()
		delete(s.workers, key)
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.client.Close()

	s.logger.Info("Event monitor service stopped")
}

// Register registers a subscription and starts a worker if needed
func (s *Service) Register(req *types.SubscriptionRequest) error {
	if err := s.registryManager.Register(req); err != nil {
		return err
	}
	metrics.SubscriptionsTotal.WithLabelValues("register").Inc()
	metrics.ActiveSubscriptions.Set(float64(s.registryManager.GetActiveSubscriptionCount()))

	// The registry normalizes the key to the canonical base58 form
	_, key, exists := s.registryManager.GetEntryByRequestID(req.RequestID)
	if !exists {
		return fmt.Errorf("registry entry vanished for request: %s", req.RequestID)
	}

	s.mu.Lock()
	_, running := s.workers[key]
	s.mu.Unlock()

	if !running {
		if err := s.startWorker(key); err != nil {
			_ = s.registryManager.Unregister(req.RequestID)
			metrics.SubscriptionsTotal.WithLabelValues("unregister").Inc()
			metrics.ActiveSubscriptions.Set(float64(s.registryManager.GetActiveSubscriptionCount()))
			return fmt.Errorf("failed to start worker: %w", err)
		}
	}

	return nil
}

// Unregister unregisters a subscription and stops its worker if the program
// has no subscribers left.
func (s *Service) Unregister(requestID string) error {
	entry, key, exists := s.registryManager.GetEntryByRequestID(requestID)
	if !exists {
		return fmt.Errorf("request ID not found: %s", requestID)
	}

	if err := s.registryManager.Unregister(requestID); err != nil {
		return err
	}
	metrics.SubscriptionsTotal.WithLabelValues("unregister").Inc()
	metrics.ActiveSubscriptions.Set(float64(s.registryManager.GetActiveSubscriptionCount()))

	entry.Mu.RLock()
	subscriberCount := len(entry.Subscribers)
	entry.Mu.RUnlock()

	if subscriberCount == 0 {
		s.mu.Lock()
		if w, exists := s.workers[key]; exists {
			w.Stop()
			delete(s.workers, key)
			s.logger.Info("Stopped worker", "program", key)
		}
		s.mu.Unlock()
	}

	return nil
}

// GetRegistryManager returns the registry manager
func (s *Service) GetRegistryManager() *registry.RegistryManager {
	return s.registryManager
}

// startWorker starts a worker for a registry entry
func (s *Service) startWorker(key string) error {
	entry, exists := s.registryManager.GetEntry(key)
	if !exists {
		return fmt.Errorf("registry entry not found: %s", key)
	}

	w := worker.NewWorker(entry, s.client, s.registryManager, s.webhookClient, s.logger)

	s.mu.Lock()
	s.workers[key] = w
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		w.Start()
	}()

	s.logger.Info("Started worker", "program", key)
	return nil
}

// monitorRegistry reconciles workers with registry entries. Expired
// subscriptions are dropped by the registry's cleanup loop; their workers
// are reaped here.
func (s *Service) monitorRegistry() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.syncWorkers()
		}
	}
}

// syncWorkers syncs workers with registry entries
func (s *Service) syncWorkers() {
	entries := s.registryManager.GetAllEntries()
	metrics.ActiveSubscriptions.Set(float64(s.registryManager.GetActiveSubscriptionCount()))

	s.mu.Lock()
	defer s.mu.Unlock()

	// Start workers for entries that don't have one
	for key, entry := range entries {
		if _, exists := s.workers[key]; !exists {
			w := worker.NewWorker(entry, s.client, s.registryManager, s.webhookClient, s.logger)
			s.workers[key] = w
			s.wg.Add(1)
			go func(workerKey string, wk *worker.Worker) {
				defer s.wg.Done()
				wk.Start()
			}(key, w)
			s.logger.Info("Started worker (sync)", "program", key)
		}
	}

	// Stop workers for entries that no longer exist
	for key, w := range s.workers {
		if _, exists := entries[key]; !exists {
			w.Stop()
			delete(s.workers, key)
			s.logger.Info("Stopped worker (sync)", "program", key)
		}
	}
}
