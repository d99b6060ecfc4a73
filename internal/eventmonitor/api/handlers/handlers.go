package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/registry"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/service"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/types"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
)

// HandleHealth handles health check requests
func HandleHealth(logger logging.Logger, rm *registry.RegistryManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := types.HealthResponse{
			Status:              "healthy",
			Version:             "0.1.0",
			ActiveSubscriptions: rm.GetActiveSubscriptionCount(),
			MonitoredPrograms:   rm.GetMonitoredPrograms(),
		}

		c.JSON(http.StatusOK, response)
	}
}

// HandleRegister handles subscription requests
func HandleRegister(logger logging.Logger, svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.SubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Invalid register request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		// A zero expiry means the subscription lives until unregistered
		if !req.ExpiresAt.IsZero() && req.ExpiresAt.Before(time.Now()) {
			logger.Warn("Invalid expiration time", "expires_at", req.ExpiresAt)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "expires_at must be in the future",
			})
			return
		}

		if err := svc.Register(&req); err != nil {
			logger.Error("Failed to register subscription", "error", err, "request_id", req.RequestID)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		response := types.RegisterResponse{
			Success:   true,
			RequestID: req.RequestID,
			Status:    types.StateRegistered,
			Message:   "Subscription registered successfully",
		}

		logger.Info("Subscription registered", "request_id", req.RequestID, "program", req.Program)
		c.JSON(http.StatusOK, response)
	}
}

// HandleUnregister handles unsubscribe requests
func HandleUnregister(logger logging.Logger, svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("request_id")
		if requestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "request_id is required",
			})
			return
		}

		if err := svc.Unregister(requestID); err != nil {
			logger.Warn("Failed to unregister subscription", "error", err, "request_id", requestID)
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		response := types.UnregisterResponse{
			Success:   true,
			RequestID: requestID,
			Status:    types.StateUnregistered,
			Message:   "Subscription unregistered successfully",
		}

		logger.Info("Subscription unregistered", "request_id", requestID)
		c.JSON(http.StatusOK, response)
	}
}

// HandleStatus handles subscription status requests
func HandleStatus(logger logging.Logger, rm *registry.RegistryManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("request_id")
		if requestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "request_id is required",
			})
			return
		}

		entry, _, exists := rm.GetEntryByRequestID(requestID)
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "request_id not found",
			})
			return
		}

		entry.Mu.RLock()
		subscriber, exists := entry.Subscribers[requestID]
		if !exists {
			entry.Mu.RUnlock()
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "subscriber not found",
			})
			return
		}

		response := types.StatusResponse{
			RequestID:  requestID,
			Status:     subscriber.State,
			Program:    entry.Key,
			Event:      subscriber.Event,
			LastSlot:   entry.LastSlot,
			EventsSeen: entry.EventsSeen,
			ExpiresAt:  subscriber.ExpiresAt,
		}
		entry.Mu.RUnlock()

		c.JSON(http.StatusOK, response)
	}
}
