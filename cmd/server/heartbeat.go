package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/concall/internal/config"
	"github.com/JaimeStill/concall/pkg/lifecycle"
)

// heartbeat pings a health URL on a fixed interval so hosted instances that
// sleep when idle stay warm. Failures are logged and never stop the loop.
type heartbeat struct {
	client   *http.Client
	target   string
	interval time.Duration
	logger   *slog.Logger
}

func newHeartbeat(cfg *config.HeartbeatConfig, port int, logger *slog.Logger) *heartbeat {
	return &heartbeat{
		client:   &http.Client{Timeout: 10 * time.Second},
		target:   cfg.Target(port),
		interval: cfg.IntervalDuration(),
		logger:   logger.With("system", "heartbeat"),
	}
}

// Start runs the ping loop as a tracked task that ends when shutdown begins.
func (h *heartbeat) Start(lc *lifecycle.Coordinator) {
	h.logger.Info("heartbeat enabled", "target", h.target, "interval", h.interval)

	lc.Go(func(context.Context) {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				h.logger.Info("heartbeat stopped")
				return
			case <-ticker.C:
				h.ping(lc.Context())
			}
		}
	})
}

func (h *heartbeat) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.target, nil)
	if err != nil {
		h.logger.Warn("heartbeat request invalid", "error", err)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("heartbeat failed", "error", err)
		return
	}
	resp.Body.Close()

	h.logger.Debug("heartbeat", "status", resp.StatusCode)
}
