package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/aquaman122/auto-report/internal/publisher"
	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/queue"
)

const healthCheckTimeout = 5 * time.Second

type HealthHandler struct {
	store        store.Store
	queue        queue.Queue
	wiki         *publisher.WikiPublisher
	openaiKeySet bool
	version      string
	started      time.Time
	logger       logger.Logger
}

func NewHealthHandler(db store.Store, q queue.Queue, wiki *publisher.WikiPublisher, openaiKeySet bool, version string, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:        db,
		queue:        q,
		wiki:         wiki,
		openaiKeySet: openaiKeySet,
		version:      version,
		started:      time.Now(),
		logger:       log,
	}
}

// Check reports liveness without touching any dependency.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type componentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Detailed probes each dependency concurrently and reports per-component
// status. The endpoint itself returns 200 unless the database is down,
// since the service cannot serve anything without it.
func (h *HealthHandler) Detailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	var mu sync.Mutex
	components := make(map[string]componentStatus)
	set := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			components[name] = componentStatus{Status: "down", Error: err.Error()}
			return
		}
		components[name] = componentStatus{Status: "up"}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		set("database", h.store.Ping(gctx))
		return nil
	})

	if h.queue != nil {
		g.Go(func() error {
			set("queue", h.queue.Ping(gctx))
			return nil
		})
	}

	if h.wiki != nil && h.wiki.Enabled() {
		g.Go(func() error {
			set("wiki", h.wiki.Check(gctx))
			return nil
		})
	}

	g.Wait()

	if h.queue == nil {
		components["queue"] = componentStatus{Status: "disabled"}
	}
	if h.wiki == nil || !h.wiki.Enabled() {
		components["wiki"] = componentStatus{Status: "disabled"}
	}
	if h.openaiKeySet {
		components["openai"] = componentStatus{Status: "configured"}
	} else {
		components["openai"] = componentStatus{Status: "missing_api_key"}
	}

	status := "ok"
	code := http.StatusOK
	if db, ok := components["database"]; ok && db.Status == "down" {
		status = "degraded"
		code = http.StatusServiceUnavailable
		h.logger.Error("health check failed", logger.String("component", "database"), logger.String("error", db.Error))
	}

	c.JSON(code, gin.H{
		"status":     status,
		"version":    h.version,
		"uptime":     time.Since(h.started).Round(time.Second).String(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"components": components,
	})
}
