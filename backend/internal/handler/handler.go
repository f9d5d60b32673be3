package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/itchan-dev/anonboard/backend/internal/service"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/logger"
)

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	thread service.ThreadService
	reply  service.ReplyService
	health HealthChecker
	cfg    *config.Config
}

func New(thread service.ThreadService, reply service.ReplyService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{thread: thread, reply: reply, health: health, cfg: cfg}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
