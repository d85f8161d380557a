package http

import (
	"net/http"

	"github.com/Shishir-Kc/ThE-lIsT/internal/service"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/dto"
)

func (h *HTTPHandlers) Hello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.HelloResponse{Hello: "hello"})
}

func (h *HTTPHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health, err := h.health.Health(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	statusCode := http.StatusOK
	if health.Status == service.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, r, statusCode, health)
}
