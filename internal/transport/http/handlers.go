package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Shishir-Kc/ThE-lIsT/internal/config"
	serviceErrors "github.com/Shishir-Kc/ThE-lIsT/internal/errors"
	"github.com/Shishir-Kc/ThE-lIsT/internal/service"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/dto"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/logger"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is required")

type HTTPHandlers struct {
	config *config.Config
	health service.HealthService
	tasks  service.TaskService
}

func NewHTTPHandlers(cfg *config.Config, healthService service.HealthService, taskService service.TaskService) *HTTPHandlers {
	return &HTTPHandlers{
		config: cfg,
		health: healthService,
		tasks:  taskService,
	}
}

func (h *HTTPHandlers) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Hello).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HandleHealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/add/todo/", h.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/get/todo/", h.ListTasks).Methods(http.MethodGet)
	api.HandleFunc("/get/todo/{id}/", h.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/update/todo/", h.ToggleCompletion).Methods(http.MethodPost)
	api.HandleFunc("/todo/update/priority/", h.UpdatePriority).Methods(http.MethodPut)
	api.HandleFunc("/delete/todo/", h.DeleteTask).Methods(http.MethodPost)
	api.HandleFunc("/activity/", h.ListActivity).Methods(http.MethodGet)
}

// decodeJSON reads a single JSON document into dest. Any failure is reported
// as a 422.
func decodeJSON(r *http.Request, dest any) *serviceErrors.ServiceError {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return serviceErrors.Validation(errEmptyBody)
		}
		return serviceErrors.Validation(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.LogError(r.Context(), err, "encode_response")
	}
}

// writeError renders err as {"detail": ...}. Errors that are not a
// ServiceError become a 500 without leaking their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var serviceErr *serviceErrors.ServiceError
	if !errors.As(err, &serviceErr) {
		logger.LogError(r.Context(), err, "unhandled_error")
		serviceErr = serviceErrors.ErrInternalError
	}

	if serviceErr.Status >= http.StatusInternalServerError {
		logger.LogError(r.Context(), err, "request_failed")
	}

	writeJSON(w, r, serviceErr.Status, dto.NewErr(serviceErr.Message))
}
