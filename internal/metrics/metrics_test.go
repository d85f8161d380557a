package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTPRequest(t *testing.T) {
	m := New("todo")

	m.ObserveHTTPRequest("/api/v1/get/todo/", http.MethodGet, http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTPRequest("/api/v1/get/todo/", http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest("/api/v1/delete/todo/", http.MethodPost, http.StatusNotFound, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/v1/get/todo/", "GET", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/v1/delete/todo/", "POST", "404")))
	require.Equal(t, 2, testutil.CollectAndCount(m.httpDuration))
}

func TestObserveTaskOperation(t *testing.T) {
	m := New("")

	m.ObserveTaskOperation("CreateTask", "success")
	m.ObserveTaskOperation("DeleteTask", "not_found")

	require.Equal(t, 1.0, testutil.ToFloat64(m.taskOps.WithLabelValues("CreateTask", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.taskOps.WithLabelValues("DeleteTask", "not_found")))
}

func TestHandlerExposesNamespacedMetrics(t *testing.T) {
	m := New("todo")
	m.ObserveHTTPRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "todo_http_requests_total")
	require.Contains(t, string(body), "go_goroutines")
}
